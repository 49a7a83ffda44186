// Package pipeline drives an ordered list of stages concurrently,
// moving import tasks between them through bounded hand-off channels.
//
// The first stage is a producer that enumerates work; every later stage
// transforms tasks, optionally fanning one task out into several or
// dropping it. Bounded channels provide back-pressure: a slow stage
// throttles everything upstream. A fatal stage error cancels the run,
// in-flight tasks are drained without further processing, and the error
// is returned after the drain completes. External cancellation drains
// the same way but is not reported as an error.
package pipeline
