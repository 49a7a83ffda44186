// Package task defines the import task: the unit of work flowing through
// the pipeline. A task is either a singleton track or an album group and
// owns a linear state machine from creation through apply, with skipped
// and failed as terminal side states.
package task
