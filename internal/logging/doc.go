// Package logging configures the application's structured loggers.
//
// Loggers are slog-based with either a compact console format or JSON
// output. Context helpers attach task and stage identity so concurrent
// pipeline workers log with their own fields, and per-logger level
// overrides let a single worker raise verbosity for one task without
// touching global state.
package logging
