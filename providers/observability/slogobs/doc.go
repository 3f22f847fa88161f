// Package slogobs provides an observability.Provider implementation backed by
// Go's standard library log/slog package. Spans and metric updates are
// emitted as structured log records; counters keep their running totals in
// memory so they can be inspected.
//
// [NewLogger] builds the process logger from a format name ("text" or
// "json") and a level, and [New] wraps a logger in an Observer.
package slogobs
