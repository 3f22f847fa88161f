// Package observability defines the tracing and metrics interfaces used by
// toonboard, plus the semantic-convention names for attributes, spans and
// metrics.
//
// The central entry point is [Provider], which composes [Tracer] and
// [Metrics] into a single injectable dependency. An active [Span] travels
// through a [context.Context] via [ContextWithSpan] and [SpanFromContext], so
// low-level helpers such as the HTTP client can attach events to the span of
// the call that invoked them.
package observability
