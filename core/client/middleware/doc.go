// Package middleware provides the built-in middlewares for the LLM client.
// Each one is constructed via a New* function that returns a
// [client.MiddlewareConfig] ready for [client.WithMiddleware].
//
//   - [NewRetryMiddleware] retries transient HTTP 429 / 5xx failures with
//     exponential backoff and jitter.
//   - [NewTimeoutMiddleware] bounds each attempt with context.WithTimeout.
//   - [NewLoggingMiddleware] emits slog entries around every call.
//   - [NewRateLimitMiddleware] paces outbound requests with a token bucket.
//
// Middlewares execute outermost-first:
//
//	c, err := client.New(provider,
//	    client.WithMiddleware(
//	        middleware.NewRateLimitMiddleware(rate.Every(time.Second), 1),
//	        middleware.NewRetryMiddleware(middleware.RetryConfig{MaxRetries: 2}),
//	        middleware.NewTimeoutMiddleware(60*time.Second),
//	        middleware.NewLoggingMiddleware(slog.Default(), middleware.LogLevelStandard),
//	    ),
//	)
//
// Here every retry gets a fresh timeout and is logged individually.
package middleware
