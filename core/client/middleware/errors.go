package middleware

import "errors"

// ErrRetryExhausted is returned by the retry middleware when every attempt
// failed with a retryable error. It wraps the last provider error, so
// [errors.Is] and [errors.As] reach the root cause too.
var ErrRetryExhausted = errors.New("toonboard: all retry attempts exhausted")
