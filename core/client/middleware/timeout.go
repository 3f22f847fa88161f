package middleware

import (
	"context"
	"time"

	"github.com/leofalp/toonboard/core/client"
	"github.com/leofalp/toonboard/providers/ai"
)

// NewTimeoutMiddleware creates a MiddlewareConfig that enforces a per-request
// deadline. If the caller's context already has a shorter deadline, that one
// wins as per normal context semantics. A non-positive timeout disables it.
func NewTimeoutMiddleware(timeout time.Duration) client.MiddlewareConfig {
	return client.MiddlewareConfig{Send: func(next client.SendFunc) client.SendFunc {
		if timeout <= 0 {
			return next
		}
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next(ctx, request)
		}
	}}
}
