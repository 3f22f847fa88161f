package middleware

import (
	"context"
	"fmt"

	"github.com/leofalp/toonboard/core/client"
	"github.com/leofalp/toonboard/providers/ai"
	"golang.org/x/time/rate"
)

// NewRateLimitMiddleware paces outbound requests with a token bucket shared by
// every call through the returned middleware. Callers block until a token is
// available or their context ends.
func NewRateLimitMiddleware(limit rate.Limit, burst int) client.MiddlewareConfig {
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(limit, burst)

	return client.MiddlewareConfig{Send: func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			if err := limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limiter: %w", err)
			}
			return next(ctx, request)
		}
	}}
}

// PerMinute converts a requests-per-minute budget to a rate.Limit. Zero or
// negative means unlimited.
func PerMinute(n int) rate.Limit {
	if n <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(n) / 60.0)
}
