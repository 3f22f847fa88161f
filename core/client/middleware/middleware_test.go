package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leofalp/toonboard/core/client"
	"github.com/leofalp/toonboard/internal/utils"
	"github.com/leofalp/toonboard/providers/ai"
	"golang.org/x/time/rate"
)

// run wraps fn with mw and calls it once.
func run(mw client.MiddlewareConfig, fn client.SendFunc) (*ai.ChatResponse, error) {
	return mw.Send(fn)(context.Background(), ai.ChatRequest{Model: "m", Messages: []ai.Message{{Role: ai.RoleUser, Content: "prompt text"}}})
}

func fastRetry(max int) RetryConfig {
	return RetryConfig{MaxRetries: max, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func TestRetry_SucceedsAfterTransientError(t *testing.T) {
	var calls atomic.Int32
	resp, err := run(NewRetryMiddleware(fastRetry(2)), func(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
		if calls.Add(1) < 2 {
			return nil, &utils.StatusError{StatusCode: 503, Body: "busy"}
		}
		return &ai.ChatResponse{Content: "ok"}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "ok" || calls.Load() != 2 {
		t.Errorf("content=%q calls=%d", resp.Content, calls.Load())
	}
}

func TestRetry_Exhausted(t *testing.T) {
	var calls atomic.Int32
	upstream := &utils.StatusError{StatusCode: 429, Body: "slow down"}
	_, err := run(NewRetryMiddleware(fastRetry(2)), func(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
		calls.Add(1)
		return nil, upstream
	})
	if !errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("expected ErrRetryExhausted, got %v", err)
	}
	var statusErr *utils.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != 429 {
		t.Errorf("expected wrapped StatusError, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestRetry_NonRetryableReturnsImmediately(t *testing.T) {
	var calls atomic.Int32
	_, err := run(NewRetryMiddleware(fastRetry(3)), func(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
		calls.Add(1)
		return nil, &utils.StatusError{StatusCode: 401, Body: "bad key"}
	})
	if errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("non-retryable error should not be wrapped: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestRetry_Disabled(t *testing.T) {
	var calls atomic.Int32
	_, err := run(NewRetryMiddleware(RetryConfig{MaxRetries: -1}), func(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
		calls.Add(1)
		return nil, &utils.StatusError{StatusCode: 500}
	})
	if err == nil || errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("expected plain upstream error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"429", &utils.StatusError{StatusCode: 429}, true},
		{"529", &utils.StatusError{StatusCode: 529}, true},
		{"400", &utils.StatusError{StatusCode: 400}, false},
		{"canceled", context.Canceled, false},
		{"text fallback", errors.New("upstream returned status 502"), true},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestComputeBackoffCapped(t *testing.T) {
	cfg := RetryConfig{}
	applyRetryDefaults(&cfg)
	cfg.JitterFraction = 0.0001
	if got := computeBackoff(cfg, 10); got > cfg.MaxBackoff+cfg.MaxBackoff/1000 {
		t.Errorf("backoff %v exceeds cap %v", got, cfg.MaxBackoff)
	}
}

func TestTimeout_SetsDeadline(t *testing.T) {
	_, err := run(NewTimeoutMiddleware(10*time.Millisecond), func(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("expected deadline on context")
		}
		<-ctx.Done()
		return nil, ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestTimeout_ZeroDisables(t *testing.T) {
	_, err := run(NewTimeoutMiddleware(0), func(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
		if _, ok := ctx.Deadline(); ok {
			t.Error("expected no deadline")
		}
		return &ai.ChatResponse{}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestLogging_Levels(t *testing.T) {
	ok := func(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
		return &ai.ChatResponse{Model: "m", Content: "raw response", FinishReason: "stop", Usage: &ai.Usage{TotalTokens: 3}}, nil
	}

	var minimal bytes.Buffer
	if _, err := run(NewLoggingMiddleware(slog.New(slog.NewTextHandler(&minimal, nil)), LogLevelMinimal), ok); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(minimal.String(), "finish_reason") || !strings.Contains(minimal.String(), "total_tokens=3") {
		t.Errorf("unexpected minimal log: %s", minimal.String())
	}

	var verbose bytes.Buffer
	if _, err := run(NewLoggingMiddleware(slog.New(slog.NewTextHandler(&verbose, nil)), LogLevelVerbose), ok); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"finish_reason=stop", "prompt text", "raw response"} {
		if !strings.Contains(verbose.String(), want) {
			t.Errorf("verbose log missing %q: %s", want, verbose.String())
		}
	}
}

func TestLogging_Error(t *testing.T) {
	var buf bytes.Buffer
	_, err := run(NewLoggingMiddleware(slog.New(slog.NewTextHandler(&buf, nil)), LogLevelStandard), func(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
		return nil, errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(buf.String(), "level=ERROR") || !strings.Contains(buf.String(), "boom") {
		t.Errorf("expected error log, got %s", buf.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	if ParseLogLevel("minimal") != LogLevelMinimal || ParseLogLevel("verbose") != LogLevelVerbose || ParseLogLevel("x") != LogLevelStandard {
		t.Error("unexpected ParseLogLevel mapping")
	}
}

func TestRateLimit_ContextCanceled(t *testing.T) {
	mw := NewRateLimitMiddleware(rate.Every(time.Hour), 1)
	send := mw.Send(func(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
		return &ai.ChatResponse{}, nil
	})

	if _, err := send(context.Background(), ai.ChatRequest{}); err != nil {
		t.Fatalf("first call should use the burst token: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := send(ctx, ai.ChatRequest{}); err == nil {
		t.Fatal("expected second call to fail while waiting for a token")
	}
}

func TestPerMinute(t *testing.T) {
	if PerMinute(0) != rate.Inf {
		t.Error("expected unlimited for 0")
	}
	if got := PerMinute(120); got != rate.Limit(2) {
		t.Errorf("PerMinute(120) = %v, want 2", got)
	}
}
