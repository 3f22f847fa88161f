package client

import (
	"context"
	"log/slog"
	"time"

	"github.com/leofalp/toonboard/core/cost"
	"github.com/leofalp/toonboard/internal/utils"
	"github.com/leofalp/toonboard/providers/ai"
	"github.com/leofalp/toonboard/providers/observability"
)

// NewObservabilityMiddleware creates a MiddlewareConfig that records a span,
// request metrics and a structured log line for every LLM request.
//
// The span is injected into the context before calling next, so the HTTP
// layer can attach events to it via [observability.SpanFromContext].
//
// [New] prepends this middleware when [WithObserver] is given, making it the
// outermost wrapper. It therefore observes the final outcome after any retry
// or timeout middleware.
//
// When pricing is non-nil the estimated cost of each successful call is
// recorded as well.
func NewObservabilityMiddleware(observer observability.Provider, defaultModel string, pricing *cost.ModelCost) MiddlewareConfig {
	return MiddlewareConfig{Send: buildObsSend(observer, defaultModel, pricing)}
}

func buildObsSend(observer observability.Provider, defaultModel string, pricing *cost.ModelCost) Middleware {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			model := effectiveModel(request.Model, defaultModel)

			ctx, span := observer.StartSpan(ctx, observability.SpanClientSendMessage,
				observability.String(observability.AttrLLMModel, model),
			)
			defer span.End()

			start := time.Now()
			response, err := next(ctx, request)
			elapsed := time.Since(start)

			observer.Histogram(observability.MetricClientRequestDuration).Record(ctx, elapsed.Seconds(),
				observability.String(observability.AttrLLMModel, model),
			)

			if err != nil {
				span.RecordError(err)
				span.SetStatus(observability.StatusError, "llm send failed")

				observer.Counter(observability.MetricClientRequestCount).Add(ctx, 1,
					observability.String(observability.AttrStatus, "error"),
					observability.String(observability.AttrLLMModel, model),
				)
				slog.ErrorContext(ctx, "llm send failed",
					slog.String(observability.AttrLLMModel, model),
					slog.Duration(observability.AttrDuration, elapsed),
					slog.String(observability.AttrError, err.Error()),
				)
				return nil, err
			}

			recordObsSuccess(ctx, span, observer, response, elapsed, model, pricing)
			return response, nil
		}
	}
}

// recordObsSuccess writes the success-path counters, span attributes and log.
func recordObsSuccess(
	ctx context.Context,
	span observability.Span,
	observer observability.Provider,
	response *ai.ChatResponse,
	elapsed time.Duration,
	model string,
	pricing *cost.ModelCost,
) {
	observer.Counter(observability.MetricClientRequestCount).Add(ctx, 1,
		observability.String(observability.AttrStatus, "success"),
		observability.String(observability.AttrLLMModel, model),
	)

	logAttrs := []any{
		slog.String(observability.AttrLLMModel, model),
		slog.String(observability.AttrLLMFinishReason, response.FinishReason),
		slog.Duration(observability.AttrDuration, elapsed),
	}

	span.SetAttributes(
		observability.String(observability.AttrLLMResponseID, response.Id),
		observability.String(observability.AttrLLMFinishReason, response.FinishReason),
	)

	if response.Usage != nil {
		observer.Counter(observability.MetricClientTokensTotal).Add(ctx, int64(response.Usage.TotalTokens),
			observability.String(observability.AttrLLMModel, model),
		)
		span.SetAttributes(observability.Int(observability.AttrLLMTokensTotal, response.Usage.TotalTokens))
		logAttrs = append(logAttrs, slog.Int(observability.AttrLLMTokensTotal, response.Usage.TotalTokens))

		if pricing != nil {
			usd := pricing.Estimate(response.Usage)
			observer.Histogram(observability.MetricClientCost).Record(ctx, usd,
				observability.String(observability.AttrLLMModel, model),
			)
			span.SetAttributes(observability.Float64(observability.AttrLLMCostUSD, usd))
			logAttrs = append(logAttrs, slog.Float64(observability.AttrLLMCostUSD, usd))
		}
	}

	if response.Content != "" {
		logAttrs = append(logAttrs, slog.String("response", utils.TruncateString(response.Content, 100)))
	}

	slog.InfoContext(ctx, "llm send completed", logAttrs...)
	span.SetStatus(observability.StatusOK, "success")
}

// effectiveModel returns the request-level model when set, falling back to the
// client's configured default. Both being empty is valid (provider chooses).
func effectiveModel(requestModel, defaultModel string) string {
	if requestModel != "" {
		return requestModel
	}

	return defaultModel
}
