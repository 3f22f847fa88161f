package storyboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leofalp/toonboard/core/recovery"
	"github.com/leofalp/toonboard/providers/ai"
	"github.com/leofalp/toonboard/providers/observability"
	"github.com/leofalp/toonboard/providers/source/webfetch"
)

var (
	// ErrNoClient is returned when no model client is configured (usually a
	// missing API key).
	ErrNoClient = errors.New("storyboard: model client is not configured")

	// ErrUpstream wraps failures of the model call itself.
	ErrUpstream = errors.New("storyboard: model call failed")

	// ErrPlotSource wraps failures fetching Input.PlotURL.
	ErrPlotSource = errors.New("storyboard: plot source unavailable")
)

// Sender sends one prompt to the model. *client.Client implements it.
type Sender interface {
	SendMessage(ctx context.Context, prompt string) (*ai.ChatResponse, error)
}

// PlotSource resolves Input.PlotURL. *webfetch.Fetcher implements it.
type PlotSource interface {
	Fetch(ctx context.Context, url string) (webfetch.Page, error)
}

// GenerationError reports that no attempt produced a usable record. Failure
// is the outcome of the last attempt.
type GenerationError struct {
	Attempts int
	Failure  *recovery.Failure
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("storyboard generation failed after %d attempt(s): %s", e.Attempts, e.Failure.Reason)
}

func (e *GenerationError) Unwrap() error {
	return e.Failure
}

// UserMessage is a short explanation without excerpts, safe for end users.
func (e *GenerationError) UserMessage() string {
	switch e.Failure.Reason {
	case recovery.ReasonNoPayloadFound:
		return "The model reply did not contain a storyboard."
	case recovery.ReasonDecodeError:
		return "The model reply contained a malformed storyboard."
	case recovery.ReasonMissingFields:
		return "The model reply was missing required storyboard fields: " + strings.Join(e.Failure.Missing, ", ") + "."
	default:
		return "The storyboard could not be generated."
	}
}

// Result is a successful generation.
type Result struct {
	Storyboard Storyboard
	// Record is the recovered payload as the model wrote it, in key order.
	Record   *recovery.Object
	Outcome  recovery.Outcome
	Attempts int
	// Raw is the model reply the record was recovered from.
	Raw string
}

// Generator runs input validation, prompting, the model call and recovery.
// Fields are read-only after construction, so a Generator may be shared.
type Generator struct {
	Client Sender
	// Engine defaults to recovery.New().
	Engine *recovery.Engine
	// MaxAttempts is how many model calls a recovery failure may consume.
	// Values below 1 mean 1.
	MaxAttempts int
	Observer    observability.Provider
	Source      PlotSource
	Language    string
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Ready reports whether a model client is configured.
func (g *Generator) Ready() bool {
	return g != nil && g.Client != nil
}

// Generate produces a storyboard for in.
//
// Input problems are *InputError. Model call errors wrap ErrUpstream. When
// every attempt fails recovery the error is *GenerationError, which unwraps
// to the last *recovery.Failure.
func (g *Generator) Generate(ctx context.Context, in Input) (*Result, error) {
	if err := in.Validate(g.Source != nil); err != nil {
		return nil, err
	}
	if !g.Ready() {
		return nil, ErrNoClient
	}

	n, _ := in.Pages.Int()
	var span observability.Span
	if g.Observer != nil {
		ctx, span = g.Observer.StartSpan(ctx, observability.SpanStoryboardGenerate,
			observability.Int(observability.AttrStoryboardPages, n),
		)
		defer span.End()
	}

	res, err := g.generate(ctx, in)
	if span != nil {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(observability.StatusError, "storyboard generation failed")
		} else {
			span.SetStatus(observability.StatusOK, "")
		}
	}
	return res, err
}

func (g *Generator) generate(ctx context.Context, in Input) (*Result, error) {
	in, err := g.resolvePlot(ctx, in)
	if err != nil {
		return nil, err
	}

	prompt, err := BuildPrompt(in, g.Language)
	if err != nil {
		return nil, err
	}

	engine := g.Engine
	if engine == nil {
		engine = recovery.New()
	}
	attempts := max(g.MaxAttempts, 1)

	var last recovery.Outcome
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := g.Client.SendMessage(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
		}

		last = engine.Recover(resp.Content)
		g.recordOutcome(ctx, attempt, last)

		if last.OK() {
			return &Result{
				Storyboard: FromRecord(last.Record),
				Record:     last.Record,
				Outcome:    last,
				Attempts:   attempt,
				Raw:        resp.Content,
			}, nil
		}
	}

	return nil, &GenerationError{Attempts: attempts, Failure: last.Failure}
}

// resolvePlot fills a blank plot from PlotURL.
func (g *Generator) resolvePlot(ctx context.Context, in Input) (Input, error) {
	if strings.TrimSpace(in.Plot) != "" || strings.TrimSpace(in.PlotURL) == "" || g.Source == nil {
		return in, nil
	}
	page, err := g.Source.Fetch(ctx, in.PlotURL)
	if err != nil {
		return in, fmt.Errorf("%w: %w", ErrPlotSource, err)
	}
	if strings.TrimSpace(page.Content) == "" {
		return in, &InputError{Field: "plot_url", Message: "the page at plot_url has no readable text"}
	}
	g.logger().InfoContext(ctx, "plot fetched",
		slog.String("url", page.URL),
		slog.Int("chars", len([]rune(page.Content))),
		slog.Bool("truncated", page.Truncated),
	)
	in.Plot = page.Content
	return in, nil
}

// recordOutcome logs and counts one recovery outcome. Failures are logged
// with their excerpt for operators; only the reason reaches users.
func (g *Generator) recordOutcome(ctx context.Context, attempt int, out recovery.Outcome) {
	logger := g.logger()
	attrs := []observability.Attribute{
		observability.Int(observability.AttrStoryboardAttempt, attempt),
		observability.Bool(observability.AttrRecoveryRepaired, out.Repaired),
	}

	if out.OK() {
		attrs = append(attrs,
			observability.String(observability.AttrStatus, "success"),
			observability.String(observability.AttrRecoveryStrategy, string(out.Span.Strategy)),
		)
		logger.InfoContext(ctx, "storyboard recovered",
			slog.Int(observability.AttrStoryboardAttempt, attempt),
			slog.String(observability.AttrRecoveryStrategy, string(out.Span.Strategy)),
			slog.Bool(observability.AttrRecoveryRepaired, out.Repaired),
		)
	} else {
		attrs = append(attrs,
			observability.String(observability.AttrStatus, "failure"),
			observability.String(observability.AttrRecoveryStage, string(out.Failure.Stage)),
			observability.String(observability.AttrRecoveryReason, string(out.Failure.Reason)),
		)
		logger.WarnContext(ctx, "storyboard recovery failed",
			slog.Int(observability.AttrStoryboardAttempt, attempt),
			slog.String(observability.AttrRecoveryStage, string(out.Failure.Stage)),
			slog.String(observability.AttrRecoveryReason, string(out.Failure.Reason)),
			slog.Any("missing", out.Failure.Missing),
			slog.String("excerpt", out.Failure.Excerpt),
		)
	}

	if g.Observer != nil {
		g.Observer.Counter(observability.MetricRecoveryOutcome).Add(ctx, 1, attrs...)
	}
	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.SpanRecoveryRecover, attrs...)
	}
}

func (g *Generator) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}
