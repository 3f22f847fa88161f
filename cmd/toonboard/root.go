package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/leofalp/toonboard/core/client"
	"github.com/leofalp/toonboard/core/client/middleware"
	"github.com/leofalp/toonboard/core/cost"
	"github.com/leofalp/toonboard/core/recovery"
	"github.com/leofalp/toonboard/internal/config"
	"github.com/leofalp/toonboard/providers/ai"
	"github.com/leofalp/toonboard/providers/ai/openai"
	"github.com/leofalp/toonboard/providers/observability/slogobs"
	"github.com/leofalp/toonboard/providers/source/webfetch"
	"github.com/leofalp/toonboard/storyboard"
	"github.com/spf13/cobra"
)

// errReported marks errors whose details were already written for the user.
var errReported = errors.New("reported")

// skipConfig is set on commands that must work without a valid configuration.
const skipConfig = "skip-config"

// app carries what every subcommand shares.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	envFile   string
	logLevel  string
	logFormat string
	llmLog    string

	cfg      config.Config
	logger   *slog.Logger
	observer *slogobs.Observer
}

func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := newRootCmd(&app{stdin: stdin, stdout: stdout, stderr: stderr})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "toonboard",
		Short: "Plan instatoon storyboards with a language model",
		Long: `toonboard turns characters, keywords and a plot into a page-by-page
instatoon storyboard. It asks an OpenAI-compatible model for the storyboard
and recovers the JSON record from whatever the model replies.

Settings come from the environment, seeded from .env.local or .env.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", "", "environment file to load instead of .env.local / .env")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (default from TOONBOARD_LOG_LEVEL)")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: text or json (default from TOONBOARD_LOG_FORMAT)")
	flags.StringVar(&a.llmLog, "llm-log", "standard", "model call log detail: minimal, standard, verbose")

	root.AddCommand(
		newGenerateCmd(a),
		newServeCmd(a),
		newRecoverCmd(a),
		newRenderCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if cmd.Annotations[skipConfig] == "" {
		var files []string
		if a.envFile != "" {
			files = []string{a.envFile}
		}
		cfg, err := config.Load(files...)
		if err != nil {
			return fmt.Errorf("configuration: %w", err)
		}
		a.cfg = cfg
	} else {
		a.cfg = config.Default()
	}

	if a.logLevel != "" {
		a.cfg.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		a.cfg.LogFormat = a.logFormat
	}
	a.logger = slogobs.NewLogger(a.stderr, slogobs.ParseFormat(a.cfg.LogFormat), slogobs.ParseLevel(a.cfg.LogLevel))
	a.observer = slogobs.New(a.logger)

	if a.cfg.EnvFile != "" {
		a.logger.Debug("environment loaded", slog.String("file", a.cfg.EnvFile))
	}
	return nil
}

// engine builds the recovery engine the configuration asks for.
func (a *app) engine() *recovery.Engine {
	if a.cfg.LenientRepair {
		return recovery.New(recovery.WithRepair(recovery.LenientRepair))
	}
	return recovery.New()
}

// generator wires config into a storyboard generator. Without an API key the
// generator has no client and reports storyboard.ErrNoClient on use.
func (a *app) generator() (*storyboard.Generator, error) {
	g := &storyboard.Generator{
		Engine:      a.engine(),
		MaxAttempts: a.cfg.MaxAttempts,
		Observer:    a.observer,
		Source:      webfetch.New(),
		Language:    a.cfg.Language,
		Logger:      a.logger,
	}
	if !a.cfg.HasAPIKey() {
		a.logger.Warn("no API key configured; run `toonboard config set-key` or set " + config.EnvAPIKey)
		return g, nil
	}

	llm, err := a.client()
	if err != nil {
		return nil, err
	}
	g.Client = llm
	return g, nil
}

func (a *app) client() (*client.Client, error) {
	provider := openai.New().WithAPIKey(a.cfg.APIKey).WithBaseURL(a.cfg.BaseURL)

	// Zero retries in the environment means off; the middleware reads zero
	// as "use the default".
	retries := a.cfg.MaxRetries
	if retries == 0 {
		retries = -1
	}

	opts := []func(*client.ClientOptions){
		client.WithSystemPrompt(storyboard.SystemPrompt(a.cfg.Language)),
		client.WithDefaultModel(a.cfg.Model),
		client.WithGenerationConfig(ai.GenerationConfig{
			MaxTokens:   a.cfg.MaxTokens,
			Temperature: float32(a.cfg.Temperature),
		}),
		client.WithObserver(a.observer),
		client.WithMiddleware(
			middleware.NewLoggingMiddleware(a.logger, middleware.ParseLogLevel(a.llmLog)),
			middleware.NewRetryMiddleware(middleware.RetryConfig{MaxRetries: retries}),
			middleware.NewRateLimitMiddleware(middleware.PerMinute(a.cfg.RateLimit), 1),
			middleware.NewTimeoutMiddleware(a.cfg.Timeout),
		),
	}
	if pricing := (cost.ModelCost{InputCostPerMillion: a.cfg.InputPrice, OutputCostPerMillion: a.cfg.OutputPrice}); !pricing.IsZero() {
		opts = append(opts, client.WithModelCost(pricing))
	}
	return client.New(provider, opts...)
}
