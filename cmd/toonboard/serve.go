package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leofalp/toonboard/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr, outputDir string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Addr = addr
			}
			if outputDir != "" {
				a.cfg.OutputDir = outputDir
			}
			return runServe(cmd.Context(), a)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from TOONBOARD_ADDR, :5000)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for generated JSON files (default from TOONBOARD_OUTPUT_DIR)")
	return cmd
}

func runServe(ctx context.Context, a *app) error {
	gen, err := a.generator()
	if err != nil {
		return err
	}

	// One generation may use every attempt and every retry.
	budget := a.cfg.Timeout * time.Duration(a.cfg.MaxAttempts*(a.cfg.MaxRetries+1))
	srv := server.NewHTTPServer(a.cfg.Addr, server.New(a.cfg, gen, a.logger), budget)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server listening",
			slog.String("addr", a.cfg.Addr),
			slog.Bool("gpt_client", gen.Ready()),
			slog.String("output_dir", a.cfg.OutputDir),
		)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("server stopped")
	return nil
}
