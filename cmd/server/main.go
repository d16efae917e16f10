package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filekeep/internal/server/api"
	"filekeep/internal/server/app"
	"filekeep/internal/server/config"
	"filekeep/internal/server/logger"

	"github.com/getsentry/sentry-go"
)

func main() {
	// Load config
	cfg := config.Load()

	// Structured logging
	logger.Init(os.Stdout, logger.Options{
		Dev:       cfg.IsDevelopment(),
		Level:     cfg.LogLevel,
		SentryDSN: cfg.SentryDSN,
	})

	err := run(cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
	}
	sentry.Flush(2 * time.Second)
	if err != nil {
		os.Exit(1)
	}
}

// run serves until SIGINT or SIGTERM and then shuts down gracefully.
func run(cfg *config.Config) error {
	slog.Info("configuration loaded",
		"port", cfg.Port,
		"env", cfg.AppEnv,
		"session_backend", cfg.SessionBackend,
		"folder_path", cfg.FolderPath,
		"orphan_sweep_interval", cfg.OrphanSweepInterval,
	)

	// Connect backends and build services
	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	// Start orphan sweeper
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	if a.Sweeper != nil {
		a.Sweeper.Start(sweepCtx)
	}

	// Setup HTTP router
	handler := api.NewHandler(a.Identity, a.Users, a.Files, a.Status)
	e, limiter := api.SetupRouter(handler, cfg)

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		slog.Info("starting server", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutting down", "signal", sig)

	// Stop accepting new requests, finish in-flight with 30s timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	limiter.Stop()

	// Stop orphan sweeper
	sweepCancel()
	if a.Sweeper != nil {
		a.Sweeper.Wait()
	}

	slog.Info("server exited cleanly")
	return nil
}
