// Package cli provides common CLI initialization utilities.
// This package consolidates repeated initialization patterns across
// cmd/keuangan, cmd/keuangan-mirror and cmd/keuangan-report.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"keuangan/internal/backend"
	"keuangan/internal/config"
	"keuangan/internal/core"
	applog "keuangan/internal/log"
)

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// sets it as the default logger.
func SetupLogger(w io.Writer, cfg *config.Config, component string) *applog.Logger {
	level, err := applog.ParseLevel(cfg.LogLevel)
	if err != nil {
		// Validate already rejected it; fall back quietly for tools that skip it.
		level, _ = applog.ParseLevel("info")
	}
	logger := applog.New(applog.Config{
		Level:     level,
		Component: component,
		Handler:   applog.NewHandler(w, level, cfg.LogFormat),
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig() *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}

// LoadPlan reads PLAN_FILE, or returns the built-in plan when it is unset.
// Exits the process when the plan is invalid.
func LoadPlan(logger *applog.Logger, cfg *config.Config) *core.Plan {
	plan, err := config.LoadPlan(cfg.PlanFile)
	if err != nil {
		logger.Error("Failed to load budget plan", "error", err, "path", cfg.PlanFile)
		os.Exit(1)
	}
	source := cfg.PlanFile
	if source == "" {
		source = "built-in"
	}
	logger.Info("Loaded budget plan", "source", source,
		"accounts", len(plan.Accounts()), "categories", len(plan.Categories()))
	return plan
}

// OpenStore creates the primary ledger store named by DATA_BACKEND.
// Exits the process on failure.
func OpenStore(ctx context.Context, logger *applog.Logger, cfg *config.Config) *backend.BackendResult {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	return openBackend(ctx, logger, bcfg)
}

// OpenMirror creates the secondary store named by MIRROR_BACKEND.
// Exits the process on failure.
func OpenMirror(ctx context.Context, logger *applog.Logger, cfg *config.Config) *backend.BackendResult {
	bcfg, err := backend.MirrorFromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid mirror backend configuration", "error", err)
		os.Exit(1)
	}
	return openBackend(ctx, logger, bcfg)
}

func openBackend(ctx context.Context, logger *applog.Logger, bcfg backend.Config) *backend.BackendResult {
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize ledger store", "error", err, "backend", bcfg.Type.String())
		os.Exit(1)
	}
	logger.Info("Initialized ledger store", "backend", bcfg.Type.String())
	return result
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that is closed once cleanup has finished or timed out.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			close(finished)
		}()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		case <-finished:
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup is over.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
