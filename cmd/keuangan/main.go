package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"keuangan/internal/amqp"
	"keuangan/internal/auth"
	"keuangan/internal/cli"
	apphttp "keuangan/internal/http"
	applog "keuangan/internal/log"
	"keuangan/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(os.Stdout, cfg, applog.ComponentApp)

	plan := cli.LoadPlan(logger, cfg)

	store := cli.OpenStore(context.Background(), logger, cfg)

	// Publishing is optional: without a broker the mirror simply lags.
	var publisher services.Publisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, appended rows will not be announced", "error", err)
		} else {
			amqpClient = client
			publisher = client
			logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange)
		}
	}

	ledger := services.NewLedgerService(store.Store, plan, publisher, logger)
	srv := apphttp.NewServer(":"+cfg.Port, ledger, auth.NewAuthenticator(cfg.AppPassword), auth.NewRegistry(cfg.SessionTTL), logger)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("AMQP close error", "error", err)
			}
		}
		if store.Cleanup != nil {
			if err := store.Cleanup(); err != nil {
				logger.Error("Ledger store close error", "error", err)
			}
		}
	})

	logger.Info("Starting keuangan server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
