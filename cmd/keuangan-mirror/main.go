package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"keuangan/internal/amqp"
	"keuangan/internal/cli"
	applog "keuangan/internal/log"
	"keuangan/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(os.Stdout, cfg, applog.ComponentWorker)

	if cfg.MirrorBackend == "" {
		logger.Error("MIRROR_BACKEND is not set, nothing to mirror into")
		os.Exit(1)
	}

	logger.Info("Starting keuangan-mirror", "backend", cfg.MirrorBackend)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mirror := cli.OpenMirror(ctx, logger, cfg)
	defer func() {
		if err := mirror.Cleanup(); err != nil {
			logger.Error("Mirror store close error", "error", err)
		}
	}()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	mirrorWorker := worker.NewMirrorWorker(mirror.Store)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeLedgerAppended(gctx, mirrorWorker.HandleLedgerAppended)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received, closing AMQP connection")
		return amqpClient.Close()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Mirror worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Mirror worker stopped gracefully")
}
