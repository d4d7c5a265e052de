package main

import (
	"context"
	"errors"
	"os"
	"time"

	"ledgerline/internal/backend"
	"ledgerline/internal/cli"
	"ledgerline/internal/log"
	"ledgerline/internal/worker"
)

func main() {
	cfg, err := cli.LoadConfig()
	if err != nil {
		cli.Fatal(nil, "Configuration validation failed", err)
	}

	logger, err := cli.SetupLogger(cfg.LogLevel, os.Stdout, log.ComponentWorker)
	if err != nil {
		cli.Fatal(nil, "Invalid log level", err)
	}
	logger.Info("Starting ledgerline-worker",
		"backend", cfg.DataBackend,
		"refresh_interval", cfg.RefreshInterval,
		"concurrency", cfg.RefreshConcurrency,
		"timezone", cfg.EvalTimezone)

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	b, err := backend.New(ctx, cfg, backend.Options{RequireAMQP: cfg.AMQPURL != ""})
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err)
	}
	defer func() {
		if err := b.Cleanup(); err != nil {
			logger.Error("Cleanup failed", log.FieldError, err)
		}
	}()

	b.Caches.Start(cfg.ResultCacheTTL)

	w := worker.NewRefreshWorker(b.Modes, b.Store, worker.Config{
		Interval:    cfg.RefreshInterval,
		Concurrency: cfg.RefreshConcurrency,
	})
	if err := w.Start(ctx); err != nil {
		cli.Fatal(logger, "Failed to start refresh worker", err)
	}

	if b.AMQP != nil {
		go func() {
			err := b.AMQP.ConsumeTransactionEvents(ctx, w.HandleTransactionCreated)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", log.FieldError, err)
			}
			cancel()
		}()
	} else {
		logger.Info("AMQP not configured, relying on the periodic sweep only")
	}

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Info("Shutting down worker...", log.FieldOperation, log.OpShutdown)
	if err := w.Stop(shutdownCtx); err != nil {
		logger.Warn("Shutdown timeout reached", log.FieldError, err)
		return
	}
	logger.Info("Worker shutdown complete")
}
