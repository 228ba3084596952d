package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/templui/filesmanager/internal/app"
	"github.com/templui/filesmanager/internal/config"
	"github.com/templui/filesmanager/internal/logger"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.IsDevelopment(), cfg.LogLevel, cfg.SentryDSN)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if cfg.QueueBackend == "memory" {
		slog.Warn("QUEUE_BACKEND=memory: a standalone worker only sees jobs it enqueues itself, use EMBEDDED_WORKER=true instead")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.Error("failed to close app", "error", err)
		}
	}()

	slog.Info("worker starting", "concurrency", cfg.WorkerConcurrency, "backend", cfg.QueueBackend)

	if err := app.RunWorker(ctx); err != nil {
		slog.Error("worker failed", "error", err)
		return
	}

	slog.Info("worker stopped")
}
