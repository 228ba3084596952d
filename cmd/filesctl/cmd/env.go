package cmd

import (
	"context"
	"fmt"

	"github.com/templui/filesmanager/internal/app"
	"github.com/templui/filesmanager/internal/config"
	"github.com/templui/filesmanager/internal/logger"
	"github.com/templui/filesmanager/internal/queue"
)

func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	logger.Init(cfg.IsDevelopment(), cfg.LogLevel, cfg.SentryDSN)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func connect(ctx context.Context) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg)
}

func inspector(a *app.App) (queue.Inspector, error) {
	in, ok := a.Queue.(queue.Inspector)
	if !ok {
		return nil, fmt.Errorf("queue backend %q cannot be inspected", a.Cfg.QueueBackend)
	}
	return in, nil
}
