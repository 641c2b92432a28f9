package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"minirag/internal/app"
	"minirag/internal/config"
	"minirag/internal/logger"
)

func main() {
	// Initialize structured logger
	log := logger.New(os.Stdout, slog.LevelInfo)
	slog.SetDefault(log)

	// Load Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	a, err := app.New(cfg, deps, log)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}
