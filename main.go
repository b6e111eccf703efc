package main

import (
	"context"
	"log/slog"
	"os"

	"bioauth/app"
	"bioauth/config"
	"bioauth/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx := context.Background()
	a, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("init", "error", err)
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		logger.Error("server", "error", err)
		os.Exit(1)
	}
}
