package main

import (
	"log/slog"
	"os"

	"mibank/internal/cli"
	"mibank/internal/config"
	"mibank/internal/repository"
	"mibank/internal/server"
	"mibank/internal/service"
)

func main() {
	// Keep the terminal clean for prompts; logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	codec, db, err := server.OpenCodec(cfg, logger)
	if err != nil {
		slog.Error("Failed to open storage", "storage", cfg.Storage, "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	store, err := repository.Open(codec, logger)
	if err != nil {
		slog.Error("Failed to load accounts", "error", err)
		os.Exit(1)
	}

	app := cli.New("MiBank", 2025, service.NewLedgerService(store, logger), os.Stdin, os.Stdout)
	if err := app.Run(); err != nil {
		slog.Error("Session ended with error", "error", err)
		os.Exit(1)
	}
}
