// Command server runs the Brain Bank API.
//
// STARTUP:
//  1. load configuration (.env, then the environment)
//  2. build the logger at the configured level
//  3. open the store (sqlite file by default, postgres with DB_DRIVER)
//  4. wire and start the server; it closes the store on shutdown
//
// Everything else lives under internal/.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/sakif/brain-bank/internal/config"
	"github.com/sakif/brain-bank/internal/database"
	"github.com/sakif/brain-bank/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	store, err := database.Open(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Error("opening database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv, err := server.New(cfg, logger, store)
	if err != nil {
		store.Close()
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
