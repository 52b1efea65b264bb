// Package database opens the storage backend named in the configuration.
//
// It is the only place that knows about every adapter; the rest of the
// program sees a repository.Store.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/brain-bank/internal/config"
	"github.com/sakif/brain-bank/internal/repository"
	"github.com/sakif/brain-bank/internal/repository/postgres"
	sqliteRepo "github.com/sakif/brain-bank/internal/repository/sqlite"
)

// Open connects to the configured backend and runs its migrations.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.Store, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		if cfg.DBPath != ":memory:" {
			// os.MkdirAll creates all parent directories if needed (like `mkdir -p`).
			dir := filepath.Dir(cfg.DBPath)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("database: creating directory %s: %w", dir, err)
			}
		}
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		logger.Info("sqlite opened", slog.String("path", cfg.DBPath))
		return db, nil

	case config.DriverPostgres:
		return postgres.New(ctx, cfg.DatabaseURL, postgres.Options{MaxConns: 25, MinConns: 2}, logger)

	default:
		return nil, fmt.Errorf("database: unknown driver %q", cfg.DBDriver)
	}
}
