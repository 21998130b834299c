package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/colormatch/internal/config"
	"github.com/phrazzld/colormatch/internal/platform/postgres"
)

// ErrNoDatabase is returned when migrations are requested without a
// configured database URL.
var ErrNoDatabase = errors.New("database.url is not configured")

// runMigrations applies a goose command against the configured database.
func runMigrations(cfg *config.Config, command string, logger *slog.Logger) error {
	if !cfg.UsesDatabase() {
		return fmt.Errorf("cannot run migrations: %w", ErrNoDatabase)
	}

	logger.Info("executing migrations",
		"command", command,
		"url", postgres.MaskDatabaseURL(cfg.Database.URL))

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("error closing database connection", "error", cerr)
		}
	}()

	if err := postgres.Migrate(db, command, logger); err != nil {
		return fmt.Errorf("migration %q failed: %w", command, err)
	}

	logger.Info("migrations completed", "command", command)
	return nil
}
