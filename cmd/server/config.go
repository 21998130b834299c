package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/colormatch/internal/config"
	"github.com/phrazzld/colormatch/internal/platform/logger"
)

// loadAppConfig loads the application configuration from defaults, an
// optional config.yaml and COLORMATCH_* environment variables.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// setupAppLogger configures the process-wide logger from the server settings.
func setupAppLogger(cfg *config.Config) (*slog.Logger, error) {
	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"storage", storageKind(cfg),
		"pair_count", cfg.Game.PairCount)
	return l, nil
}

func storageKind(cfg *config.Config) string {
	if cfg.UsesDatabase() {
		return "postgres"
	}
	return "memory"
}
