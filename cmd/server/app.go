package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/colormatch/internal/config"
	"github.com/phrazzld/colormatch/internal/game"
	"github.com/phrazzld/colormatch/internal/leaderboard"
	"github.com/phrazzld/colormatch/internal/platform/memory"
	"github.com/phrazzld/colormatch/internal/platform/postgres"
	"github.com/phrazzld/colormatch/internal/service"
	"github.com/phrazzld/colormatch/internal/store"
)

// application holds the shared dependencies of the server and owns their
// cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	kvStore     store.KVStore
	scores      *leaderboard.ScoreStore
	gameService service.GameService
}

// newApplication wires storage, the leaderboard and the game service.
// A PostgreSQL connection is opened when cfg.UsesDatabase reports true;
// otherwise scores live in process memory. Extra service options are
// applied after the configured ones.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	opts ...service.Option,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	if cfg.UsesDatabase() {
		db, err := setupAppDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		app.db = db
		app.kvStore = postgres.NewPostgresKVStore(db, logger)
	} else {
		logger.Warn("no database configured, high scores will not survive a restart")
		app.kvStore = memory.NewKVStore(logger)
	}

	app.scores = leaderboard.NewScoreStore(app.kvStore, leaderboard.Config{
		Key:   cfg.Leaderboard.Key,
		Limit: cfg.Leaderboard.Limit,
	}, logger)
	loaded := app.scores.Load(ctx)
	logger.Info("leaderboard loaded", "entries", len(loaded), "key", cfg.Leaderboard.Key)

	svcOpts := append([]service.Option{service.WithSessionTTL(cfg.Game.SessionTTL)}, opts...)
	svc, err := service.NewGameService(app.scores, gameConfig(cfg.Game), logger, svcOpts...)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create game service: %w", err)
	}
	app.gameService = svc

	logger.Info("application initialized successfully")
	return app, nil
}

// gameConfig applies configured rules to the default palette.
func gameConfig(c config.GameConfig) game.Config {
	gc := game.DefaultConfig()
	gc.PairCount = c.PairCount
	gc.RevertDelay = c.RevertDelay
	gc.CompletionDelay = c.CompletionDelay
	return gc
}

// Run serves the API until ctx is canceled or a shutdown signal arrives.
// Idle sessions are swept in the background while the server runs.
func (app *application) Run(ctx context.Context) error {
	if ttl := app.config.Game.SessionTTL; ttl > 0 {
		sweepCtx, stopSweep := context.WithCancel(ctx)
		defer stopSweep()
		go app.sweepSessions(sweepCtx, sweepInterval(ttl))
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
