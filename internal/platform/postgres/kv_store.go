package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/colormatch/internal/platform/logger"
	"github.com/phrazzld/colormatch/internal/store"
)

const (
	getRecordQuery = `SELECT value FROM kv_records WHERE key = $1`

	putRecordQuery = `
		INSERT INTO kv_records (key, value, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	deleteRecordQuery = `DELETE FROM kv_records WHERE key = $1`
)

// PostgresKVStore implements the store.KVStore interface on the kv_records
// table. Values must be valid JSON.
type PostgresKVStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresKVStore creates a new PostgreSQL implementation of the KVStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresKVStore(db store.DBTX, logger *slog.Logger) *PostgresKVStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresKVStore{
		db:     db,
		logger: logger.With(slog.String("component", "kv_store")),
	}
}

// Ensure PostgresKVStore implements store.KVStore interface
var _ store.KVStore = (*PostgresKVStore)(nil)

// Get implements store.KVStore.Get
func (s *PostgresKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var value []byte
	if err := s.db.QueryRowContext(ctx, getRecordQuery, key).Scan(&value); err != nil {
		err = MapError(err)
		if store.IsNotFoundError(err) {
			log.Debug("record not found", slog.String("key", key))
			return nil, store.ErrRecordNotFound
		}
		log.Error("failed to read record",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("record", "get", "query failed", err)
	}

	return value, nil
}

// Put implements store.KVStore.Put
func (s *PostgresKVStore) Put(ctx context.Context, key string, value []byte) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if key == "" {
		return store.NewStoreError("record", "put", "key cannot be empty", store.ErrInvalidEntity)
	}

	if _, err := s.db.ExecContext(ctx, putRecordQuery, key, string(value)); err != nil {
		err = MapError(err)
		if !errors.Is(err, store.ErrInvalidEntity) {
			err = fmt.Errorf("%w: %w", store.ErrUpdateFailed, err)
		}
		log.Error("failed to write record",
			slog.String("key", key),
			slog.Int("size", len(value)),
			slog.String("error", err.Error()))
		return store.NewStoreError("record", "put", "write failed", err)
	}

	log.Debug("record written", slog.String("key", key), slog.Int("size", len(value)))
	return nil
}

// Delete implements store.KVStore.Delete
func (s *PostgresKVStore) Delete(ctx context.Context, key string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, deleteRecordQuery, key)
	if err != nil {
		err = MapError(err)
		log.Error("failed to delete record",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return store.NewStoreError("record", "delete", "delete failed", err)
	}

	return CheckRowsAffected(result, key)
}
