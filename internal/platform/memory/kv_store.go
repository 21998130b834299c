// Package memory provides in-process implementations of the storage
// interfaces in internal/store. Data lives only as long as the process.
package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/phrazzld/colormatch/internal/store"
)

// KVStore implements store.KVStore on a map.
type KVStore struct {
	mu      sync.RWMutex
	records map[string][]byte
	logger  *slog.Logger
}

// NewKVStore creates an empty in-memory key-value store.
// If logger is nil, a default logger will be used.
func NewKVStore(logger *slog.Logger) *KVStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &KVStore{
		records: make(map[string][]byte),
		logger:  logger.With(slog.String("component", "memory_kv_store")),
	}
}

var _ store.KVStore = (*KVStore)(nil)

// Get implements store.KVStore.Get
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.records[key]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	return clone(value), nil
}

// Put implements store.KVStore.Put
func (s *KVStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return store.NewStoreError("record", "put", "key cannot be empty", store.ErrInvalidEntity)
	}

	s.mu.Lock()
	s.records[key] = clone(value)
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "record written", slog.String("key", key), slog.Int("size", len(value)))
	return nil
}

// Delete implements store.KVStore.Delete
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[key]; !ok {
		return store.ErrRecordNotFound
	}
	delete(s.records, key)
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
