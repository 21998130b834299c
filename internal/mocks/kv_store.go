package mocks

import (
	"context"

	"github.com/phrazzld/colormatch/internal/store"
)

// MockKVStore implements store.KVStore. Each call uses the matching Fn
// field when set and Base otherwise; with neither, reads report
// store.ErrRecordNotFound and writes succeed.
type MockKVStore struct {
	Base store.KVStore

	GetFn    func(ctx context.Context, key string) ([]byte, error)
	PutFn    func(ctx context.Context, key string, value []byte) error
	DeleteFn func(ctx context.Context, key string) error
}

var _ store.KVStore = (*MockKVStore)(nil)

// Get implements store.KVStore.
func (m *MockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	switch {
	case m.GetFn != nil:
		return m.GetFn(ctx, key)
	case m.Base != nil:
		return m.Base.Get(ctx, key)
	default:
		return nil, store.ErrRecordNotFound
	}
}

// Put implements store.KVStore.
func (m *MockKVStore) Put(ctx context.Context, key string, value []byte) error {
	switch {
	case m.PutFn != nil:
		return m.PutFn(ctx, key, value)
	case m.Base != nil:
		return m.Base.Put(ctx, key, value)
	default:
		return nil
	}
}

// Delete implements store.KVStore.
func (m *MockKVStore) Delete(ctx context.Context, key string) error {
	switch {
	case m.DeleteFn != nil:
		return m.DeleteFn(ctx, key)
	case m.Base != nil:
		return m.Base.Delete(ctx, key)
	default:
		return nil
	}
}
