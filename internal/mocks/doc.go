// Package mocks provides shared test doubles for interfaces used across
// packages.
//
// Two styles are offered. MockKVStore uses function fields that fall back
// to a wrapped implementation, so a test overrides only the calls it cares
// about:
//
//	kv := &mocks.MockKVStore{
//	    Base: memory.NewKVStore(nil),
//	    PutFn: func(ctx context.Context, key string, value []byte) error {
//	        return errors.New("disk full")
//	    },
//	}
//
// MockScoreRecorder is built on testify/mock for tests that assert on
// arguments and call counts.
package mocks
