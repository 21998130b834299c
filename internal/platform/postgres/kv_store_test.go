//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/phrazzld/colormatch/internal/platform/postgres"
	"github.com/phrazzld/colormatch/internal/store"
	"github.com/phrazzld/colormatch/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresKVStore_PutGet(t *testing.T) {
	testdb.WithTx(t, testdb.Open(t), func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		kv := postgres.NewPostgresKVStore(tx, nil)

		_, err := kv.Get(ctx, "high_scores_v2")
		assert.ErrorIs(t, err, store.ErrRecordNotFound)

		require.NoError(t, kv.Put(ctx, "high_scores_v2", []byte(`[{"name":"Ada","score":8}]`)))
		value, err := kv.Get(ctx, "high_scores_v2")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"name":"Ada","score":8}]`, string(value))

		require.NoError(t, kv.Put(ctx, "high_scores_v2", []byte(`[]`)))
		value, err = kv.Get(ctx, "high_scores_v2")
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(value))
	})
}

func TestPostgresKVStore_PutValidation(t *testing.T) {
	testdb.WithTx(t, testdb.Open(t), func(t *testing.T, tx *sql.Tx) {
		kv := postgres.NewPostgresKVStore(tx, nil)

		err := kv.Put(context.Background(), "", []byte(`{}`))
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestPostgresKVStore_PutMalformedJSON(t *testing.T) {
	testdb.WithTx(t, testdb.Open(t), func(t *testing.T, tx *sql.Tx) {
		_, err := tx.Exec("SAVEPOINT before_put")
		require.NoError(t, err)

		kv := postgres.NewPostgresKVStore(tx, nil)
		err = kv.Put(context.Background(), "broken", []byte(`{not json`))
		assert.ErrorIs(t, err, store.ErrInvalidEntity)

		_, err = tx.Exec("ROLLBACK TO SAVEPOINT before_put")
		require.NoError(t, err)
	})
}

func TestPostgresKVStore_Delete(t *testing.T) {
	testdb.WithTx(t, testdb.Open(t), func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		kv := postgres.NewPostgresKVStore(tx, nil)

		assert.ErrorIs(t, kv.Delete(ctx, "missing"), store.ErrRecordNotFound)

		require.NoError(t, kv.Put(ctx, "k", []byte(`1`)))
		require.NoError(t, kv.Delete(ctx, "k"))

		_, err := kv.Get(ctx, "k")
		assert.ErrorIs(t, err, store.ErrRecordNotFound)
	})
}
