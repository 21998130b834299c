//go:build integration

// Package testdb provides helpers for PostgreSQL integration tests.
//
// Tests open a migrated connection with Open, which skips the test when no
// database is configured, and isolate their writes with WithTx:
//
//	func TestSomething(t *testing.T) {
//		db := testdb.Open(t)
//		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//			kv := postgres.NewPostgresKVStore(tx, nil)
//			// ...
//		})
//	}
package testdb
