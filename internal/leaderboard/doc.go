// Package leaderboard keeps the high-score list: a bounded, descending list
// of score entries persisted as a single JSON record in a store.KVStore.
package leaderboard
