// Package domain contains the entities of the color matching game: cards,
// the color palette, deck construction and leaderboard entries. It has no
// knowledge of timing, storage or transport.
package domain
