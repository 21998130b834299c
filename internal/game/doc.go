// Package game implements the single-player color matching state machine:
// turning cards face up, resolving pairs, scoring, and the timed flip-back of
// mismatched cards.
//
// A Game serializes every mutation behind its own mutex because deferred
// callbacks run on timer goroutines. Deferred work is identity-checked
// against the deck it was scheduled for, so a restart during the delay can
// never leak stale indices into the new deck.
package game
