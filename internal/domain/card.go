package domain

import (
	"github.com/google/uuid"
)

// Card is one tile of the board. Its ID is stable for the life of the deck
// it belongs to. IsMatched is monotonic: once set it is never cleared within
// a game.
type Card struct {
	ID        uuid.UUID `json:"id"`
	Symbol    Color     `json:"symbol"`
	IsFaceUp  bool      `json:"is_face_up"`
	IsMatched bool      `json:"is_matched"`
}

// NewCard returns a face-down, unmatched card with a fresh ID.
func NewCard(symbol Color) Card {
	return Card{
		ID:     uuid.New(),
		Symbol: symbol,
	}
}

// Selectable reports whether the card may be turned over by the player.
func (c Card) Selectable() bool {
	return !c.IsFaceUp && !c.IsMatched
}

// Matches reports whether two cards carry the same color.
func (c Card) Matches(other Card) bool {
	return c.Symbol == other.Symbol
}
