package domain

import (
	"fmt"
	"math/rand/v2"
)

// CreateDeck builds a shuffled deck of 2k+1 cards: each of the first k
// palette colors twice, plus the odd color once. Every card gets a fresh ID
// and starts face down.
//
// The shuffle is Fisher-Yates driven by rng. A nil rng uses the global
// source.
func CreateDeck(k int, palette []Color, odd Color, rng *rand.Rand) ([]Card, error) {
	if k < 1 || k > len(palette) {
		return nil, fmt.Errorf("%w: %d pairs requested from a palette of %d",
			ErrInvalidPairCount, k, len(palette))
	}

	seen := make(map[Color]struct{}, k)
	for _, c := range palette[:k] {
		if c == "" || c == odd {
			return nil, fmt.Errorf("%w: color %q cannot be paired", ErrInvalidPalette, c)
		}
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("%w: color %q listed twice", ErrInvalidPalette, c)
		}
		seen[c] = struct{}{}
	}
	if odd == "" {
		return nil, fmt.Errorf("%w: odd color is empty", ErrInvalidPalette)
	}

	deck := make([]Card, 0, 2*k+1)
	for _, c := range palette[:k] {
		deck = append(deck, NewCard(c), NewCard(c))
	}
	deck = append(deck, NewCard(odd))

	shuffle(deck, rng)
	return deck, nil
}

func shuffle(deck []Card, rng *rand.Rand) {
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	for i := len(deck) - 1; i > 0; i-- {
		j := intN(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
}
