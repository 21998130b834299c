package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AnonymousName replaces blank player names on the leaderboard.
const AnonymousName = "Anonymous"

// ScoreEntry is one row of the leaderboard.
type ScoreEntry struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Score int       `json:"score"`
	Date  time.Time `json:"date"`
}

// NormalizeName trims surrounding whitespace and substitutes AnonymousName
// when nothing is left.
func NormalizeName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return AnonymousName
	}
	return trimmed
}

// NewScoreEntry creates an entry for the given player, stamped at the given
// time in UTC.
func NewScoreEntry(name string, score int, at time.Time) ScoreEntry {
	return ScoreEntry{
		ID:    uuid.New(),
		Name:  NormalizeName(name),
		Score: score,
		Date:  at.UTC(),
	}
}

// Validate checks that the entry can be shown on the leaderboard.
func (e ScoreEntry) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	return nil
}
