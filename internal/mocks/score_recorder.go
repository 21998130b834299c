package mocks

import (
	"context"

	"github.com/phrazzld/colormatch/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockScoreRecorder is a testify mock of the game service's score sink.
type MockScoreRecorder struct {
	mock.Mock
}

// Save records the call and returns the configured entry and error.
func (m *MockScoreRecorder) Save(ctx context.Context, score int, name string) (domain.ScoreEntry, error) {
	args := m.Called(ctx, score, name)
	return args.Get(0).(domain.ScoreEntry), args.Error(1)
}

// Entries returns the configured leaderboard, or nil.
func (m *MockScoreRecorder) Entries() []domain.ScoreEntry {
	args := m.Called()
	if entries, ok := args.Get(0).([]domain.ScoreEntry); ok {
		return entries
	}
	return nil
}

// Qualifies returns the configured answer.
func (m *MockScoreRecorder) Qualifies(score int) bool {
	return m.Called(score).Bool(0)
}

// Reset records the call and returns the configured error.
func (m *MockScoreRecorder) Reset(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
