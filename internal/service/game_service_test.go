package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/colormatch/internal/domain"
	"github.com/phrazzld/colormatch/internal/events"
	"github.com/phrazzld/colormatch/internal/game"
	"github.com/phrazzld/colormatch/internal/leaderboard"
	"github.com/phrazzld/colormatch/internal/mocks"
	"github.com/phrazzld/colormatch/internal/platform/logger"
	"github.com/phrazzld/colormatch/internal/platform/memory"
	"github.com/phrazzld/colormatch/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc   GameService
	sched *game.ManualScheduler
	board *leaderboard.ScoreStore
	kv    *memory.KVStore
}

func newFixture(t *testing.T, opts ...Option) fixture {
	t.Helper()
	log, _ := logger.GetTestLogger(t)
	kv := memory.NewKVStore(log)
	board := leaderboard.NewScoreStore(kv, leaderboard.DefaultConfig(), log)
	sched := game.NewManualScheduler()

	svc, err := NewGameService(board, game.DefaultConfig(), log, append([]Option{WithScheduler(sched)}, opts...)...)
	require.NoError(t, err)
	return fixture{svc: svc, sched: sched, board: board, kv: kv}
}

// pairsOf groups card indices by color and returns the matchable pairs.
func pairsOf(cards []domain.Card) [][2]int {
	byColor := make(map[domain.Color][]int)
	var order []domain.Color
	for i, c := range cards {
		if _, seen := byColor[c.Symbol]; !seen {
			order = append(order, c.Symbol)
		}
		byColor[c.Symbol] = append(byColor[c.Symbol], i)
	}
	var pairs [][2]int
	for _, color := range order {
		if idx := byColor[color]; len(idx) == 2 {
			pairs = append(pairs, [2]int{idx[0], idx[1]})
		}
	}
	return pairs
}

// oddIndex returns the index of the card whose color appears once.
func oddIndex(cards []domain.Card) int {
	counts := make(map[domain.Color]int)
	for _, c := range cards {
		counts[c.Symbol]++
	}
	for i, c := range cards {
		if counts[c.Symbol] == 1 {
			return i
		}
	}
	return -1
}

// complete matches every pair and fires the completion signal.
func (f fixture) complete(t *testing.T, id uuid.UUID) SessionState {
	t.Helper()
	ctx := context.Background()

	st, err := f.svc.State(ctx, id)
	require.NoError(t, err)
	for _, p := range pairsOf(st.Cards) {
		_, changed, err := f.svc.Select(ctx, id, p[0])
		require.NoError(t, err)
		require.True(t, changed)
		_, changed, err = f.svc.Select(ctx, id, p[1])
		require.NoError(t, err)
		require.True(t, changed)
	}
	f.sched.Advance(500 * time.Millisecond)

	st, err = f.svc.State(ctx, id)
	require.NoError(t, err)
	return st
}

func TestNewGameService_Validation(t *testing.T) {
	_, err := NewGameService(nil, game.DefaultConfig(), nil)
	assert.Error(t, err)

	cfg := game.DefaultConfig()
	cfg.RevertDelay = 0
	_, err = NewGameService(new(mocks.MockScoreRecorder), cfg, nil)
	assert.ErrorIs(t, err, game.ErrInvalidConfig)
}

func TestStartAndState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st, err := f.svc.Start(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, st.ID)
	assert.Len(t, st.Cards, 9)
	assert.Equal(t, game.StatusInProgress, st.Status)
	assert.False(t, st.GameOver)

	again, err := f.svc.State(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, st.Generation, again.Generation)

	other, err := f.svc.Start(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, st.ID, other.ID, "each session has its own game")
}

func TestUnknownSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := f.svc.State(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, _, err = f.svc.Select(ctx, id, 0)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.svc.Restart(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, f.svc.End(ctx, id), ErrSessionNotFound)
	_, err = f.svc.SaveScore(ctx, id, "Ada", false)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSelect_MismatchRevertsAfterDelay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st, err := f.svc.Start(ctx)
	require.NoError(t, err)
	pairs := pairsOf(st.Cards)
	first, second := pairs[0][0], pairs[1][0]

	st, changed, err := f.svc.Select(ctx, st.ID, first)
	require.NoError(t, err)
	assert.True(t, changed)
	require.NotNil(t, st.PendingFirstIndex)

	st, changed, err = f.svc.Select(ctx, st.ID, first)
	require.NoError(t, err)
	assert.False(t, changed, "a face-up card cannot be selected again")

	st, _, err = f.svc.Select(ctx, st.ID, second)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Moves)
	assert.Equal(t, 0, st.Score)
	assert.True(t, st.Cards[first].IsFaceUp)

	f.sched.Advance(time.Second)
	st, err = f.svc.State(ctx, st.ID)
	require.NoError(t, err)
	assert.False(t, st.Cards[first].IsFaceUp)
	assert.False(t, st.Cards[second].IsFaceUp)
}

func TestCompletionSetsGameOver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st, err := f.svc.Start(ctx)
	require.NoError(t, err)
	pairs := pairsOf(st.Cards)
	for _, p := range pairs {
		_, _, err = f.svc.Select(ctx, st.ID, p[0])
		require.NoError(t, err)
		st, _, err = f.svc.Select(ctx, st.ID, p[1])
		require.NoError(t, err)
	}
	assert.Equal(t, game.StatusComplete, st.Status)
	assert.False(t, st.GameOver, "game over waits for the completion delay")

	f.sched.Advance(500 * time.Millisecond)
	st, err = f.svc.State(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, st.GameOver)
	assert.Equal(t, 8, st.Score)
	assert.Equal(t, 4, st.Moves)

	st, err = f.svc.Restart(ctx, st.ID)
	require.NoError(t, err)
	assert.False(t, st.GameOver)
	assert.Equal(t, 0, st.Score)
}

func TestSaveScore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st, err := f.svc.Start(ctx)
	require.NoError(t, err)

	_, err = f.svc.SaveScore(ctx, st.ID, "Ada", false)
	assert.ErrorIs(t, err, ErrGameNotComplete)

	st = f.complete(t, st.ID)
	require.True(t, st.GameOver)
	assert.True(t, st.Qualifies, "an empty leaderboard takes any score")

	result, err := f.svc.SaveScore(ctx, st.ID, "  Ada  ", false)
	require.NoError(t, err)
	assert.Equal(t, "Ada", result.Entry.Name)
	assert.Equal(t, 8, result.Entry.Score)
	assert.Equal(t, 1, result.Rank)
	assert.True(t, result.Persisted)
	assert.Nil(t, result.Game)

	_, err = f.svc.SaveScore(ctx, st.ID, "Ada", false)
	assert.ErrorIs(t, err, ErrScoreAlreadySaved)

	st, err = f.svc.State(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, st.ScoreSaved)
	assert.False(t, st.Qualifies, "a saved deck no longer prompts for a name")

	board := f.svc.Leaderboard(ctx)
	require.Len(t, board, 1)
	assert.Equal(t, result.Entry.ID, board[0].ID)

	raw, err := f.kv.Get(ctx, leaderboard.DefaultKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), result.Entry.ID.String())
}

func TestSaveScore_WithRestart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st, err := f.svc.Start(ctx)
	require.NoError(t, err)
	st = f.complete(t, st.ID)

	result, err := f.svc.SaveScore(ctx, st.ID, "", true)
	require.NoError(t, err)
	assert.Equal(t, domain.AnonymousName, result.Entry.Name)
	require.NotNil(t, result.Game)
	assert.NotEqual(t, st.Generation, result.Game.Generation)
	assert.Equal(t, game.StatusInProgress, result.Game.Status)
	assert.False(t, result.Game.GameOver)
	assert.False(t, result.Game.ScoreSaved)
	assert.Equal(t, 0, result.Game.Score)
}

func TestSaveScore_PersistFailureIsReported(t *testing.T) {
	log, _ := logger.GetTestLogger(t)
	scores := new(mocks.MockScoreRecorder)
	entry := domain.NewScoreEntry("Ada", 8, time.Now())
	scores.On("Save", mock.Anything, 8, "Ada").
		Return(entry, errors.Join(leaderboard.ErrPersistFailed, store.ErrUpdateFailed))
	scores.On("Entries").Return([]domain.ScoreEntry{entry})
	scores.On("Qualifies", 8).Return(true)

	sched := game.NewManualScheduler()
	svc, err := NewGameService(scores, game.DefaultConfig(), log, WithScheduler(sched))
	require.NoError(t, err)
	f := fixture{svc: svc, sched: sched}

	st, err := svc.Start(context.Background())
	require.NoError(t, err)
	f.complete(t, st.ID)

	result, err := svc.SaveScore(context.Background(), st.ID, "Ada", false)
	require.NoError(t, err, "a failed write is not an error for the caller")
	assert.False(t, result.Persisted)
	assert.Equal(t, 1, result.Rank)
	scores.AssertExpectations(t)
}

func TestSaveScore_RacesWithRestart(t *testing.T) {
	for i := 0; i < 50; i++ {
		f := newFixture(t)
		ctx := context.Background()

		st, err := f.svc.Start(ctx)
		require.NoError(t, err)
		completed := f.complete(t, st.ID)

		var wg sync.WaitGroup
		var result ScoreResult
		var saveErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			result, saveErr = f.svc.SaveScore(ctx, st.ID, "Ada", false)
		}()
		go func() {
			defer wg.Done()
			_, err := f.svc.Restart(ctx, st.ID)
			assert.NoError(t, err)
		}()
		wg.Wait()

		after, err := f.svc.State(ctx, st.ID)
		require.NoError(t, err)
		require.NotEqual(t, completed.Generation, after.Generation)
		assert.False(t, after.ScoreSaved, "the new deck is never marked saved")

		if saveErr != nil {
			// Restart won: the fresh deck is not complete.
			assert.ErrorIs(t, saveErr, ErrGameNotComplete)
			assert.Empty(t, f.svc.Leaderboard(ctx))
			continue
		}
		assert.Equal(t, completed.Score, result.Entry.Score, "only the completed deck's score is recorded")
		assert.Len(t, f.svc.Leaderboard(ctx), 1)
	}
}

func TestSaveScore_ConcurrentSavesRecordOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st, err := f.svc.Start(ctx)
	require.NoError(t, err)
	f.complete(t, st.ID)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.SaveScore(ctx, st.ID, "Ada", false)
		}(i)
	}
	wg.Wait()

	saved := 0
	for _, err := range errs {
		if err == nil {
			saved++
			continue
		}
		assert.ErrorIs(t, err, ErrScoreAlreadySaved)
	}
	assert.Equal(t, 1, saved)
	assert.Len(t, f.svc.Leaderboard(ctx), 1)
}

func TestQualifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < leaderboard.DefaultLimit; i++ {
		_, err := f.svc.SubmitScore(ctx, "pro", 100)
		require.NoError(t, err)
	}

	st, err := f.svc.Start(ctx)
	require.NoError(t, err)
	assert.False(t, st.Qualifies, "an unfinished game never qualifies")

	st = f.complete(t, st.ID)
	require.Equal(t, game.StatusComplete, st.Status)
	assert.False(t, st.Qualifies, "8 cannot beat a full board of 100s")

	require.NoError(t, f.svc.ResetLeaderboard(ctx))
	st, err = f.svc.State(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, st.Qualifies)
}

func TestResetLeaderboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitScore(ctx, "Ada", 5)
	require.NoError(t, err)
	require.NoError(t, f.svc.ResetLeaderboard(ctx))

	assert.Empty(t, f.svc.Leaderboard(ctx))
	_, err = f.kv.Get(ctx, leaderboard.DefaultKey)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestResetLeaderboard_Failure(t *testing.T) {
	log, _ := logger.GetTestLogger(t)
	scores := new(mocks.MockScoreRecorder)
	scores.On("Reset", mock.Anything).Return(errors.Join(leaderboard.ErrPersistFailed, store.ErrUpdateFailed))

	svc, err := NewGameService(scores, game.DefaultConfig(), log, WithScheduler(game.NewManualScheduler()))
	require.NoError(t, err)

	err = svc.ResetLeaderboard(context.Background())
	assert.ErrorIs(t, err, leaderboard.ErrPersistFailed)
	var svcErr *GameServiceError
	assert.ErrorAs(t, err, &svcErr)
	scores.AssertExpectations(t)
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestEvictIdle(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	f := newFixture(t, WithSessionTTL(time.Minute), WithClock(clock.Now))
	ctx := context.Background()

	active, err := f.svc.Start(ctx)
	require.NoError(t, err)
	idle, err := f.svc.Start(ctx)
	require.NoError(t, err)

	pairs := pairsOf(idle.Cards)
	_, _, err = f.svc.Select(ctx, idle.ID, pairs[0][0])
	require.NoError(t, err)
	_, _, err = f.svc.Select(ctx, idle.ID, pairs[1][0])
	require.NoError(t, err)
	require.Equal(t, 1, f.sched.Pending())

	clock.Advance(30 * time.Second)
	_, err = f.svc.State(ctx, active.ID)
	require.NoError(t, err)
	assert.Zero(t, f.svc.EvictIdle(ctx), "nothing is idle past the TTL yet")

	clock.Advance(45 * time.Second)
	assert.Equal(t, 1, f.svc.EvictIdle(ctx))
	assert.Equal(t, 0, f.sched.Pending(), "evicting a session stops its timers")

	_, err = f.svc.State(ctx, idle.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.svc.State(ctx, active.ID)
	assert.NoError(t, err, "recent use keeps a session alive")
	assert.ErrorIs(t, f.svc.End(ctx, idle.ID), ErrSessionNotFound)
}

func TestEvictIdle_DisabledWithoutTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	f := newFixture(t, WithClock(clock.Now))
	ctx := context.Background()

	st, err := f.svc.Start(ctx)
	require.NoError(t, err)
	clock.Advance(24 * time.Hour)

	assert.Zero(t, f.svc.EvictIdle(ctx))
	_, err = f.svc.State(ctx, st.ID)
	assert.NoError(t, err)
}

func TestSubmitScore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, score := range []int{3, 9, 5} {
		_, err := f.svc.SubmitScore(ctx, "p", score)
		require.NoError(t, err)
	}
	result, err := f.svc.SubmitScore(ctx, "q", 4)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Rank)

	_, err = f.svc.SubmitScore(ctx, "neg", -1)
	assert.ErrorIs(t, err, domain.ErrValidation)

	for i := 0; i < 10; i++ {
		_, err = f.svc.SubmitScore(ctx, "high", 100)
		require.NoError(t, err)
	}
	result, err = f.svc.SubmitScore(ctx, "low", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Rank, "a score that misses the leaderboard has no rank")
}

func TestEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st, err := f.svc.Start(ctx)
	require.NoError(t, err)
	pairs := pairsOf(st.Cards)
	_, _, err = f.svc.Select(ctx, st.ID, pairs[0][0])
	require.NoError(t, err)
	_, _, err = f.svc.Select(ctx, st.ID, pairs[1][0])
	require.NoError(t, err)
	require.Equal(t, 1, f.sched.Pending())

	require.NoError(t, f.svc.End(ctx, st.ID))
	assert.Equal(t, 0, f.sched.Pending(), "ending a session stops its timers")

	_, err = f.svc.State(ctx, st.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestEventHandlerOption(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	f := newFixture(t, WithEventHandler(events.HandlerFunc(func(_ context.Context, e *events.GameEvent) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, e.Type)
		return nil
	})))
	ctx := context.Background()

	st, err := f.svc.Start(ctx)
	require.NoError(t, err)
	odd := oddIndex(st.Cards)
	pair := pairsOf(st.Cards)[0]
	_, _, err = f.svc.Select(ctx, st.ID, odd)
	require.NoError(t, err)
	_, _, err = f.svc.Select(ctx, st.ID, pair[0])
	require.NoError(t, err)
	f.sched.Advance(time.Second)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		events.TypeCardSelected,
		events.TypeCardSelected,
		events.TypePairMismatched,
		events.TypeCardsReverted,
	}, seen)
}

func TestConcurrentSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st, err := f.svc.Start(ctx)
			if !assert.NoError(t, err) {
				return
			}
			for idx := range st.Cards {
				_, _, err := f.svc.Select(ctx, st.ID, idx)
				assert.NoError(t, err)
			}
			assert.NoError(t, f.svc.End(ctx, st.ID))
		}()
	}
	wg.Wait()
}
