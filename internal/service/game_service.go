package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/colormatch/internal/domain"
	"github.com/phrazzld/colormatch/internal/events"
	"github.com/phrazzld/colormatch/internal/game"
	"github.com/phrazzld/colormatch/internal/leaderboard"
	"github.com/phrazzld/colormatch/internal/platform/logger"
)

// ScoreRecorder is the leaderboard as seen by the service.
// It is implemented by *leaderboard.ScoreStore.
type ScoreRecorder interface {
	// Save records score for name. A returned error wrapping
	// leaderboard.ErrPersistFailed means the entry was kept in memory only.
	Save(ctx context.Context, score int, name string) (domain.ScoreEntry, error)

	// Entries returns the current leaderboard, best score first.
	Entries() []domain.ScoreEntry

	// Qualifies reports whether score would currently make the leaderboard.
	Qualifies(score int) bool

	// Reset empties the leaderboard.
	Reset(ctx context.Context) error
}

// SessionState is a game snapshot plus session-level flags.
type SessionState struct {
	game.State

	// GameOver is set once the completion signal for the current deck has
	// fired and cleared by a restart.
	GameOver bool `json:"game_over"`

	// ScoreSaved reports whether the current deck's score was saved.
	ScoreSaved bool `json:"score_saved"`

	// Qualifies is set when the deck is complete, its score is unsaved and
	// the score would currently make the leaderboard.
	Qualifies bool `json:"qualifies"`
}

// ScoreResult describes a saved score.
type ScoreResult struct {
	Entry domain.ScoreEntry `json:"entry"`

	// Rank is the 1-based leaderboard position, or 0 if the score did not
	// make the list.
	Rank int `json:"rank"`

	// Persisted is false when the leaderboard could not be written.
	Persisted bool `json:"persisted"`

	// Game is the restarted game, when a restart was requested.
	Game *SessionState `json:"game,omitempty"`
}

// GameService manages game sessions and their scores.
type GameService interface {
	// Start creates a new game session.
	Start(ctx context.Context) (SessionState, error)

	// State returns the current state of a session.
	State(ctx context.Context, id uuid.UUID) (SessionState, error)

	// Select turns over a card. The bool reports whether the board changed.
	Select(ctx context.Context, id uuid.UUID, index int) (SessionState, bool, error)

	// Restart deals a fresh deck for the session.
	Restart(ctx context.Context, id uuid.UUID) (SessionState, error)

	// End discards the session and stops its pending timers.
	End(ctx context.Context, id uuid.UUID) error

	// SaveScore records the session's score under name once its game is
	// complete, optionally dealing a new deck afterwards.
	SaveScore(ctx context.Context, id uuid.UUID, name string, restart bool) (ScoreResult, error)

	// SubmitScore records an arbitrary non-negative score.
	SubmitScore(ctx context.Context, name string, score int) (ScoreResult, error)

	// Leaderboard returns the current high scores.
	Leaderboard(ctx context.Context) []domain.ScoreEntry

	// ResetLeaderboard removes every high score.
	ResetLeaderboard(ctx context.Context) error

	// EvictIdle ends sessions that have not been used for longer than the
	// session TTL and returns how many were ended. It does nothing when the
	// TTL is zero.
	EvictIdle(ctx context.Context) int
}

type session struct {
	game            *game.Game
	gameOver        bool
	savedGeneration uuid.UUID
	lastActive      time.Time
}

// Option customizes the game service.
type Option func(*gameServiceImpl)

// WithScheduler sets the scheduler passed to every game.
func WithScheduler(s game.Scheduler) Option {
	return func(svc *gameServiceImpl) { svc.scheduler = s }
}

// WithEventHandler registers an additional handler for game events.
func WithEventHandler(h events.EventHandler) Option {
	return func(svc *gameServiceImpl) { svc.emitter.RegisterHandler(h) }
}

// WithSessionTTL sets how long a session may sit unused before EvictIdle
// ends it. Zero keeps sessions until they are ended explicitly.
func WithSessionTTL(ttl time.Duration) Option {
	return func(svc *gameServiceImpl) { svc.ttl = ttl }
}

// WithClock sets the clock used to track session activity.
func WithClock(now func() time.Time) Option {
	return func(svc *gameServiceImpl) { svc.now = now }
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	scores    ScoreRecorder
	cfg       game.Config
	scheduler game.Scheduler
	emitter   *events.InMemoryEventEmitter
	logger    *slog.Logger
	ttl       time.Duration
	now       func() time.Time

	// mu guards sessions and their fields. It may be held while taking a
	// game's lock, never the other way round.
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

// NewGameService creates a new GameService.
// It returns an error if scores is nil or cfg is invalid.
func NewGameService(
	scores ScoreRecorder,
	cfg game.Config,
	logger *slog.Logger,
	opts ...Option,
) (GameService, error) {
	if scores == nil {
		return nil, &GameServiceError{
			Operation: "create_service",
			Message:   "scores cannot be nil",
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &GameServiceError{
			Operation: "create_service",
			Message:   "invalid game configuration",
			Err:       err,
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	svc := &gameServiceImpl{
		scores:    scores,
		cfg:       cfg,
		scheduler: game.SystemScheduler{},
		emitter:   events.NewInMemoryEventEmitter(logger),
		logger:    logger.With("component", "game_service"),
		now:       time.Now,
		sessions:  make(map[uuid.UUID]*session),
	}
	svc.emitter.RegisterHandler(svc)
	svc.emitter.RegisterHandler(events.NewLoggingHandler(logger))
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// HandleEvent tracks completion and restarts of session games.
func (s *gameServiceImpl) HandleEvent(ctx context.Context, event *events.GameEvent) error {
	switch event.Type {
	case events.TypeGameCompleted:
		var payload game.CompletedPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return err
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		sess, ok := s.sessions[event.GameID]
		if !ok {
			return nil
		}
		st, err := sess.game.State()
		if err != nil || st.Generation != payload.Generation {
			return nil
		}
		sess.gameOver = true
		logger.FromContextOrDefault(ctx, s.logger).Info("game over",
			"session_id", event.GameID,
			"score", payload.Score,
			"moves", payload.Moves)
	case events.TypeGameRestarted:
		s.mu.Lock()
		defer s.mu.Unlock()
		if sess, ok := s.sessions[event.GameID]; ok {
			sess.gameOver = false
		}
	}
	return nil
}

// Start implements GameService.Start
func (s *gameServiceImpl) Start(ctx context.Context) (SessionState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	g, err := game.New(s.cfg,
		game.WithScheduler(s.scheduler),
		game.WithEmitter(s.emitter),
		game.WithLogger(s.logger),
	)
	if err != nil {
		log.Error("failed to create game", "error", err)
		return SessionState{}, NewGameServiceError("start_game", "failed to create game", err)
	}

	sess := &session{game: g, lastActive: s.now()}
	s.mu.Lock()
	s.sessions[g.ID()] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	log.Info("game session started", "session_id", g.ID(), "active_sessions", count)
	return s.stateOf(sess)
}

// State implements GameService.State
func (s *gameServiceImpl) State(ctx context.Context, id uuid.UUID) (SessionState, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return SessionState{}, err
	}
	return s.stateOf(sess)
}

// Select implements GameService.Select
func (s *gameServiceImpl) Select(ctx context.Context, id uuid.UUID, index int) (SessionState, bool, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return SessionState{}, false, err
	}

	changed := sess.game.Select(ctx, index)
	st, err := s.stateOf(sess)
	return st, changed, err
}

// Restart implements GameService.Restart
func (s *gameServiceImpl) Restart(ctx context.Context, id uuid.UUID) (SessionState, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return SessionState{}, err
	}

	if _, err := sess.game.Restart(ctx); err != nil {
		return SessionState{}, NewGameServiceError("restart_game", "failed to restart game", s.mapGameError(err))
	}
	return s.stateOf(sess)
}

// End implements GameService.End
func (s *gameServiceImpl) End(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	sess.game.Close()
	logger.FromContextOrDefault(ctx, s.logger).Info("game session ended", "session_id", id)
	return nil
}

// SaveScore implements GameService.SaveScore
func (s *gameServiceImpl) SaveScore(
	ctx context.Context,
	id uuid.UUID,
	name string,
	restart bool,
) (ScoreResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With("session_id", id)

	sess, err := s.lookup(id)
	if err != nil {
		return ScoreResult{}, err
	}
	st, err := s.claimScore(sess)
	if err != nil {
		return ScoreResult{}, err
	}

	result := s.record(ctx, log.With("generation", st.Generation), name, st.Score)

	if restart {
		restarted, err := s.Restart(ctx, id)
		if err != nil {
			return result, err
		}
		result.Game = &restarted
	}
	return result, nil
}

// claimScore reads the game and marks its deck as saved in one step, so a
// concurrent Restart either lands before the read or after the mark.
func (s *gameServiceImpl) claimScore(sess *session) (game.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := sess.game.State()
	if err != nil {
		return game.State{}, s.mapGameError(err)
	}
	if st.Status != game.StatusComplete {
		return game.State{}, ErrGameNotComplete
	}
	if sess.savedGeneration == st.Generation {
		return game.State{}, ErrScoreAlreadySaved
	}
	sess.savedGeneration = st.Generation
	return st, nil
}

// SubmitScore implements GameService.SubmitScore
func (s *gameServiceImpl) SubmitScore(ctx context.Context, name string, score int) (ScoreResult, error) {
	if score < 0 {
		return ScoreResult{}, NewGameServiceError("submit_score", "score cannot be negative", domain.ErrValidation)
	}
	return s.record(ctx, logger.FromContextOrDefault(ctx, s.logger), name, score), nil
}

// Leaderboard implements GameService.Leaderboard
func (s *gameServiceImpl) Leaderboard(ctx context.Context) []domain.ScoreEntry {
	return s.scores.Entries()
}

// ResetLeaderboard implements GameService.ResetLeaderboard
func (s *gameServiceImpl) ResetLeaderboard(ctx context.Context) error {
	if err := s.scores.Reset(ctx); err != nil {
		return NewGameServiceError("reset_leaderboard", "failed to reset leaderboard", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("leaderboard reset")
	return nil
}

// EvictIdle implements GameService.EvictIdle
func (s *gameServiceImpl) EvictIdle(ctx context.Context) int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	var expired []*session
	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.lastActive.Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	remaining := len(s.sessions)
	s.mu.Unlock()

	if len(expired) == 0 {
		return 0
	}
	for _, sess := range expired {
		sess.game.Close()
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("evicted idle game sessions",
		"evicted", len(expired),
		"active_sessions", remaining,
		"ttl", s.ttl)
	return len(expired)
}

// record saves a score. A persistence failure is reported through
// ScoreResult.Persisted rather than as an error.
func (s *gameServiceImpl) record(ctx context.Context, log *slog.Logger, name string, score int) ScoreResult {
	entry, err := s.scores.Save(ctx, score, name)
	result := ScoreResult{Entry: entry, Persisted: err == nil}
	if err != nil {
		log.Warn("score kept in memory only", "entry_id", entry.ID, "error", err)
	}

	for i, e := range s.scores.Entries() {
		if e.ID == entry.ID {
			result.Rank = i + 1
			break
		}
	}

	log.Info("score saved",
		"entry_id", entry.ID,
		"score", entry.Score,
		"rank", result.Rank,
		"persisted", result.Persisted)
	return result
}

// lookup finds a session and marks it as active.
func (s *gameServiceImpl) lookup(id uuid.UUID) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.lastActive = s.now()
	return sess, nil
}

func (s *gameServiceImpl) stateOf(sess *session) (SessionState, error) {
	st, err := sess.game.State()
	if err != nil {
		return SessionState{}, s.mapGameError(err)
	}

	s.mu.RLock()
	out := SessionState{
		State:      st,
		GameOver:   sess.gameOver,
		ScoreSaved: sess.savedGeneration == st.Generation,
	}
	s.mu.RUnlock()

	out.Qualifies = st.Status == game.StatusComplete && !out.ScoreSaved && s.scores.Qualifies(st.Score)
	return out, nil
}

// mapGameError treats a game closed by a concurrent End as a missing session.
func (s *gameServiceImpl) mapGameError(err error) error {
	if errors.Is(err, game.ErrGameClosed) {
		return ErrSessionNotFound
	}
	return err
}

var (
	_ GameService         = (*gameServiceImpl)(nil)
	_ events.EventHandler = (*gameServiceImpl)(nil)
	_ ScoreRecorder       = (*leaderboard.ScoreStore)(nil)
)
