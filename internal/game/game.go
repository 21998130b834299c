package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/colormatch/internal/domain"
	"github.com/phrazzld/colormatch/internal/events"
)

// Scoring rules.
const (
	MatchReward     = 2
	MismatchPenalty = 1
)

const noPendingIndex = -1

var (
	// ErrInvalidConfig is returned when a game is created with unusable settings.
	ErrInvalidConfig = errors.New("invalid game configuration")

	// ErrGameClosed is returned by operations on a game that has been closed.
	ErrGameClosed = errors.New("game is closed")
)

// Config holds the rules of a game.
type Config struct {
	// PairCount is k, the number of matchable pairs. The deck holds 2k+1 cards.
	PairCount int

	// Palette supplies the paired colors; the first PairCount entries are used.
	Palette []domain.Color

	// OddColor is the color of the single unmatched card.
	OddColor domain.Color

	// RevertDelay is how long a mismatched pair stays face up.
	RevertDelay time.Duration

	// CompletionDelay is how long after the final match the completion
	// event is published, so the last pair is visible as matched first.
	CompletionDelay time.Duration
}

// DefaultConfig returns the standard four-pair game.
func DefaultConfig() Config {
	return Config{
		PairCount:       domain.DefaultPairCount,
		Palette:         domain.DefaultPalette,
		OddColor:        domain.DefaultOddColor,
		RevertDelay:     time.Second,
		CompletionDelay: 500 * time.Millisecond,
	}
}

// Validate checks the timing settings. Deck settings are checked by
// domain.CreateDeck.
func (c Config) Validate() error {
	if c.RevertDelay <= 0 {
		return fmt.Errorf("%w: revert delay must be positive", ErrInvalidConfig)
	}
	if c.CompletionDelay < 0 {
		return fmt.Errorf("%w: completion delay cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// Status is the game-level state.
type Status string

// Game statuses.
const (
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
)

// State is a point-in-time copy of a game.
type State struct {
	ID                uuid.UUID     `json:"id"`
	Generation        uuid.UUID     `json:"generation"`
	Cards             []domain.Card `json:"cards"`
	PendingFirstIndex *int          `json:"pending_first_index,omitempty"`
	Score             int           `json:"score"`
	Moves             int           `json:"moves"`
	MatchedPairs      int           `json:"matched_pairs"`
	PairCount         int           `json:"pair_count"`
	Status            Status        `json:"status"`
}

// round is one deck's worth of play. Restart replaces it wholesale, and
// deferred callbacks hold a pointer to the round they were scheduled for.
type round struct {
	generation         uuid.UUID
	cards              []domain.Card
	pending            int
	score              int
	moves              int
	matchedPairs       int
	completionSignaled bool
}

func newRound(cards []domain.Card) *round {
	return &round{
		generation: uuid.New(),
		cards:      cards,
		pending:    noPendingIndex,
	}
}

// Game is a single-player matching game.
type Game struct {
	id        uuid.UUID
	cfg       Config
	scheduler Scheduler
	rng       *rand.Rand
	emitter   events.EventEmitter
	logger    *slog.Logger

	mu        sync.Mutex
	round     *round
	timers    map[uint64]Timer
	nextTimer uint64
	closed    bool
}

// Option customizes a Game.
type Option func(*Game)

// WithID sets the game ID. By default a random UUID is used.
func WithID(id uuid.UUID) Option {
	return func(g *Game) { g.id = id }
}

// WithScheduler sets the scheduler for reverts and completion.
func WithScheduler(s Scheduler) Option {
	return func(g *Game) { g.scheduler = s }
}

// WithRand sets the random source used to shuffle decks.
func WithRand(r *rand.Rand) Option {
	return func(g *Game) { g.rng = r }
}

// WithEmitter sets where game events are published.
func WithEmitter(e events.EventEmitter) Option {
	return func(g *Game) { g.emitter = e }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Game) { g.logger = l }
}

// New creates a game with a freshly shuffled deck.
func New(cfg Config, opts ...Option) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Game{
		id:        uuid.New(),
		cfg:       cfg,
		scheduler: SystemScheduler{},
		emitter:   events.NopEmitter{},
		logger:    slog.Default(),
		timers:    make(map[uint64]Timer),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "game", "game_id", g.id.String())

	deck, err := g.newDeck()
	if err != nil {
		return nil, err
	}
	g.round = newRound(deck)
	return g, nil
}

// ID returns the game's identifier.
func (g *Game) ID() uuid.UUID {
	return g.id
}

// Config returns the rules the game was created with.
func (g *Game) Config() Config {
	return g.cfg
}

// State returns a copy of the current game state. A closed game returns
// ErrGameClosed.
func (g *Game) State() (State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return State{}, ErrGameClosed
	}
	return g.snapshotLocked(), nil
}

// Select turns over the card at index. Selecting an out-of-range index, a
// face-up card or a matched card does nothing, and so does any selection once
// every pair is matched. The second card of a pair is resolved immediately; a
// mismatched pair flips back after RevertDelay. Select reports whether the
// board changed.
func (g *Game) Select(ctx context.Context, index int) bool {
	g.mu.Lock()
	r := g.round
	if g.closed || r.matchedPairs == g.cfg.PairCount ||
		index < 0 || index >= len(r.cards) || !r.cards[index].Selectable() {
		g.mu.Unlock()
		g.logger.DebugContext(ctx, "ignoring selection", "index", index)
		return false
	}

	r.cards[index].IsFaceUp = true
	out := []emission{{events.TypeCardSelected, SelectedPayload{
		Generation: r.generation,
		Index:      index,
		Color:      r.cards[index].Symbol,
	}}}

	if r.pending == noPendingIndex {
		r.pending = index
	} else {
		first := r.pending
		r.pending = noPendingIndex
		out = append(out, g.resolveComparisonLocked(r, first, index))
	}
	g.mu.Unlock()

	g.publish(ctx, out)
	return true
}

// resolveComparisonLocked scores the pair (i0, i1) and schedules any
// deferred work. g.mu must be held.
func (g *Game) resolveComparisonLocked(r *round, i0, i1 int) emission {
	r.moves++
	a, b := &r.cards[i0], &r.cards[i1]

	if a.Matches(*b) {
		a.IsMatched = true
		b.IsMatched = true
		r.score += MatchReward
		r.matchedPairs++

		if r.matchedPairs == g.cfg.PairCount {
			g.scheduleLocked(g.cfg.CompletionDelay, func() []emission {
				return g.signalCompletionLocked(r)
			})
		}
		return emission{events.TypePairMatched, r.comparisonPayload(i0, i1)}
	}

	r.score = max(0, r.score-MismatchPenalty)
	g.scheduleLocked(g.cfg.RevertDelay, func() []emission {
		return g.revertLocked(r, i0, i1)
	})
	return emission{events.TypePairMismatched, r.comparisonPayload(i0, i1)}
}

// revertLocked turns a mismatched pair face down, provided the round it was
// scheduled for is still being played.
func (g *Game) revertLocked(r *round, i0, i1 int) []emission {
	if g.round != r {
		g.logger.Debug("discarding revert for a replaced deck",
			"generation", r.generation.String())
		return nil
	}
	if i0 < 0 || i1 < 0 || i0 >= len(r.cards) || i1 >= len(r.cards) {
		return nil
	}

	flipped := make([]int, 0, 2)
	for _, i := range [2]int{i0, i1} {
		if c := &r.cards[i]; !c.IsMatched && c.IsFaceUp {
			c.IsFaceUp = false
			flipped = append(flipped, i)
		}
	}
	if len(flipped) == 0 {
		return nil
	}
	return []emission{{events.TypeCardsReverted, RevertedPayload{
		Generation: r.generation,
		Indices:    flipped,
	}}}
}

func (g *Game) signalCompletionLocked(r *round) []emission {
	if g.round != r || r.completionSignaled {
		return nil
	}
	r.completionSignaled = true
	g.logger.Info("game completed", "score", r.score, "moves", r.moves)
	return []emission{{events.TypeGameCompleted, CompletedPayload{
		Generation: r.generation,
		Score:      r.score,
		Moves:      r.moves,
	}}}
}

// Restart replaces the deck with a freshly shuffled one of the same size and
// resets score, moves and matched pairs. Pending reverts for the old deck
// become no-ops.
func (g *Game) Restart(ctx context.Context) (State, error) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return State{}, ErrGameClosed
	}
	deck, err := g.newDeck()
	if err != nil {
		g.mu.Unlock()
		return State{}, err
	}
	g.round = newRound(deck)
	st := g.snapshotLocked()
	g.mu.Unlock()

	g.logger.DebugContext(ctx, "game restarted", "generation", st.Generation.String())
	g.publish(ctx, []emission{{events.TypeGameRestarted, RestartedPayload{
		Generation: st.Generation,
		CardCount:  len(st.Cards),
	}}})
	return st, nil
}

// Close discards the game and stops its pending timers. Further calls to
// Select are ignored and Restart and State return ErrGameClosed.
func (g *Game) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.closed = true
	for id, t := range g.timers {
		t.Stop()
		delete(g.timers, id)
	}
}

func (g *Game) newDeck() ([]domain.Card, error) {
	deck, err := domain.CreateDeck(g.cfg.PairCount, g.cfg.Palette, g.cfg.OddColor, g.rng)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return deck, nil
}

// scheduleLocked runs fn under g.mu after d, then publishes whatever it
// returns. g.mu must be held.
func (g *Game) scheduleLocked(d time.Duration, fn func() []emission) {
	id := g.nextTimer
	g.nextTimer++
	g.timers[id] = g.scheduler.AfterFunc(d, func() {
		g.mu.Lock()
		if _, live := g.timers[id]; !live {
			g.mu.Unlock()
			return
		}
		delete(g.timers, id)
		out := fn()
		g.mu.Unlock()

		g.publish(context.Background(), out)
	})
}

func (g *Game) snapshotLocked() State {
	r := g.round
	cards := make([]domain.Card, len(r.cards))
	copy(cards, r.cards)

	st := State{
		ID:           g.id,
		Generation:   r.generation,
		Cards:        cards,
		Score:        r.score,
		Moves:        r.moves,
		MatchedPairs: r.matchedPairs,
		PairCount:    g.cfg.PairCount,
		Status:       StatusInProgress,
	}
	if r.pending != noPendingIndex {
		pending := r.pending
		st.PendingFirstIndex = &pending
	}
	if r.matchedPairs == g.cfg.PairCount {
		st.Status = StatusComplete
	}
	return st
}

func (r *round) comparisonPayload(i0, i1 int) ComparisonPayload {
	return ComparisonPayload{
		Generation:   r.generation,
		FirstIndex:   i0,
		SecondIndex:  i1,
		Score:        r.score,
		Moves:        r.moves,
		MatchedPairs: r.matchedPairs,
	}
}
