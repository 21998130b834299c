package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/phrazzld/colormatch/internal/domain"
	"github.com/phrazzld/colormatch/internal/platform/logger"
	"github.com/phrazzld/colormatch/internal/store"
)

const (
	// DefaultKey is the record the leaderboard is stored under.
	DefaultKey = "high_scores_v2"

	// DefaultLimit is the number of entries kept.
	DefaultLimit = 10
)

// ErrPersistFailed is returned by Save when the updated leaderboard could not
// be written. The in-memory leaderboard is still updated.
var ErrPersistFailed = errors.New("failed to persist leaderboard")

// Config controls where the leaderboard is stored and how long it is.
type Config struct {
	Key   string
	Limit int
}

// DefaultConfig returns the standard ten-entry leaderboard.
func DefaultConfig() Config {
	return Config{Key: DefaultKey, Limit: DefaultLimit}
}

// Option customizes a ScoreStore.
type Option func(*ScoreStore)

// WithClock sets the function used to timestamp new entries.
func WithClock(now func() time.Time) Option {
	return func(s *ScoreStore) { s.now = now }
}

// ScoreStore is the high-score list.
type ScoreStore struct {
	kv     store.KVStore
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	// saveMu serializes Save so the last write carries the latest list.
	saveMu  sync.Mutex
	mu      sync.RWMutex
	entries []domain.ScoreEntry
}

// NewScoreStore creates an empty leaderboard backed by kv. Call Load to
// hydrate it. Zero Config fields take their defaults.
func NewScoreStore(kv store.KVStore, cfg Config, logger *slog.Logger, opts ...Option) *ScoreStore {
	if kv == nil {
		panic("kv cannot be nil")
	}
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &ScoreStore{
		kv:      kv,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "leaderboard")),
		now:     time.Now,
		entries: []domain.ScoreEntry{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted leaderboard and replaces the in-memory entries
// with it. A missing, unreadable or corrupt record yields an empty
// leaderboard.
func (s *ScoreStore) Load(ctx context.Context) []domain.ScoreEntry {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("key", s.cfg.Key))

	loaded := s.read(ctx, log)

	s.mu.Lock()
	s.entries = loaded
	out := s.copyLocked()
	s.mu.Unlock()

	log.Info("leaderboard loaded", slog.Int("entries", len(out)))
	return out
}

func (s *ScoreStore) read(ctx context.Context, log *slog.Logger) []domain.ScoreEntry {
	data, err := s.kv.Get(ctx, s.cfg.Key)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("no stored leaderboard")
		} else {
			log.Error("failed to read leaderboard", slog.String("error", err.Error()))
		}
		return []domain.ScoreEntry{}
	}

	var decoded []domain.ScoreEntry
	if err := json.Unmarshal(data, &decoded); err != nil {
		log.Warn("discarding corrupt leaderboard", slog.String("error", err.Error()))
		return []domain.ScoreEntry{}
	}

	entries := make([]domain.ScoreEntry, 0, len(decoded))
	for _, e := range decoded {
		if err := e.Validate(); err != nil {
			log.Warn("dropping invalid leaderboard entry",
				slog.String("entry_id", e.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		entries = append(entries, e)
	}
	return s.rank(entries)
}

// Save records a score for name, keeps the best Limit entries and writes the
// result. Blank names are saved as domain.AnonymousName. The returned entry
// is the one created, whether or not it made the leaderboard.
//
// A write failure is logged and returned wrapped in ErrPersistFailed; the
// in-memory entries reflect the save either way.
func (s *ScoreStore) Save(ctx context.Context, score int, name string) (domain.ScoreEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("key", s.cfg.Key))

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	entry := domain.NewScoreEntry(name, score, s.now())

	s.mu.Lock()
	s.entries = s.rank(append(s.entries, entry))
	snapshot := s.copyLocked()
	s.mu.Unlock()

	data, err := json.Marshal(snapshot)
	if err != nil {
		log.Error("failed to encode leaderboard", slog.String("error", err.Error()))
		return entry, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	if err := s.kv.Put(ctx, s.cfg.Key, data); err != nil {
		log.Error("failed to write leaderboard",
			slog.String("entry_id", entry.ID.String()),
			slog.String("error", err.Error()))
		return entry, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	log.Debug("score saved",
		slog.String("entry_id", entry.ID.String()),
		slog.Int("score", entry.Score),
		slog.Int("entries", len(snapshot)))
	return entry, nil
}

// Entries returns a copy of the current leaderboard, best score first.
func (s *ScoreStore) Entries() []domain.ScoreEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// Reset empties the leaderboard and deletes its stored record. A missing
// record is not an error. A failed delete is returned wrapped in
// ErrPersistFailed; the in-memory leaderboard is empty either way.
func (s *ScoreStore) Reset(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("key", s.cfg.Key))

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	dropped := len(s.entries)
	s.entries = []domain.ScoreEntry{}
	s.mu.Unlock()

	if err := s.kv.Delete(ctx, s.cfg.Key); err != nil && !store.IsNotFoundError(err) {
		log.Error("failed to delete leaderboard", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	log.Info("leaderboard reset", slog.Int("dropped", dropped))
	return nil
}

// Qualifies reports whether score would currently earn a place on the
// leaderboard.
func (s *ScoreStore) Qualifies(score int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) < s.cfg.Limit {
		return true
	}
	return score > s.entries[len(s.entries)-1].Score
}

// Limit returns the maximum number of entries kept.
func (s *ScoreStore) Limit() int {
	return s.cfg.Limit
}

// rank sorts entries by score, highest first, keeping earlier entries ahead
// on ties, and truncates to the limit.
func (s *ScoreStore) rank(entries []domain.ScoreEntry) []domain.ScoreEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	if len(entries) > s.cfg.Limit {
		entries = entries[:s.cfg.Limit]
	}
	return entries
}

func (s *ScoreStore) copyLocked() []domain.ScoreEntry {
	out := make([]domain.ScoreEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
