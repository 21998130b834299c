package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/colormatch/internal/domain"
	"github.com/phrazzld/colormatch/internal/game"
	"github.com/phrazzld/colormatch/internal/service"
)

// SelectCardRequest is the payload for POST /api/games/{id}/select.
type SelectCardRequest struct {
	Index *int `json:"index" validate:"required"`
}

// SaveGameScoreRequest is the payload for POST /api/games/{id}/score.
type SaveGameScoreRequest struct {
	Name    string `json:"name"    validate:"max=64"`
	Restart bool   `json:"restart"`
}

// SubmitScoreRequest is the payload for POST /api/scores.
type SubmitScoreRequest struct {
	Name  string `json:"name"  validate:"max=64"`
	Score *int   `json:"score" validate:"required,min=0"`
}

// CardResponse is a card as seen by the player. The color of a face-down
// card is withheld.
type CardResponse struct {
	ID        uuid.UUID    `json:"id"`
	Color     domain.Color `json:"color,omitempty"`
	IsFaceUp  bool         `json:"is_face_up"`
	IsMatched bool         `json:"is_matched"`
}

// GameResponse is the state of a game session.
type GameResponse struct {
	ID                uuid.UUID      `json:"id"`
	Generation        uuid.UUID      `json:"generation"`
	Cards             []CardResponse `json:"cards"`
	PendingFirstIndex *int           `json:"pending_first_index,omitempty"`
	Score             int            `json:"score"`
	Moves             int            `json:"moves"`
	MatchedPairs      int            `json:"matched_pairs"`
	PairCount         int            `json:"pair_count"`
	Status            game.Status    `json:"status"`
	GameOver          bool           `json:"game_over"`
	ScoreSaved        bool           `json:"score_saved"`
	Qualifies         bool           `json:"qualifies"`
}

// SelectCardResponse is the result of a selection.
type SelectCardResponse struct {
	GameResponse
	Changed bool `json:"changed"`
}

// ScoreEntryResponse is one leaderboard row.
type ScoreEntryResponse struct {
	Rank  int       `json:"rank,omitempty"`
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Score int       `json:"score"`
	Date  time.Time `json:"date"`
}

// LeaderboardResponse is the body of GET /api/scores.
type LeaderboardResponse struct {
	Entries []ScoreEntryResponse `json:"entries"`
}

// ScoreResultResponse is the body returned after saving a score.
type ScoreResultResponse struct {
	Entry     ScoreEntryResponse `json:"entry"`
	Persisted bool               `json:"persisted"`
	Game      *GameResponse      `json:"game,omitempty"`
}

func gameToResponse(st service.SessionState) GameResponse {
	cards := make([]CardResponse, len(st.Cards))
	for i, c := range st.Cards {
		cards[i] = CardResponse{
			ID:        c.ID,
			IsFaceUp:  c.IsFaceUp,
			IsMatched: c.IsMatched,
		}
		if c.IsFaceUp || c.IsMatched {
			cards[i].Color = c.Symbol
		}
	}

	return GameResponse{
		ID:                st.ID,
		Generation:        st.Generation,
		Cards:             cards,
		PendingFirstIndex: st.PendingFirstIndex,
		Score:             st.Score,
		Moves:             st.Moves,
		MatchedPairs:      st.MatchedPairs,
		PairCount:         st.PairCount,
		Status:            st.Status,
		GameOver:          st.GameOver,
		ScoreSaved:        st.ScoreSaved,
		Qualifies:         st.Qualifies,
	}
}

func entryToResponse(e domain.ScoreEntry, rank int) ScoreEntryResponse {
	return ScoreEntryResponse{
		Rank:  rank,
		ID:    e.ID,
		Name:  e.Name,
		Score: e.Score,
		Date:  e.Date,
	}
}

func scoreResultToResponse(res service.ScoreResult) ScoreResultResponse {
	out := ScoreResultResponse{
		Entry:     entryToResponse(res.Entry, res.Rank),
		Persisted: res.Persisted,
	}
	if res.Game != nil {
		g := gameToResponse(*res.Game)
		out.Game = &g
	}
	return out
}
