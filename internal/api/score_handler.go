package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/colormatch/internal/api/shared"
	"github.com/phrazzld/colormatch/internal/service"
)

// ScoreHandler handles leaderboard HTTP requests.
type ScoreHandler struct {
	games  service.GameService
	logger *slog.Logger
}

// NewScoreHandler creates a new ScoreHandler.
func NewScoreHandler(games service.GameService, logger *slog.Logger) *ScoreHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoreHandler{
		games:  games,
		logger: logger.With("component", "score_handler"),
	}
}

// ListScores handles GET /api/scores requests.
func (h *ScoreHandler) ListScores(w http.ResponseWriter, r *http.Request) {
	entries := h.games.Leaderboard(r.Context())

	resp := LeaderboardResponse{Entries: make([]ScoreEntryResponse, len(entries))}
	for i, e := range entries {
		resp.Entries[i] = entryToResponse(e, i+1)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// ResetScores handles DELETE /api/scores requests.
func (h *ScoreHandler) ResetScores(w http.ResponseWriter, r *http.Request) {
	if err := h.games.ResetLeaderboard(r.Context()); err != nil {
		HandleAPIError(w, r, err, "Failed to reset leaderboard")
		return
	}
	shared.RespondWithNoContent(w)
}

// SubmitScore handles POST /api/scores requests.
func (h *ScoreHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	var req SubmitScoreRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.games.SubmitScore(r.Context(), req.Name, *req.Score)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, scoreResultToResponse(res))
}
