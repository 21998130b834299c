package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/colormatch/internal/api/shared"
	"github.com/phrazzld/colormatch/internal/platform/logger"
	"github.com/phrazzld/colormatch/internal/service"
)

// GameHandler handles game session HTTP requests.
type GameHandler struct {
	games  service.GameService
	logger *slog.Logger
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(games service.GameService, logger *slog.Logger) *GameHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GameHandler{
		games:  games,
		logger: logger.With("component", "game_handler"),
	}
}

// StartGame handles POST /api/games requests.
func (h *GameHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	st, err := h.games.Start(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start game")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("game started", "session_id", st.ID)
	shared.RespondWithJSON(w, r, http.StatusCreated, gameToResponse(st))
}

// GetGame handles GET /api/games/{id} requests.
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathUUID(w, r, "id")
	if !ok {
		return
	}

	st, err := h.games.State(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, gameToResponse(st))
}

// SelectCard handles POST /api/games/{id}/select requests.
// Invalid selections are not errors; they report changed=false.
func (h *GameHandler) SelectCard(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathUUID(w, r, "id")
	if !ok {
		return
	}

	var req SelectCardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	st, changed, err := h.games.Select(r.Context(), id, *req.Index)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SelectCardResponse{
		GameResponse: gameToResponse(st),
		Changed:      changed,
	})
}

// RestartGame handles POST /api/games/{id}/restart requests.
func (h *GameHandler) RestartGame(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathUUID(w, r, "id")
	if !ok {
		return
	}

	st, err := h.games.Restart(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, gameToResponse(st))
}

// EndGame handles DELETE /api/games/{id} requests.
func (h *GameHandler) EndGame(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.games.End(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithNoContent(w)
}

// SaveGameScore handles POST /api/games/{id}/score requests.
// A leaderboard write failure still returns 201 with persisted=false.
func (h *GameHandler) SaveGameScore(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathUUID(w, r, "id")
	if !ok {
		return
	}

	var req SaveGameScoreRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.games.SaveScore(r.Context(), id, req.Name, req.Restart)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, scoreResultToResponse(res))
}
