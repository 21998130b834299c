package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/colormatch/internal/api"
	apiMiddleware "github.com/phrazzld/colormatch/internal/api/middleware"
	"github.com/phrazzld/colormatch/internal/api/shared"
)

// setupRouter creates the router with middleware and all API routes.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	gameHandler := api.NewGameHandler(app.gameService, app.logger)
	scoreHandler := api.NewScoreHandler(app.gameService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/games", func(r chi.Router) {
			r.Post("/", gameHandler.StartGame)
			r.Get("/{id}", gameHandler.GetGame)
			r.Delete("/{id}", gameHandler.EndGame)
			r.Post("/{id}/select", gameHandler.SelectCard)
			r.Post("/{id}/restart", gameHandler.RestartGame)
			r.Post("/{id}/score", gameHandler.SaveGameScore)
		})

		r.Get("/scores", scoreHandler.ListScores)
		r.Post("/scores", scoreHandler.SubmitScore)
		r.Delete("/scores", scoreHandler.ResetScores)

		r.Get("/health", app.handleHealth)
	})

	return r
}

func (app *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		app.logger.Error("failed to write health check response", "error", err)
	}
}
