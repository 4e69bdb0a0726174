package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// NewRouter mounts the websocket endpoint and the read-only session API.
func NewRouter(ws *WSHandler, registry app.SessionRegistry, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/difficulties", handleDifficulties)
		r.Get("/sessions", handleActiveSessions(registry))
		r.Get("/sessions/{id}", handleSnapshot(registry))
	})
	return r
}

type difficultiesResponse struct {
	Difficulties []domain.Difficulty `json:"difficulties"`
	Default      domain.Difficulty   `json:"default"`
}

type activeSessionsResponse struct {
	Active int `json:"active"`
}

func handleDifficulties(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, difficultiesResponse{
		Difficulties: domain.Difficulties(),
		Default:      domain.DefaultDifficulty,
	})
}

func handleActiveSessions(registry app.SessionRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := registry.Active(r.Context())
		if err != nil {
			slog.Error("count sessions failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorPayload{Message: "session registry unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, activeSessionsResponse{Active: n})
	}
}

func handleSnapshot(registry app.SessionRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := registry.Get(chi.URLParam(r, "id"))
		if !ok {
			writeJSON(w, http.StatusNotFound, errorPayload{Message: domain.ErrSessionNotFound.Error()})
			return
		}
		snap := c.Snapshot()
		snap.Question = displayView(snap.Question)
		writeJSON(w, http.StatusOK, snap)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response failed", "error", err)
	}
}
