// internal/handlers/router.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	engine "github.com/jason-s-yu/blackjack/engine"
	"github.com/jason-s-yu/blackjack/service/internal/auth"
	"github.com/jason-s-yu/blackjack/service/internal/broadcast"
	"github.com/jason-s-yu/blackjack/service/internal/cache"
	"github.com/jason-s-yu/blackjack/service/internal/game"
	"github.com/jason-s-yu/blackjack/service/internal/models"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators of the HTTP surface.
type Deps struct {
	Coordinator    *game.Coordinator
	Hub            *broadcast.Hub
	Verifier       *auth.Verifier
	Logger         logrus.FieldLogger
	OriginPatterns []string                        // Extra origins allowed to open table sockets.
	Health         func(ctx context.Context) error // Optional dependency check behind /healthz.
}

type server struct {
	Deps
}

// NewRouter returns the service's HTTP handler.
func NewRouter(d Deps) http.Handler {
	s := &server{Deps: d}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.healthz)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/tables", s.listTables)
		r.Route("/rooms/{roomID}", func(r chi.Router) {
			r.Post("/table", s.createTable)
			r.Delete("/table", s.closeTable)
			r.Get("/state", s.roomState)
			r.Get("/actions", s.recentActions)
			r.Get("/ws", s.tableSocket)
		})
	})
	return r
}

func (s *server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.Health != nil {
		if err := s.Health(r.Context()); err != nil {
			s.Logger.WithError(err).Warn("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) listTables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Coordinator.Tables())
}

type createTableRequest struct {
	Table string `json:"table"`
}

func (s *server) createTable(w http.ResponseWriter, r *http.Request) {
	roomID, ok := roomParam(w, r)
	if !ok {
		return
	}
	var req createTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &models.ValidationError{Field: "body", Reason: err.Error()})
		return
	}
	g, err := s.Coordinator.CreateTable(r.Context(), userFrom(r.Context()), roomID, req.Table)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, engine.Redact(g))
}

func (s *server) closeTable(w http.ResponseWriter, r *http.Request) {
	roomID, ok := roomParam(w, r)
	if !ok {
		return
	}
	if err := s.Coordinator.CloseTable(r.Context(), userFrom(r.Context()), roomID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) roomState(w http.ResponseWriter, r *http.Request) {
	roomID, ok := roomParam(w, r)
	if !ok {
		return
	}
	g, err := s.Coordinator.Snapshot(r.Context(), userFrom(r.Context()), roomID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *server) recentActions(w http.ResponseWriter, r *http.Request) {
	roomID, ok := roomParam(w, r)
	if !ok {
		return
	}
	limit := int64(50)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			writeError(w, &models.ValidationError{Field: "limit", Reason: "must be a positive integer"})
			return
		}
		limit = n
	}
	recs, err := s.Coordinator.RecentActions(r.Context(), userFrom(r.Context()), roomID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if recs == nil {
		recs = []cache.ActionRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func roomParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "roomID"))
	if err != nil {
		writeError(w, &models.ValidationError{Field: "roomId", Reason: "not a uuid"})
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps coordinator errors onto HTTP statuses.
func statusFor(err error) int {
	var (
		verr *models.ValidationError
		aerr *game.AuthorizationError
		rerr *game.ResourceError
	)
	switch {
	case errors.As(err, &verr), errors.Is(err, game.ErrUnknownTable):
		return http.StatusBadRequest
	case errors.As(err, &aerr):
		return http.StatusForbidden
	case errors.Is(err, game.ErrNoTable):
		return http.StatusNotFound
	case errors.Is(err, game.ErrTableExists), engine.IsIllegal(err):
		return http.StatusConflict
	case errors.As(err, &rerr):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": game.ErrorReason(err)})
}
