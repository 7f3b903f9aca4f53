// Package http exposes the session manager to the UI layer as a JSON API.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/callguide/roteiro/pkg/domain"
	"github.com/callguide/roteiro/pkg/session"
)

// Server wires the session manager into HTTP handlers.
type Server struct {
	manager *session.Manager
	logger  *slog.Logger
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(manager *session.Manager, logger *slog.Logger) http.Handler {
	s := &Server{manager: manager, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.startSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.currentStep)
			r.Post("/advance", s.advance)
			r.Post("/back", s.goBack)
			r.Post("/search", s.search)
			r.Delete("/", s.reset)
		})
	})

	return r
}

// startRequest is the attendance configuration the operator completed.
type startRequest struct {
	AttendanceType string `json:"attendance_type"`
	PersonType     string `json:"person_type"`
	ProductID      string `json:"product_id"`
}

type advanceRequest struct {
	// NextStepID empty or absent means the terminal transition.
	NextStepID string `json:"next_step_id"`
}

type searchRequest struct {
	Query string `json:"query"`
}

// sessionResponse is the session view consumed by the UI after every operation.
type sessionResponse struct {
	SessionID   string                  `json:"session_id"`
	Active      bool                    `json:"active"`
	CurrentStep *domain.Step            `json:"current_step,omitempty"`
	History     []string                `json:"history"`
	CanGoBack   bool                    `json:"can_go_back"`
	SearchQuery string                  `json:"search_query,omitempty"`
	Found       *bool                   `json:"found,omitempty"`
	Config      domain.AttendanceConfig `json:"config"`
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var body startRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cfg := domain.AttendanceConfig{
		AttendanceType: domain.AttendanceType(body.AttendanceType),
		PersonType:     domain.PersonType(body.PersonType),
		ProductID:      body.ProductID,
	}

	sessionID, snap, err := s.manager.StartSession(r.Context(), cfg)
	if err != nil {
		var cfgErr *domain.ConfigurationError
		if errors.As(err, &cfgErr) {
			http.Error(w, cfgErr.Error(), http.StatusUnprocessableEntity)
			return
		}
		s.internalError(w, r, "failed to start session", err)
		return
	}

	s.writeSession(w, r, http.StatusCreated, sessionID, snap, nil)
}

func (s *Server) currentStep(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	snap, step, err := s.manager.Current(r.Context(), sessionID)
	if err != nil {
		s.sessionError(w, r, sessionID, err)
		return
	}

	resp := s.toResponse(sessionID, snap, nil)
	resp.CurrentStep = step
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) advance(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var body advanceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	snap, err := s.manager.Advance(r.Context(), sessionID, body.NextStepID)
	if err != nil {
		s.sessionError(w, r, sessionID, err)
		return
	}
	s.writeSession(w, r, http.StatusOK, sessionID, snap, nil)
}

func (s *Server) goBack(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	snap, err := s.manager.GoBack(r.Context(), sessionID)
	if err != nil {
		s.sessionError(w, r, sessionID, err)
		return
	}
	s.writeSession(w, r, http.StatusOK, sessionID, snap, nil)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var body searchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	snap, found, err := s.manager.Search(r.Context(), sessionID, body.Query)
	if err != nil {
		s.sessionError(w, r, sessionID, err)
		return
	}
	s.writeSession(w, r, http.StatusOK, sessionID, snap, &found)
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := s.manager.Reset(r.Context(), sessionID); err != nil {
		s.sessionError(w, r, sessionID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) toResponse(sessionID string, snap *domain.SessionSnapshot, found *bool) sessionResponse {
	return sessionResponse{
		SessionID:   sessionID,
		Active:      snap.Active,
		History:     snap.History,
		CanGoBack:   len(snap.History) > 1,
		SearchQuery: snap.SearchQuery,
		Found:       found,
		Config:      snap.Config,
	}
}

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, status int, sessionID string, snap *domain.SessionSnapshot, found *bool) {
	s.writeJSON(w, r, status, s.toResponse(sessionID, snap, found))
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to encode response", "err", err)
	}
}

func (s *Server) sessionError(w http.ResponseWriter, r *http.Request, sessionID string, err error) {
	if errors.Is(err, domain.ErrSessionNotFound) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	s.logger.ErrorContext(r.Context(), "session operation failed", "session_id", sessionID, "err", err)
	http.Error(w, "session operation failed", http.StatusInternalServerError)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.ErrorContext(r.Context(), msg, "err", err)
	http.Error(w, msg, http.StatusInternalServerError)
}
