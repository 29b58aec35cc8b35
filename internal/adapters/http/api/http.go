// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/okian/riskview/internal/domain/model"
)

// Session headers read from every request.
const (
	headerAuthorization = "Authorization"
	headerRole          = "X-Role"
	headerAcademicYear  = "X-Academic-Year"
	bearerPrefix        = "Bearer "
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Subjects filters the latest snapshot.
	Subjects(ctx context.Context, s model.Session, search, category string) (model.Listing, error)
	// Subject looks a single subject up by id.
	Subject(ctx context.Context, s model.Session, id int) (model.SubjectRecord, error)

	// Refresh runs a cycle synchronously and publishes it.
	Refresh(ctx context.Context, s model.Session) model.AggregateResult
	// RequestRefresh queues a cycle. Returns false on backpressure.
	RequestRefresh(ctx context.Context, s model.Session, reason string) (string, bool)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	subjectsHandler *SubjectsHandler
	refreshHandler  *RefreshHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		subjectsHandler: NewSubjectsHandler(deps),
		refreshHandler:  NewRefreshHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /subjects", MetricsMiddleware(s.subjectsHandler.HandleList, "subjects"))
	mux.HandleFunc("GET /subjects/{id}", MetricsMiddleware(s.subjectsHandler.HandleGet, "subject"))
	mux.HandleFunc("POST /refresh", MetricsMiddleware(s.refreshHandler.HandleRefresh, "refresh"))
}

// sessionFromRequest lifts the caller's session out of the request headers.
func sessionFromRequest(r *http.Request) model.Session {
	token := strings.TrimSpace(r.Header.Get(headerAuthorization))
	if len(token) >= len(bearerPrefix) && strings.EqualFold(token[:len(bearerPrefix)], bearerPrefix) {
		token = strings.TrimSpace(token[len(bearerPrefix):])
	}
	return model.Session{
		Token:        token,
		Role:         strings.TrimSpace(r.Header.Get(headerRole)),
		AcademicYear: strings.TrimSpace(r.Header.Get(headerAcademicYear)),
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	if rec, ok := w.(*recorder); ok {
		rec.code = code
	}
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
