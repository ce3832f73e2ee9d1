// Package api wires the HTTP routes of the search UI.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okian/neighborhoods/internal/adapters/http/site"
	service "github.com/okian/neighborhoods/internal/app"
	"github.com/okian/neighborhoods/pkg/logger"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	// Session returns the session for id, creating one when id is unknown.
	Session(ctx context.Context, id string) (*service.Session, bool)
}

// Server wires HTTP routes for the UI.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	pageHandler   *PageHandler

	logger       logger.Logger
	secureCookie bool
}

// NewServer creates a new UI server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) (*Server, error) {
	s := &Server{logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}

	page, err := site.Page()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.pageHandler = NewPageHandler(deps, page, s.logger.Named("page"), s.secureCookie)
	return s, nil
}

// Register attaches all UI routes to r.
func (s *Server) Register(_ context.Context, r *mux.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	r.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)
	r.HandleFunc("/search", MetricsMiddleware(s.pageHandler.HandleSearch, "search")).Methods(http.MethodPost)
	r.HandleFunc("/profile/{key}", MetricsMiddleware(s.pageHandler.HandleProfile, "profile")).Methods(http.MethodPost)
	r.HandleFunc("/", MetricsMiddleware(s.pageHandler.HandleIndex, "index")).Methods(http.MethodGet)
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
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
