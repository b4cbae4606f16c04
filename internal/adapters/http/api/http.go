// Package api serves the operational endpoints shared by every process:
// health, Prometheus metrics and generation statistics.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/eastkentcx/ekcx/internal/domain/model"
)

// Server wires the operational routes.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
}

// NewServer creates a new API server. stats may be nil, in which case
// /stats is not registered.
func NewServer(service string, stats StatsProvider) *Server {
	s := &Server{healthHandler: NewHealthHandler(service)}
	if stats != nil {
		s.statsHandler = NewStatsHandler(stats)
	}
	return s
}

// Register attaches all operational routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", MetricsHandler())
	if s.statsHandler != nil {
		mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	}
}

// StatsProvider reports the most recent standings generation.
type StatsProvider interface {
	Summary() (model.Summary, bool)
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
