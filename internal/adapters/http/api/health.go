package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eastkentcx/ekcx/pkg/metrics"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	service string
	started time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(service string) *HealthHandler {
	return &HealthHandler{service: service, started: time.Now()}
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Uptime  string `json:"uptime"`
}

// HandleHealth handles GET /healthz requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Service: h.service,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	})
}

// MetricsHandler serves the process metrics registry.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
}
