package api

import (
	"net/http"
)

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests with the last generation summary.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	summary, ok := h.statsProvider.Summary()
	if !ok {
		writeError(w, http.StatusNotFound, "no_summary", ErrNoSummary)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
