package httpapi

import "net/http"

// handlePerfLatency serves the sliding-window submit pipeline latencies
// for quick checks without a metrics scraper.
func (s *Server) handlePerfLatency(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.metrics.SnapshotSubmitStages())
}
