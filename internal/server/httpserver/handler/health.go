package handler

import (
	"net/http"
	"time"
)

// handleLive handles GET /health/live. Liveness means the process is
// serving; it never fails while the server is up.
func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status: "alive",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady handles GET /health/ready. Readiness turns true once the
// data plane accepts connections, so probes hold traffic during
// recovery.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	status, body := http.StatusOK, "ready"
	if !h.ready.Load() {
		status, body = http.StatusServiceUnavailable, "starting"
	}
	h.writeJSON(w, r, status, HealthResponse{
		Status: body,
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
