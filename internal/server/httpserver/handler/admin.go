package handler

import (
	"net/http"
	"sort"
	"time"

	"github.com/keydenlabs/keyden/internal/infra/buildinfo"
	"github.com/keydenlabs/keyden/internal/storage"
	"github.com/keydenlabs/keyden/internal/telemetry/logger"
)

// handleStats handles GET /v1/stats.
//
// @design DS-0302
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	handles := h.engine.Registry().Handles()

	databases := make([]DatabaseStats, 0, len(handles))
	for _, inst := range handles {
		databases = append(databases, DatabaseStats{
			Name:      inst.Name(),
			Keys:      inst.Len(),
			Protected: inst.RequireAuth(),
		})
	}
	sort.Slice(databases, func(i, j int) bool { return databases[i].Name < databases[j].Name })

	h.writeJSON(w, r, http.StatusOK, StatsResponse{
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Backend:       h.engine.BackendName(),
		Totals:        h.engine.Stats(),
		Databases:     databases,
	})
}

// handleSnapshot handles POST /v1/snapshot.
//
// @design DS-0302
func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.engine.BackendName() != storage.BackendSnapshot {
		h.writeError(w, r, http.StatusConflict, "KD-ADM-4090",
			"snapshot trigger requires the snapshot backend, active backend is "+h.engine.BackendName())
		return
	}

	info, err := h.engine.TriggerSnapshot(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	logger.L(r.Context()).Info("snapshot triggered",
		"snapshot_id", info.ID,
		"databases", info.DatabaseCount,
		"bytes", info.Size)
	h.writeJSON(w, r, http.StatusOK, info)
}

// handleVersion handles GET /version.
func (h *Handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, buildinfo.Get())
}
