package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/keydenlabs/keyden/internal/core/domain"
	"github.com/keydenlabs/keyden/internal/storage"
	"github.com/keydenlabs/keyden/internal/telemetry/logger"
	"github.com/keydenlabs/keyden/internal/telemetry/metric"
)

// Handler serves the admin endpoints over the storage engine.
//
// @design DS-0302
type Handler struct {
	engine  *storage.Engine
	metrics http.Handler
	started time.Time
	ready   atomic.Bool
	mux     *http.ServeMux
}

// New creates the admin handler. The registry backs /metrics; a nil
// registry gets a fresh one so tests need no metrics wiring.
func New(engine *storage.Engine, registry *prometheus.Registry) *Handler {
	if registry == nil {
		registry = metric.NewRegistry()
	}

	h := &Handler{
		engine:  engine,
		metrics: metric.Handler(registry),
		started: time.Now(),
		mux:     http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// MarkReady flips the readiness probe to passing. Called once the data
// plane is accepting connections.
func (h *Handler) MarkReady() {
	h.ready.Store(true)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health/live", h.handleLive)
	h.mux.HandleFunc("GET /health/ready", h.handleReady)
	h.mux.Handle("GET /metrics", h.metrics)
	h.mux.HandleFunc("GET /v1/stats", h.handleStats)
	h.mux.HandleFunc("POST /v1/snapshot", h.handleSnapshot)
	h.mux.HandleFunc("GET /version", h.handleVersion)
}

// writeJSON writes a JSON response body.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.L(r.Context()).Error("encode response failed", "error", err)
	}
}

// writeError writes a JSON error body with the code mirrored in the
// X-Error-Code header.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Code: code, Message: message})
}

// handleServiceError renders engine errors, mapping domain codes to
// HTTP statuses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var derr *domain.DomainError
	if errors.As(err, &derr) {
		message := derr.Message
		if derr.Details != "" {
			message += ": " + derr.Details
		}
		h.writeError(w, r, statusForCode(derr.Code), derr.Code, message)
		return
	}

	logger.L(r.Context()).Error("admin request failed", "error", err)
	h.writeError(w, r, http.StatusInternalServerError, "KD-ADM-5000", "internal server error")
}

// statusForCode maps domain error code suffixes to HTTP statuses.
func statusForCode(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4090"):
		return http.StatusConflict
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-4010"):
		return http.StatusUnauthorized
	case strings.HasSuffix(code, "-4000"), strings.HasSuffix(code, "-4001"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
