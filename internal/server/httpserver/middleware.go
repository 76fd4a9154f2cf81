package httpserver

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/keydenlabs/keyden/internal/telemetry/logger"
	"github.com/keydenlabs/keyden/pkg/ident"
)

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so the first argument runs outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// NewRouter wraps the admin handler with the standard middleware
// chain. Request IDs are assigned first so the logging and recovery
// layers carry them.
func NewRouter(h http.Handler, log *slog.Logger) http.Handler {
	return Chain(h, RequestID(log), Logging(), Recover())
}

// RequestID tags each request with a ULID, carried in the response
// header and the request context together with the request-scoped
// logger. A caller-supplied X-Request-ID is kept.
func RequestID(log *slog.Logger) Middleware {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = ident.New(ident.Request)
			}

			w.Header().Set("X-Request-ID", requestID)

			ctx := logger.WithLogger(r.Context(), log)
			ctx = logger.WithRequestID(ctx, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Logging emits one line per completed request. Probe and scrape
// traffic logs at debug to keep operational logs readable.
func Logging() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			log := logger.L(r.Context())
			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote", getClientIP(r),
			}

			switch {
			case wrapped.statusCode >= 500:
				log.Error("request failed", attrs...)
			case wrapped.statusCode >= 400:
				log.Warn("request rejected", attrs...)
			case isProbePath(r.URL.Path):
				log.Debug("request completed", attrs...)
			default:
				log.Info("request completed", attrs...)
			}
		})
	}
}

func isProbePath(path string) bool {
	return path == "/metrics" || strings.HasPrefix(path, "/health/")
}

// Recover turns handler panics into 500 responses instead of dropped
// connections.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.L(r.Context()).Error("panic recovered",
						"path", r.URL.Path,
						"panic", rec,
					)

					w.Header().Set("Content-Type", "application/json")
					w.Header().Set("X-Error-Code", "KD-ADM-5000")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"code":    "KD-ADM-5000",
						"message": "internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter captures the status code for the logging middleware.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// getClientIP resolves the originating client address, honoring proxy
// headers before falling back to the socket peer.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
