package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Config configures the admin HTTP server.
type Config struct {
	// Listen is the bind address. Empty keeps the server disabled.
	Listen string

	// ReadTimeout bounds reading a full request.
	ReadTimeout time.Duration

	// WriteTimeout bounds writing a full response.
	WriteTimeout time.Duration
}

// DefaultConfig returns the default admin server configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:       "",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Server is the admin HTTP server.
//
// @design DS-0301
type Server struct {
	cfg        *Config
	httpServer *http.Server
	ln         net.Listener
	logger     *slog.Logger
	errCh      chan error
}

// New creates an admin server serving handler on cfg.Listen.
func New(cfg *Config, handler http.Handler, log *slog.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = slog.Default()
	}

	return &Server{
		cfg: cfg,
		httpServer: &http.Server{
			Addr:         cfg.Listen,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: log,
		errCh:  make(chan error, 1),
	}
}

// Start binds the listen address and begins serving in the background.
// The bind itself is synchronous so a bad address fails at boot.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return err
	}
	s.ln = ln

	s.logger.Info("admin server listening", "address", ln.Addr().String())

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("admin server failed", "error", err)
			s.errCh <- err
		}
	}()

	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Err delivers a serve failure after a successful Start. It fires at
// most once and never on graceful shutdown.
func (s *Server) Err() <-chan error {
	return s.errCh
}

// Shutdown gracefully shuts down the server, waiting for in-flight
// requests up to the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.ln == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
