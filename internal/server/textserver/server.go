package textserver

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/libp2p/go-reuseport"

	"github.com/keydenlabs/keyden/internal/core/domain"
	"github.com/keydenlabs/keyden/internal/core/service"
	"github.com/keydenlabs/keyden/internal/protocol"
	"github.com/keydenlabs/keyden/internal/telemetry/logger"
	"github.com/keydenlabs/keyden/internal/telemetry/metric"
	"github.com/keydenlabs/keyden/pkg/ident"
)

// Config holds the text server configuration.
type Config struct {
	// Listen is the TCP listen address.
	Listen string
	// ReadTimeout bounds reading the rest of a line once its first byte
	// arrived (default: 30s). Helps prevent slowloris clients.
	ReadTimeout time.Duration
	// WriteTimeout bounds writing one response line (default: 30s).
	WriteTimeout time.Duration
	// IdleTimeout is how long a connection may sit between commands
	// (default: 5m).
	IdleTimeout time.Duration
	// RateLimit is the per-remote-IP command budget in commands per
	// second. 0 disables limiting.
	RateLimit int
	// RateBurst is the token bucket depth. 0 means same as RateLimit.
	RateBurst int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:       ":4000",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  5 * time.Minute,
		RateLimit:    0,
	}
}

// Server is the TCP data-plane server.
type Server struct {
	cfg        *Config
	dispatcher *service.Dispatcher
	limiter    *ipLimiter
	metrics    *metric.ServerMetrics
	logger     *slog.Logger

	ln       net.Listener
	running  atomic.Bool
	draining atomic.Bool
	wg       sync.WaitGroup

	connsMu sync.Mutex
	conns   map[*conn]struct{}
}

// conn is one client connection.
type conn struct {
	id      string
	netConn net.Conn
	br      *bufio.Reader
	bw      *bufio.Writer

	// inFlight is set while a fully received command awaits its
	// response; shutdown closes only connections with it clear.
	inFlight atomic.Bool
	closed   atomic.Bool
}

func newConn(c net.Conn) *conn {
	return &conn{
		id:      ident.New(ident.Connection),
		netConn: c,
		br:      bufio.NewReader(c),
		bw:      bufio.NewWriter(c),
	}
}

func (c *conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

// remoteIP strips the port so rate limiting keys on the host alone.
func (c *conn) remoteIP() string {
	addr := c.netConn.RemoteAddr().String()
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

// New creates a new text server.
func New(cfg *Config, dispatcher *service.Dispatcher, metrics *metric.ServerMetrics, log *slog.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if metrics == nil {
		metrics = metric.NewServerMetrics()
	}
	if log == nil {
		log = slog.Default()
	}

	return &Server{
		cfg:        cfg,
		dispatcher: dispatcher,
		limiter:    newIPLimiter(cfg.RateLimit, cfg.RateBurst),
		metrics:    metrics,
		logger:     log,
		conns:      make(map[*conn]struct{}),
	}
}

// Start opens the listener and begins accepting connections. The listen
// itself is synchronous so a bad address fails at boot; accepting runs
// in the background.
func (s *Server) Start(ctx context.Context) error {
	ln, err := reuseport.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return err
	}
	s.ln = ln
	s.running.Store(true)

	s.logger.Info("text server listening", "address", ln.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx, ln); err != nil && s.running.Load() {
			s.logger.Error("accept loop failed", "error", err)
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

// Shutdown stops accepting, closes idle connections and waits for
// in-flight commands to finish. Connections still busy when ctx
// expires are closed forcibly.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)
	s.draining.Store(true)

	var firstErr error
	if s.ln != nil {
		if err := s.ln.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	// Idle connections sit in a blocking read; closing unblocks them.
	// Busy ones finish their current command and see the draining flag.
	s.connsMu.Lock()
	for c := range s.conns {
		if !c.inFlight.Load() {
			_ = c.Close()
		}
	}
	s.connsMu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.connsMu.Lock()
		for c := range s.conns {
			_ = c.Close()
		}
		s.connsMu.Unlock()
		<-done
		if firstErr == nil {
			firstErr = ctx.Err()
		}
	}

	return firstErr
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		c, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, newConn(c))
		}()
	}
}

func (s *Server) track(c *conn) {
	s.connsMu.Lock()
	s.conns[c] = struct{}{}
	s.connsMu.Unlock()
}

func (s *Server) untrack(c *conn) {
	s.connsMu.Lock()
	delete(s.conns, c)
	s.connsMu.Unlock()
}

func (s *Server) serveConn(ctx context.Context, c *conn) {
	s.track(c)
	s.metrics.ConnectionsTotal.Inc()
	s.metrics.ConnectionsActive.Inc()

	log := s.logger.With("conn", c.id, "remote", c.netConn.RemoteAddr().String())
	defer func() {
		_ = c.Close()
		s.untrack(c)
		s.metrics.ConnectionsActive.Dec()
		log.Debug("connection closed")
	}()
	log.Debug("connection opened")

	sess := service.NewSession(c.id)

	readTimeout := s.cfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 30 * time.Second
	}
	writeTimeout := s.cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 30 * time.Second
	}
	idleTimeout := s.cfg.IdleTimeout
	if idleTimeout == 0 {
		idleTimeout = 5 * time.Minute
	}

	for {
		if s.draining.Load() {
			return
		}

		// First byte under the idle allowance; connections may sit
		// quiet between commands.
		if err := c.netConn.SetReadDeadline(time.Now().Add(idleTimeout)); err != nil {
			return
		}
		if _, err := c.br.Peek(1); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				log.Debug("connection idle timeout")
				return
			}
			log.Debug("connection read error", "error", err)
			return
		}

		// Rest of the line under the tighter per-command deadline.
		if err := c.netConn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return
		}

		raw, err := readLine(c.br, protocol.MaxLineLength+2)
		if err != nil {
			if errors.Is(err, errLineTooLong) {
				// Framing cannot be trusted past an oversized line;
				// answer and close.
				log.Warn("oversized command line")
				s.metrics.ObserveCommand(commandInvalid, "error", 0)
				_ = s.writeResponse(c, renderError(errTooLongResponse), writeTimeout)
				return
			}
			if errors.Is(err, io.EOF) {
				return
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				log.Debug("connection read timeout")
				return
			}
			log.Debug("connection read error", "error", err)
			return
		}

		// Blank lines are ignored without a response.
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		log.Debug("command received", "line", logger.RedactCommand(line))

		c.inFlight.Store(true)
		response, closeAfter := s.handleLine(ctx, sess, c, line)
		err = s.writeResponse(c, response, writeTimeout)
		c.inFlight.Store(false)

		if err != nil || closeAfter {
			return
		}
	}
}

func (s *Server) writeResponse(c *conn, line string, timeout time.Duration) error {
	if err := c.netConn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	if err := writeLine(c.bw, line); err != nil {
		return err
	}
	return c.bw.Flush()
}

// commandInvalid is the metrics label for lines that never parsed into
// a command.
const commandInvalid = "invalid"

var errTooLongResponse = domain.ErrParse.WithDetails("request line exceeds protocol limit")

// handleLine runs one command through rate limiting, parsing and the
// dispatcher, and returns the rendered response line plus whether the
// connection closes afterwards.
func (s *Server) handleLine(ctx context.Context, sess *service.Session, c *conn, line string) (string, bool) {
	start := time.Now()

	// Over-budget commands never reach the dispatcher.
	if s.limiter != nil && !s.limiter.allow(c.remoteIP()) {
		s.metrics.RateLimited.Inc()
		return renderError(domain.ErrRateLimited), false
	}

	cmd, err := protocol.Parse(line)
	if err != nil {
		s.metrics.ObserveCommand(commandInvalid, "error", time.Since(start).Seconds())
		return renderError(err), false
	}

	out := s.dispatcher.Dispatch(ctx, sess, cmd)

	status := "ok"
	if out.Err != nil {
		status = "error"
	}
	s.metrics.ObserveCommand(string(cmd.Kind), status, time.Since(start).Seconds())

	return renderOutcome(out), out.Closed
}
