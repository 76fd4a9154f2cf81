package shutdown

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Hook is one teardown step. It receives a context bounded by the
// handler's timeout and returns once its component has stopped.
type Hook func(context.Context) error

type namedHook struct {
	name string
	fn   Hook
}

// Handler runs registered hooks when the process receives SIGINT or
// SIGTERM, or when Trigger is called. Hooks run in reverse order of
// registration, so components registered in boot order are torn down
// dependents-first.
type Handler struct {
	timeout time.Duration
	logger  *slog.Logger

	mu    sync.Mutex
	hooks []namedHook

	triggerCh   chan struct{}
	triggerOnce sync.Once
	done        chan struct{}
}

// NewHandler creates a shutdown handler. The timeout bounds the whole
// hook sequence, not each individual hook.
func NewHandler(timeout time.Duration, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		timeout:   timeout,
		logger:    logger,
		hooks:     make([]namedHook, 0),
		triggerCh: make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// OnShutdown registers a named teardown hook.
// Hooks are called in reverse order of registration.
func (h *Handler) OnShutdown(name string, hook Hook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, namedHook{name: name, fn: hook})
}

// Trigger starts the shutdown sequence without an OS signal, for
// fatal errors inside the process. Calling it more than once is safe.
func (h *Handler) Trigger() {
	h.triggerOnce.Do(func() { close(h.triggerCh) })
}

// Wait blocks until a signal arrives or Trigger is called, then runs
// the hooks. A failing hook is logged and does not stop the sequence;
// all hook errors are joined into the return value.
func (h *Handler) Wait() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		h.logger.Info("shutdown signal received", "signal", sig.String())
	case <-h.triggerCh:
		h.logger.Info("shutdown triggered")
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	h.mu.Lock()
	hooks := make([]namedHook, len(h.hooks))
	copy(hooks, h.hooks)
	h.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		start := time.Now()
		if err := hooks[i].fn(ctx); err != nil {
			h.logger.Error("shutdown hook failed",
				"hook", hooks[i].name, "error", err)
			errs = append(errs, err)
			continue
		}
		h.logger.Debug("shutdown hook done",
			"hook", hooks[i].name, "elapsed", time.Since(start))
	}

	close(h.done)
	return errors.Join(errs...)
}

// Done returns a channel that closes when the hook sequence finished.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
