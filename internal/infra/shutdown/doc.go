// Package shutdown provides graceful shutdown for Keyden.
//
// This package handles process termination:
//
//   - Signal handling (SIGINT, SIGTERM)
//   - Programmatic teardown via Trigger for in-process fatal errors
//   - Named cleanup hooks, run in reverse registration order
//   - A sequence-wide timeout
//
// Usage:
//
//	h := shutdown.NewHandler(10*time.Second, logger)
//	h.OnShutdown("engine", func(ctx context.Context) error { return eng.Close() })
//	h.OnShutdown("server", srv.Shutdown)
//	err := h.Wait() // blocks until signal or Trigger, then runs hooks
//
// @design DS-0501
package shutdown
