// Package service provides domain services for keyden.
//
// Domain services contain pure business logic and orchestrate operations
// on domain models. They define interfaces for storage dependencies,
// allowing for dependency injection and testability.
//
// This package contains:
//
//   - DatabaseService: Registry operations guarded by the credential policy
//   - Dispatcher: Per-session command state machine over parsed commands
//
// Services are stateless and thread-safe; all per-connection state lives
// in the Session passed to each dispatch.
//
// @req RQ-0103
// @design DS-0103
package service
