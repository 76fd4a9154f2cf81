// Package service provides domain services for keyden.
//
// DatabaseService handles registry operations; Dispatcher drives the
// per-session command state machine.
package service

import (
	"context"

	"github.com/keydenlabs/keyden/internal/core/domain"
	"github.com/keydenlabs/keyden/internal/storage"
)

// DatabaseService guards every registry operation with the credential
// policy: open databases admit anything, protected databases demand an
// exact match on every use and every drop.
//
// @req RQ-0103
// @design DS-0103
type DatabaseService struct {
	registry *storage.Registry
}

// NewDatabaseService creates a new DatabaseService.
func NewDatabaseService(registry *storage.Registry) *DatabaseService {
	return &DatabaseService{registry: registry}
}

// CreateDatabaseRequest contains parameters for database creation.
//
// @design DS-0103
type CreateDatabaseRequest struct {
	Name     string
	Username string
	Password string
	// WithCredentials marks the database as protected by Username/Password.
	WithCredentials bool
}

// Create registers a new database and returns its handle. The creator
// supplied the credential material, so the grant is authenticated by
// construction.
//
// @req RQ-0103
// @design DS-0103
func (s *DatabaseService) Create(_ context.Context, req *CreateDatabaseRequest) (*storage.Instance, error) {
	// 1. Build the record; the constructors validate name and credentials.
	var (
		meta domain.Database
		err  error
	)
	if req.WithCredentials {
		meta, err = domain.NewProtectedDatabase(req.Name, req.Username, req.Password)
	} else {
		meta, err = domain.NewDatabase(req.Name)
	}
	if err != nil {
		return nil, err
	}

	// 2. Register. A backend mirror failure arrives alongside the applied
	// handle; surface it and let the caller keep the handle.
	return s.registry.Create(meta)
}

// SelectDatabaseRequest contains parameters for selecting a database.
//
// @design DS-0103
type SelectDatabaseRequest struct {
	Name     string
	Username string
	Password string
}

// Select resolves a database name to a session grant after the credential
// check. The handle stays usable for the rest of the session regardless of
// later registry changes.
//
// @req RQ-0103
// @design DS-0103
func (s *DatabaseService) Select(_ context.Context, req *SelectDatabaseRequest) (*storage.Instance, error) {
	inst, ok := s.registry.Get(req.Name)
	if !ok {
		return nil, domain.ErrDatabaseNotFound.WithDetails("database: " + req.Name)
	}
	if !inst.VerifyCredentials(req.Username, req.Password) {
		return nil, domain.ErrUnauthorized.WithDetails("database: " + req.Name)
	}
	return inst, nil
}

// DropDatabaseRequest contains parameters for dropping a database.
//
// @design DS-0103
type DropDatabaseRequest struct {
	Name     string
	Username string
	Password string
}

// Drop removes a database after its own credential check. An earlier
// successful use does not exempt the drop; the check always runs against
// the record.
//
// @req RQ-0103
// @design DS-0103
func (s *DatabaseService) Drop(_ context.Context, req *DropDatabaseRequest) (*storage.Instance, error) {
	// 1. Resolve and authenticate before touching the registry.
	inst, ok := s.registry.Get(req.Name)
	if !ok {
		return nil, domain.ErrDatabaseNotFound.WithDetails("database: " + req.Name)
	}
	if !inst.VerifyCredentials(req.Username, req.Password) {
		return nil, domain.ErrUnauthorized.WithDetails("database: " + req.Name)
	}

	// 2. Remove. A concurrent drop may win the race; report what the
	// registry saw.
	return s.registry.Remove(req.Name)
}

// Stats exposes registry counters for the admin surface.
func (s *DatabaseService) Stats() storage.RegistryStats {
	return s.registry.Stats()
}
