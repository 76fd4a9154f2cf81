package storage

import (
	"context"

	"github.com/keydenlabs/keyden/internal/core/domain"
)

// Backend names selectable via storage.backend.
const (
	BackendNone     = "none"
	BackendSnapshot = "snapshot"
	BackendBadger   = "badger"
)

// Backend is the durability surface behind the registry. The registry
// forwards every structural and key mutation; the engine drives open,
// restore, periodic checkpoints and close. Implementations must tolerate
// mirror calls for databases they have never seen (restore and drop can
// race client traffic).
type Backend interface {
	// Name identifies the backend ("none", "snapshot", "badger").
	Name() string

	// Open prepares the backend for use.
	Open(ctx context.Context) error

	// Restore rebuilds the registry from persisted state. Returns the
	// number of databases loaded.
	Restore(reg *Registry) (int, error)

	// DatabaseCreated records a new database's metadata.
	DatabaseCreated(meta domain.Database) error

	// DatabaseDropped removes a database and its entries.
	DatabaseDropped(name string) error

	// MirrorSet records a key write.
	MirrorSet(db, key string, entry domain.Entry) error

	// MirrorDelete records a key removal.
	MirrorDelete(db, key string) error

	// Checkpoint captures a full snapshot of the registry, for backends
	// that persist by checkpoint rather than write-through.
	Checkpoint(ctx context.Context, reg *Registry) error

	// Close flushes and releases the backend.
	Close(ctx context.Context) error
}

// NopBackend is the ephemeral backend: nothing is persisted and restore
// loads nothing.
type NopBackend struct{}

// NewNopBackend creates the ephemeral backend.
func NewNopBackend() *NopBackend {
	return &NopBackend{}
}

// Name implements Backend.
func (*NopBackend) Name() string { return BackendNone }

// Open implements Backend.
func (*NopBackend) Open(context.Context) error { return nil }

// Restore implements Backend.
func (*NopBackend) Restore(*Registry) (int, error) { return 0, nil }

// DatabaseCreated implements Backend.
func (*NopBackend) DatabaseCreated(domain.Database) error { return nil }

// DatabaseDropped implements Backend.
func (*NopBackend) DatabaseDropped(string) error { return nil }

// MirrorSet implements Backend.
func (*NopBackend) MirrorSet(string, string, domain.Entry) error { return nil }

// MirrorDelete implements Backend.
func (*NopBackend) MirrorDelete(string, string) error { return nil }

// Checkpoint implements Backend.
func (*NopBackend) Checkpoint(context.Context, *Registry) error { return nil }

// Close implements Backend.
func (*NopBackend) Close(context.Context) error { return nil }
