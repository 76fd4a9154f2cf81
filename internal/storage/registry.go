package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/keydenlabs/keyden/internal/core/domain"
	"github.com/keydenlabs/keyden/internal/storage/memory"
	"github.com/keydenlabs/keyden/internal/storage/snapshot"
)

// Instance couples a database record with its keyspace and forwards
// mutations to the durability backend. Handles stay valid after the
// database is removed from the registry; a detached keyspace simply stops
// being swept.
type Instance struct {
	meta    domain.Database
	keys    *memory.Store
	backend Backend
}

// Name returns the database name.
func (i *Instance) Name() string {
	return i.meta.Name
}

// Meta returns a copy of the database record.
func (i *Instance) Meta() domain.Database {
	return i.meta
}

// RequireAuth reports whether the database demands credentials.
func (i *Instance) RequireAuth() bool {
	return i.meta.RequireAuth
}

// VerifyCredentials reports whether the supplied pair grants access.
func (i *Instance) VerifyCredentials(username, password string) bool {
	return i.meta.VerifyCredentials(username, password)
}

// Set stores a value without expiry. The in-memory write always applies;
// a backend mirror failure is returned for the caller to report.
func (i *Instance) Set(key, value string) error {
	i.keys.Set(key, value)
	if err := i.backend.MirrorSet(i.meta.Name, key, domain.NewEntry(value)); err != nil {
		return domain.ErrStorage.WithCause(err)
	}
	return nil
}

// SetWithTTL stores a value that expires ttl from now.
func (i *Instance) SetWithTTL(key, value string, ttl time.Duration) error {
	i.keys.SetWithTTL(key, value, ttl)
	if err := i.backend.MirrorSet(i.meta.Name, key, domain.NewEntryWithTTL(value, ttl, time.Now())); err != nil {
		return domain.ErrStorage.WithCause(err)
	}
	return nil
}

// Get returns the live value under key.
func (i *Instance) Get(key string) (string, bool) {
	return i.keys.Get(key)
}

// Delete removes the entry under key and reports whether one was present.
func (i *Instance) Delete(key string) (bool, error) {
	existed := i.keys.Delete(key)
	if err := i.backend.MirrorDelete(i.meta.Name, key); err != nil {
		return existed, domain.ErrStorage.WithCause(err)
	}
	return existed, nil
}

// Sweep removes expired entries from the keyspace.
func (i *Instance) Sweep() int {
	return i.keys.Sweep()
}

// Len returns the number of physical entries.
func (i *Instance) Len() int {
	return i.keys.Len()
}

// Export copies the live entries for snapshot capture.
func (i *Instance) Export() map[string]domain.Entry {
	return i.keys.Export()
}

// RegistryStats summarizes the registry for metrics and the admin surface.
type RegistryStats struct {
	Databases int `json:"databases"`
	Protected int `json:"protected"`
	Keys      int `json:"keys"`
}

// Registry is the authoritative set of databases. The registry lock guards
// only the name table; key traffic inside a keyspace never takes it.
type Registry struct {
	mu        sync.RWMutex
	databases map[string]*Instance
	backend   Backend
}

// NewRegistry creates an empty registry whose mutations are mirrored to
// the given backend. A nil backend means ephemeral storage.
func NewRegistry(backend Backend) *Registry {
	if backend == nil {
		backend = NewNopBackend()
	}
	return &Registry{
		databases: make(map[string]*Instance),
		backend:   backend,
	}
}

// Create registers a new database and returns its handle.
// The name must be free; the record must already carry its credential
// material. A backend mirror failure is returned alongside the applied
// handle so the caller can report it without losing the database.
func (r *Registry) Create(meta domain.Database) (*Instance, error) {
	inst := &Instance{
		meta:    meta,
		keys:    memory.New(),
		backend: r.backend,
	}

	r.mu.Lock()
	if _, exists := r.databases[meta.Name]; exists {
		r.mu.Unlock()
		return nil, domain.ErrDatabaseExists.WithDetails("database: " + meta.Name)
	}
	r.databases[meta.Name] = inst
	r.mu.Unlock()

	if err := r.backend.DatabaseCreated(meta); err != nil {
		return inst, domain.ErrStorage.WithCause(err)
	}
	return inst, nil
}

// Get returns the handle for name.
func (r *Registry) Get(name string) (*Instance, bool) {
	r.mu.RLock()
	inst, ok := r.databases[name]
	r.mu.RUnlock()
	return inst, ok
}

// Remove unregisters a database and returns its detached handle. Sessions
// still holding the handle keep reading it; it simply leaves the sweep
// set. A backend mirror failure is returned alongside the handle.
func (r *Registry) Remove(name string) (*Instance, error) {
	r.mu.Lock()
	inst, ok := r.databases[name]
	if !ok {
		r.mu.Unlock()
		return nil, domain.ErrDatabaseNotFound.WithDetails("database: " + name)
	}
	delete(r.databases, name)
	r.mu.Unlock()

	if err := r.backend.DatabaseDropped(name); err != nil {
		return inst, domain.ErrStorage.WithCause(err)
	}
	return inst, nil
}

// Handles returns a point-in-time copy of every registered handle. The
// registry lock is released before the caller touches any keyspace, so a
// sweep of one database never stalls traffic on another.
func (r *Registry) Handles() []*Instance {
	r.mu.RLock()
	handles := make([]*Instance, 0, len(r.databases))
	for _, inst := range r.databases {
		handles = append(handles, inst)
	}
	r.mu.RUnlock()
	return handles
}

// Count returns the number of registered databases.
func (r *Registry) Count() int {
	r.mu.RLock()
	n := len(r.databases)
	r.mu.RUnlock()
	return n
}

// Stats gathers registry-wide counters. Key counts are read without the
// registry lock and may lag concurrent writers.
func (r *Registry) Stats() RegistryStats {
	handles := r.Handles()

	stats := RegistryStats{Databases: len(handles)}
	for _, inst := range handles {
		if inst.RequireAuth() {
			stats.Protected++
		}
		stats.Keys += inst.Len()
	}
	return stats
}

// Export captures every database with its live entries, ordered by name
// so snapshot output is deterministic.
func (r *Registry) Export() []snapshot.Database {
	handles := r.Handles()
	sort.Slice(handles, func(a, b int) bool {
		return handles[a].Name() < handles[b].Name()
	})

	exports := make([]snapshot.Database, 0, len(handles))
	for _, inst := range handles {
		exports = append(exports, snapshot.Database{
			Meta:    inst.Meta(),
			Entries: inst.Export(),
		})
	}
	return exports
}

// RestoreFrom replaces the registry contents wholesale with the exported
// databases, dropping entries already past their deadline. Returns the
// number of databases loaded. Restore does not mirror back to the
// backend; the backend is the source.
func (r *Registry) RestoreFrom(exports []snapshot.Database) int {
	fresh := make(map[string]*Instance, len(exports))
	for _, exp := range exports {
		inst := &Instance{
			meta:    exp.Meta,
			keys:    memory.New(),
			backend: r.backend,
		}
		inst.keys.Import(exp.Entries)
		fresh[exp.Meta.Name] = inst
	}

	r.mu.Lock()
	r.databases = fresh
	r.mu.Unlock()
	return len(fresh)
}
