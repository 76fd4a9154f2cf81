// Package memory provides the in-memory keyspace for keyden.
//
// It implements per-database key storage using concurrent-safe
// data structures with sharded locking for high performance.
package memory

import (
	"time"

	"github.com/keydenlabs/keyden/internal/core/domain"
	"github.com/keydenlabs/keyden/pkg/cmap"
)

// timeNow is the clock source, replaceable in tests.
var timeNow = time.Now

// Store is one database's keyspace. Keys map to entries that may carry an
// expiry deadline; reads treat a past deadline as absence even before the
// sweeper has physically removed the entry.
type Store struct {
	entries *cmap.Map[domain.Entry]
}

// New creates an empty keyspace.
func New() *Store {
	return &Store{
		entries: cmap.New[domain.Entry](),
	}
}

// Set stores a value without an expiry deadline, replacing any previous
// entry under the key, including its deadline.
func (s *Store) Set(key, value string) {
	s.entries.Set(key, domain.NewEntry(value))
}

// SetWithTTL stores a value that expires ttl from now. A zero ttl produces
// an entry that is already past its deadline, so the next read misses.
func (s *Store) SetWithTTL(key, value string, ttl time.Duration) {
	s.entries.Set(key, domain.NewEntryWithTTL(value, ttl, timeNow()))
}

// Get returns the live value under key. An entry past its deadline reads
// as absent; it is left in place for the sweeper to collect.
func (s *Store) Get(key string) (string, bool) {
	entry, ok := s.entries.Get(key)
	if !ok {
		return "", false
	}
	if entry.IsExpired(timeNow()) {
		return "", false
	}
	return entry.Value, true
}

// Delete physically removes the entry under key, expired or not.
// It reports whether an entry was present.
func (s *Store) Delete(key string) bool {
	_, ok := s.entries.Pop(key)
	return ok
}

// Sweep removes every entry whose deadline has passed and returns the
// number removed. Candidates are collected from a lock-free scan, then each
// removal re-checks the deadline under the shard write lock so an entry
// overwritten after the scan is never deleted on stale evidence.
func (s *Store) Sweep() int {
	now := timeNow()

	var candidates []string
	s.entries.Range(func(key string, entry domain.Entry) bool {
		if entry.IsExpired(now) {
			candidates = append(candidates, key)
		}
		return true
	})

	removed := 0
	for _, key := range candidates {
		if s.entries.DeleteIf(key, func(entry domain.Entry) bool {
			return entry.IsExpired(now)
		}) {
			removed++
		}
	}

	return removed
}

// Len returns the number of physical entries, including expired ones the
// sweeper has not collected yet.
func (s *Store) Len() int {
	return s.entries.Count()
}

// Keys returns the live keys in no particular order.
func (s *Store) Keys() []string {
	now := timeNow()
	keys := make([]string, 0, s.entries.Count())
	s.entries.Range(func(key string, entry domain.Entry) bool {
		if !entry.IsExpired(now) {
			keys = append(keys, key)
		}
		return true
	})
	return keys
}

// Export copies every live entry. Entries past their deadline at capture
// time are excluded.
func (s *Store) Export() map[string]domain.Entry {
	now := timeNow()
	out := make(map[string]domain.Entry, s.entries.Count())
	s.entries.Range(func(key string, entry domain.Entry) bool {
		if !entry.IsExpired(now) {
			out[key] = entry
		}
		return true
	})
	return out
}

// Import loads entries into the keyspace, dropping any already past their
// deadline. Returns the number loaded.
func (s *Store) Import(entries map[string]domain.Entry) int {
	now := timeNow()
	loaded := 0
	for key, entry := range entries {
		if entry.IsExpired(now) {
			continue
		}
		s.entries.Set(key, entry)
		loaded++
	}
	return loaded
}

// Clear removes all entries.
func (s *Store) Clear() {
	s.entries.Clear()
}
