// Package storage provides the storage engine for keyden.
//
// The engine layers the in-memory registry over a pluggable durability
// backend and owns all background work.
//
// Architecture:
//
//   - Registry: the authoritative name table of databases, each pairing
//     a credential record with a sharded in-memory keyspace
//   - Backend: durability behind one interface ("none", "snapshot",
//     "badger"); the registry mirrors mutations into it, recovery reads
//     it back
//   - Engine: lifecycle and loops (expiry sweep, periodic checkpoint,
//     graceful close)
//
// Command dispatch never sees the backend; it works against registry
// handles only. Memory is always written first and is never rolled back
// on a mirror failure, so a degraded backend costs durability, not
// availability.
//
// @req RQ-0201
// @design DS-0202
package storage
