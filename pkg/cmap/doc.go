// Package cmap provides a concurrent map used for keyden keyspaces.
//
// The map is split into a power-of-two number of shards, each guarded
// by its own RWMutex. Keys are distributed with hash/maphash, so hot
// keyspaces spread their contention across shards instead of serializing
// on one lock.
//
// Usage:
//
//	m := cmap.New[Entry]()
//	m.Set("key", entry)
//	val, ok := m.Get("key")
//
// All operations are safe for concurrent use. Reads (Get, Has, Count,
// Range) take shard read locks; mutations (Set, Delete, Pop, DeleteIf,
// GetOrSet, SetIfAbsent, Update) take shard write locks. Conditional
// operations evaluate their callback under the shard lock, which makes
// check-then-act sequences atomic per key.
package cmap
