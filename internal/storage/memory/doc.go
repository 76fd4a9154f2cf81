// Package memory provides the in-memory keyspace for keyden.
//
// It implements per-database key storage using concurrent-safe
// data structures with sharded locking for high performance.
//
// Features:
//
//   - Sharded Storage: Keys distributed across shards for parallelism
//   - Lazy Expiry: Reads treat past-deadline entries as absent
//   - Deadline Sweep: Bulk removal re-checks expiry under the shard lock
//
// Thread Safety:
//
// All operations are thread-safe through fine-grained locking.
// Read operations use RLock, write operations use Lock.
//
// @design DS-0102
package memory
