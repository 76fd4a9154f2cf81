// Package snapshot provides registry snapshot management for keyden.
//
// Snapshots are periodic full dumps of every database (record plus live
// entries), giving the snapshot backend a durable recovery point without
// per-write IO.
//
// File format:
//
//	snapshot-<ulid>.snap
//	[magic:8 "KDYNSNAP"]
//	[HeaderLen:4][HeaderJSON:HeaderLen]
//	[DataLen:4][Data:DataLen]   (JSON databases)
//	[checksum:32 SHA-256 of all bytes above]
//
// Recovery loads the newest snapshot whose checksum verifies; corrupt
// files are skipped in favor of the next newest. Entries whose TTL
// elapsed while the snapshot sat on disk are dropped during import, not
// here.
//
// @design DS-0201
package snapshot
