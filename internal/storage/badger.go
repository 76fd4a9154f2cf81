// Badger-backed durability: every registry mutation is mirrored to an
// embedded Badger store, so restarts replay nothing and lose nothing.
//
// Key layout inside Badger:
//
//	\x00meta\x00<db>   JSON database record
//	<db>\x00<key>      JSON entry
//
// Database names cannot contain control bytes, so the NUL separator is
// unambiguous. The exact expiry deadline lives in the JSON payload; the
// Badger-native TTL on entry keys is only a coarse guard that lets the
// LSM reclaim long-dead entries between restarts.
//
// @req RQ-0201
// @design DS-0202
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/keydenlabs/keyden/internal/core/domain"
	"github.com/keydenlabs/keyden/internal/storage/snapshot"
)

var metaPrefix = []byte("\x00meta\x00")

// BadgerConfig contains Badger-specific tuning parameters.
type BadgerConfig struct {
	// Dir is the storage directory. Ignored when InMemory is set.
	Dir string

	// InMemory runs Badger without touching disk. Used in tests.
	InMemory bool

	// GCInterval is the interval between value log GC runs.
	GCInterval time.Duration

	// GCThreshold is the discard ratio that triggers a value log rewrite.
	GCThreshold float64

	// CacheSize is the block cache size in bytes.
	CacheSize int64

	// ValueLogFileSize is the max value log file size in bytes.
	ValueLogFileSize int64

	// NumMemtables is the number of memtables.
	NumMemtables int

	// SyncWrites fsyncs after each write. Off by default; the snapshot
	// backend exists for deployments that want cheap durability, badger
	// for deployments that want write-level durability.
	SyncWrites bool
}

// DefaultBadgerConfig returns the default Badger tuning.
func DefaultBadgerConfig(dir string) BadgerConfig {
	return BadgerConfig{
		Dir:              dir,
		GCInterval:       10 * time.Minute,
		GCThreshold:      0.5,
		CacheSize:        64 << 20,
		ValueLogFileSize: 256 << 20,
		NumMemtables:     2,
		SyncWrites:       false,
	}
}

// badgerBackend mirrors every registry mutation into Badger.
type badgerBackend struct {
	cfg    BadgerConfig
	logger *slog.Logger
	db     *badger.DB

	lastGCTime       atomic.Int64
	gcBytesReclaimed atomic.Uint64

	stopCh chan struct{}
	doneCh chan struct{}
}

func newBadgerBackend(cfg BadgerConfig, logger *slog.Logger) (*badgerBackend, error) {
	if cfg.Dir == "" && !cfg.InMemory {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if cfg.GCInterval <= 0 {
		cfg.GCInterval = 10 * time.Minute
	}
	if cfg.GCThreshold <= 0 {
		cfg.GCThreshold = 0.5
	}
	return &badgerBackend{
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}, nil
}

func (b *badgerBackend) Name() string { return BackendBadger }

// Open opens the Badger store and starts the value log GC loop.
func (b *badgerBackend) Open(ctx context.Context) error {
	var opts badger.Options
	if b.cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(b.cfg.Dir)
	}
	opts.Logger = &badgerLogger{logger: b.logger}
	if b.cfg.CacheSize > 0 {
		opts.BlockCacheSize = b.cfg.CacheSize
	}
	if b.cfg.ValueLogFileSize > 0 {
		opts.ValueLogFileSize = b.cfg.ValueLogFileSize
	}
	if b.cfg.NumMemtables > 0 {
		opts.NumMemtables = b.cfg.NumMemtables
	}
	opts.SyncWrites = b.cfg.SyncWrites
	opts.DetectConflicts = false

	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("badger: open db: %w", err)
	}
	b.db = db

	// Value log GC does not apply to the in-memory mode.
	if b.cfg.InMemory {
		close(b.doneCh)
	} else {
		go b.gcLoop()
	}

	b.logger.Info("badger backend opened",
		"dir", b.cfg.Dir,
		"in_memory", b.cfg.InMemory,
		"gc_interval", b.cfg.GCInterval)
	return nil
}

// Restore rebuilds the registry from the mirrored state. Database records
// are scanned first; entry prefixes without a record are ignored.
func (b *badgerBackend) Restore(reg *Registry) (int, error) {
	var databases []snapshot.Database

	err := b.db.View(func(txn *badger.Txn) error {
		metas, err := b.scanMetas(txn)
		if err != nil {
			return err
		}
		for _, meta := range metas {
			entries, err := b.scanEntries(txn, meta.Name)
			if err != nil {
				return err
			}
			databases = append(databases, snapshot.Database{Meta: meta, Entries: entries})
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("badger: restore scan: %w", err)
	}

	loaded := reg.RestoreFrom(databases)
	b.logger.Info("registry restored from badger", "databases", loaded)
	return loaded, nil
}

func (b *badgerBackend) scanMetas(txn *badger.Txn) ([]domain.Database, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = metaPrefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var metas []domain.Database
	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		var meta domain.Database
		err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		})
		if err != nil {
			return nil, fmt.Errorf("decode record %q: %w", item.Key(), err)
		}
		metas = append(metas, meta)
	}
	return metas, nil
}

func (b *badgerBackend) scanEntries(txn *badger.Txn, db string) (map[string]domain.Entry, error) {
	prefix := []byte(db + "\x00")
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	entries := make(map[string]domain.Entry)
	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		key := string(item.Key()[len(prefix):])
		var entry domain.Entry
		err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
		if err != nil {
			return nil, fmt.Errorf("decode entry %q/%q: %w", db, key, err)
		}
		entries[key] = entry
	}
	return entries, nil
}

func (b *badgerBackend) DatabaseCreated(meta domain.Database) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("badger: encode record: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(metaKey(meta.Name), data)
	})
}

// DatabaseDropped removes the record before the entries, so a crash in
// between leaves orphan entries that Restore ignores rather than a
// resurrected empty database.
func (b *badgerBackend) DatabaseDropped(name string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(metaKey(name))
	})
	if err != nil {
		return err
	}
	return b.db.DropPrefix([]byte(name + "\x00"))
}

func (b *badgerBackend) MirrorSet(db, key string, entry domain.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("badger: encode entry: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(entryKey(db, key), data)
		if entry.ExpiresAt != domain.NoExpiry {
			ttl := time.Until(time.UnixMilli(entry.ExpiresAt)) + time.Second
			if ttl < time.Second {
				ttl = time.Second
			}
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

func (b *badgerBackend) MirrorDelete(db, key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(entryKey(db, key))
	})
}

// Checkpoint is a no-op: every mirrored write is already durable.
func (b *badgerBackend) Checkpoint(ctx context.Context, reg *Registry) error {
	return nil
}

// Close stops the GC loop and closes the store.
func (b *badgerBackend) Close(ctx context.Context) error {
	close(b.stopCh)
	<-b.doneCh

	if err := b.db.Close(); err != nil {
		return fmt.Errorf("badger: close db: %w", err)
	}
	b.logger.Info("badger backend closed")
	return nil
}

// GC runs value log GC until Badger reports nothing left to rewrite.
func (b *badgerBackend) GC() (uint64, error) {
	start := time.Now()

	var reclaimed uint64
	for {
		err := b.db.RunValueLogGC(b.cfg.GCThreshold)
		if err != nil {
			if errors.Is(err, badger.ErrNoRewrite) {
				break
			}
			return reclaimed, fmt.Errorf("badger: gc: %w", err)
		}
		// Badger does not report exact reclaim; count rewrite cycles.
		reclaimed += 1 << 20
	}

	b.lastGCTime.Store(time.Now().UnixMilli())
	b.gcBytesReclaimed.Add(reclaimed)

	if reclaimed > 0 {
		b.logger.Info("badger gc completed",
			"bytes_reclaimed", reclaimed,
			"elapsed", time.Since(start))
	}
	return reclaimed, nil
}

func (b *badgerBackend) gcLoop() {
	defer close(b.doneCh)

	ticker := time.NewTicker(b.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := b.GC(); err != nil {
				b.logger.Error("badger auto gc failed", "error", err)
			}
		case <-b.stopCh:
			return
		}
	}
}

// RegisterMetrics registers Badger size gauges with the given registry.
func (b *badgerBackend) RegisterMetrics(registry *prometheus.Registry) {
	registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "keyden",
			Subsystem: "badger",
			Name:      "lsm_size_bytes",
			Help:      "Badger LSM tree size in bytes",
		}, func() float64 {
			if b.db == nil {
				return 0
			}
			lsm, _ := b.db.Size()
			return float64(lsm)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "keyden",
			Subsystem: "badger",
			Name:      "value_log_size_bytes",
			Help:      "Badger value log size in bytes",
		}, func() float64 {
			if b.db == nil {
				return 0
			}
			_, vlog := b.db.Size()
			return float64(vlog)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "keyden",
			Subsystem: "badger",
			Name:      "last_gc_timestamp_seconds",
			Help:      "Unix timestamp of the last value log GC run",
		}, func() float64 {
			return float64(b.lastGCTime.Load()) / 1000.0
		}),
	)
}

func metaKey(name string) []byte {
	return append(append([]byte{}, metaPrefix...), name...)
}

func entryKey(db, key string) []byte {
	k := make([]byte, 0, len(db)+1+len(key))
	k = append(k, db...)
	k = append(k, 0)
	k = append(k, key...)
	return k
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
