// Package storage provides the storage engine for keyden.
//
// The engine owns the database registry, the durability backend, and the
// background loops: the expiry sweep over every keyspace and, for the
// snapshot backend, the periodic checkpoint.
//
// @req RQ-0201
// @design DS-0202
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/keydenlabs/keyden/internal/core/domain"
	"github.com/keydenlabs/keyden/internal/storage/snapshot"
)

// Default configuration values.
const (
	DefaultSweepInterval    = 5 * time.Second
	DefaultSnapshotInterval = 5 * time.Minute
)

// Config configures the storage engine.
type Config struct {
	// Backend selects durability: "none", "snapshot", or "badger".
	Backend string

	// SweepInterval is the period between expiry sweeps.
	SweepInterval time.Duration

	// SnapshotInterval is the period between automatic checkpoints.
	// Only meaningful for the snapshot backend.
	SnapshotInterval time.Duration

	// Snapshot configures the snapshot backend.
	Snapshot snapshot.Config

	// Badger configures the badger backend.
	Badger BadgerConfig

	// Logger is the structured logger.
	Logger *slog.Logger
}

// DefaultConfig returns the default storage configuration, rooted at
// dataDir for the backends that touch disk.
func DefaultConfig(dataDir string) Config {
	return Config{
		Backend:          BackendNone,
		SweepInterval:    DefaultSweepInterval,
		SnapshotInterval: DefaultSnapshotInterval,
		Snapshot:         snapshot.DefaultConfig(filepath.Join(dataDir, "snapshots")),
		Badger:           DefaultBadgerConfig(filepath.Join(dataDir, "badger")),
		Logger:           slog.Default(),
	}
}

// Engine combines the registry with a durability backend and drives the
// background loops.
type Engine struct {
	cfg Config

	registry *Registry
	backend  Backend

	logger *slog.Logger

	sweepPasses   prometheus.Counter
	sweepRemoved  prometheus.Counter
	sweepDuration prometheus.Histogram

	reloadCh chan time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New creates a storage engine and starts its background loop.
//
// The backend is not opened yet; call Recover to open it and load
// persisted state.
func New(cfg Config) (*Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.SnapshotInterval <= 0 {
		cfg.SnapshotInterval = DefaultSnapshotInterval
	}

	var (
		backend Backend
		err     error
	)
	switch cfg.Backend {
	case "", BackendNone:
		backend = NewNopBackend()
	case BackendSnapshot:
		backend, err = newSnapshotBackend(cfg.Snapshot, cfg.Logger)
	case BackendBadger:
		backend, err = newBadgerBackend(cfg.Badger, cfg.Logger)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: create %s backend: %w", cfg.Backend, err)
	}

	engine := &Engine{
		cfg:      cfg,
		registry: NewRegistry(backend),
		backend:  backend,
		logger:   cfg.Logger,
		sweepPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "keyden",
			Subsystem: "sweep",
			Name:      "passes_total",
			Help:      "Expiry sweep passes completed",
		}),
		sweepRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "keyden",
			Subsystem: "sweep",
			Name:      "removed_total",
			Help:      "Entries removed by the expiry sweeper",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "keyden",
			Subsystem: "sweep",
			Name:      "duration_seconds",
			Help:      "Expiry sweep pass duration",
			Buckets:   prometheus.DefBuckets,
		}),
		reloadCh: make(chan time.Duration, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	go engine.backgroundLoop()

	return engine, nil
}

// Registry returns the database registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// BackendName returns the active durability backend name.
func (e *Engine) BackendName() string {
	return e.backend.Name()
}

// Stats gathers registry-wide counters.
func (e *Engine) Stats() RegistryStats {
	return e.registry.Stats()
}

// Recover opens the backend and loads persisted state into the registry.
func (e *Engine) Recover(ctx context.Context) error {
	start := time.Now()
	e.logger.Info("storage recovery started", "backend", e.backend.Name())

	if err := e.backend.Open(ctx); err != nil {
		return fmt.Errorf("storage: open backend: %w", err)
	}

	loaded, err := e.backend.Restore(e.registry)
	if err != nil {
		return fmt.Errorf("storage: restore: %w", err)
	}

	e.logger.Info("storage recovery completed",
		"backend", e.backend.Name(),
		"databases", loaded,
		"elapsed", time.Since(start))
	return nil
}

// TriggerSnapshot creates a checkpoint immediately and returns its
// metadata. Only the snapshot backend takes on-demand checkpoints.
func (e *Engine) TriggerSnapshot(ctx context.Context) (*snapshot.Info, error) {
	sb, ok := e.backend.(*snapshotBackend)
	if !ok {
		return nil, domain.ErrStorage.WithDetails("backend " + e.backend.Name() + " does not take snapshots")
	}
	return sb.checkpoint(e.registry)
}

// Snapshots lists the on-disk snapshot inventory, nil for other backends.
func (e *Engine) Snapshots() ([]*snapshot.Info, error) {
	sb, ok := e.backend.(*snapshotBackend)
	if !ok {
		return nil, nil
	}
	return sb.List()
}

// SetSweepInterval changes the sweep cadence without a restart.
func (e *Engine) SetSweepInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	for {
		select {
		case e.reloadCh <- d:
			return
		default:
			// Drop a pending older value and retry.
			select {
			case <-e.reloadCh:
			default:
			}
		}
	}
}

// sweepOnce sweeps every keyspace and returns the number of entries
// removed. The handle list is copied up front; no registry lock is held
// while individual stores are swept.
func (e *Engine) sweepOnce() int {
	start := time.Now()
	handles := e.registry.Handles()

	removed := 0
	for _, inst := range handles {
		removed += inst.Sweep()
	}
	elapsed := time.Since(start)

	e.sweepPasses.Inc()
	e.sweepRemoved.Add(float64(removed))
	e.sweepDuration.Observe(elapsed.Seconds())

	if removed > 0 {
		e.logger.Info("expiry sweep",
			"databases", len(handles),
			"removed", removed,
			"elapsed", elapsed)
	} else {
		e.logger.Debug("expiry sweep",
			"databases", len(handles),
			"removed", 0,
			"elapsed", elapsed)
	}
	return removed
}

// backgroundLoop drives the sweep ticker, interval reloads, and the
// checkpoint ticker when the backend takes periodic checkpoints.
func (e *Engine) backgroundLoop() {
	defer close(e.doneCh)

	sweepTicker := time.NewTicker(e.cfg.SweepInterval)
	defer sweepTicker.Stop()

	var checkpointCh <-chan time.Time
	if e.backend.Name() == BackendSnapshot {
		checkpointTicker := time.NewTicker(e.cfg.SnapshotInterval)
		defer checkpointTicker.Stop()
		checkpointCh = checkpointTicker.C
	}

	for {
		select {
		case <-sweepTicker.C:
			e.sweepOnce()

		case d := <-e.reloadCh:
			sweepTicker.Reset(d)
			e.logger.Info("sweep interval updated", "interval", d)

		case <-checkpointCh:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := e.backend.Checkpoint(ctx, e.registry); err != nil {
				e.logger.Error("auto checkpoint failed", "error", err)
			}
			cancel()

		case <-e.stopCh:
			return
		}
	}
}

// Close stops the background loop, takes a final checkpoint, and closes
// the backend.
func (e *Engine) Close() error {
	e.logger.Info("shutting down storage engine")

	close(e.stopCh)
	<-e.doneCh

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.backend.Checkpoint(ctx, e.registry); err != nil {
		e.logger.Error("final checkpoint failed", "error", err)
	}
	if err := e.backend.Close(ctx); err != nil {
		return fmt.Errorf("storage: close backend: %w", err)
	}

	e.logger.Info("storage engine shutdown complete")
	return nil
}

// RegisterMetrics registers engine and backend metrics with the given
// Prometheus registry. Call once during initialization.
func (e *Engine) RegisterMetrics(registry *prometheus.Registry) {
	registry.MustRegister(e.sweepPasses, e.sweepRemoved, e.sweepDuration)

	registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "keyden",
			Subsystem: "registry",
			Name:      "databases",
			Help:      "Registered databases",
		}, func() float64 {
			return float64(e.registry.Count())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "keyden",
			Subsystem: "registry",
			Name:      "keys",
			Help:      "Physical entries across all databases",
		}, func() float64 {
			return float64(e.registry.Stats().Keys)
		}),
	)

	switch b := e.backend.(type) {
	case *snapshotBackend:
		b.RegisterMetrics(registry)
	case *badgerBackend:
		b.RegisterMetrics(registry)
	}
}
