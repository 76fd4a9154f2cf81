// Package config defines the server configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultListen          = ":4000"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 5 * time.Minute
	DefaultShutdownTimeout = 10 * time.Second

	DefaultAdminReadTimeout  = 10 * time.Second
	DefaultAdminWriteTimeout = 10 * time.Second

	DefaultBackend          = "none"
	DefaultSweepInterval    = 5 * time.Second
	DefaultSnapshotDir      = "snapshots"
	DefaultSnapshotInterval = 5 * time.Minute
	DefaultSnapshotRetain   = 5
	DefaultBadgerDir        = "data"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Listen:          DefaultListen,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Admin: AdminSection{
			ReadTimeout:  DefaultAdminReadTimeout,
			WriteTimeout: DefaultAdminWriteTimeout,
		},
		Storage: StorageSection{
			Backend:       DefaultBackend,
			SweepInterval: DefaultSweepInterval,
			Snapshot: SnapshotSection{
				Dir:      DefaultSnapshotDir,
				Interval: DefaultSnapshotInterval,
				Retain:   DefaultSnapshotRetain,
			},
			Badger: BadgerSection{
				Dir: DefaultBadgerDir,
			},
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
