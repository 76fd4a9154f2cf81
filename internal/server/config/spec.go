// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for keyden-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Admin   AdminSection   `koanf:"admin"`
	Storage StorageSection `koanf:"storage"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures the TCP data-plane server.
type ServerSection struct {
	// Listen is the TCP listen address, e.g. ":4000".
	Listen string `koanf:"listen"`

	// ReadTimeout bounds each wait for a complete command line.
	ReadTimeout time.Duration `koanf:"read_timeout"`

	// WriteTimeout bounds each response write.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// IdleTimeout closes connections with no traffic for this long.
	IdleTimeout time.Duration `koanf:"idle_timeout"`

	// ShutdownTimeout bounds the connection drain on shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RateLimit is the commands/sec budget per remote IP. 0 disables
	// limiting.
	RateLimit int `koanf:"rate_limit"`

	// RateBurst is the burst allowance. 0 means same as RateLimit.
	RateBurst int `koanf:"rate_burst"`
}

// AdminSection configures the optional admin HTTP server.
type AdminSection struct {
	// Listen is the HTTP listen address. Empty disables the admin server.
	Listen string `koanf:"listen"`

	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// StorageSection configures the storage engine.
type StorageSection struct {
	// Backend selects durability: none, snapshot or badger.
	Backend string `koanf:"backend"`

	// SweepInterval is the expiry sweeper period.
	SweepInterval time.Duration `koanf:"sweep_interval"`

	Snapshot SnapshotSection `koanf:"snapshot"`
	Badger   BadgerSection   `koanf:"badger"`
}

// SnapshotSection configures the snapshot backend.
type SnapshotSection struct {
	// Dir is where snapshot files live.
	Dir string `koanf:"dir"`

	// Interval is the periodic checkpoint period.
	Interval time.Duration `koanf:"interval"`

	// Retain is how many snapshots Prune keeps.
	Retain int `koanf:"retain"`
}

// BadgerSection configures the badger backend.
type BadgerSection struct {
	// Dir is the badger database directory.
	Dir string `koanf:"dir"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
