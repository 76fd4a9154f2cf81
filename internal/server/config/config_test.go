package config

import (
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Listen != DefaultListen {
		t.Errorf("Server.Listen = %q, want %q", cfg.Server.Listen, DefaultListen)
	}
	if cfg.Server.ReadTimeout != DefaultReadTimeout {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, DefaultReadTimeout)
	}
	if cfg.Server.IdleTimeout != DefaultIdleTimeout {
		t.Errorf("Server.IdleTimeout = %v, want %v", cfg.Server.IdleTimeout, DefaultIdleTimeout)
	}
	if cfg.Server.RateLimit != 0 {
		t.Errorf("Server.RateLimit = %d, want 0 (unlimited)", cfg.Server.RateLimit)
	}

	if cfg.Admin.Listen != "" {
		t.Errorf("Admin.Listen = %q, want empty (disabled)", cfg.Admin.Listen)
	}

	if cfg.Storage.Backend != DefaultBackend {
		t.Errorf("Storage.Backend = %q, want %q", cfg.Storage.Backend, DefaultBackend)
	}
	if cfg.Storage.SweepInterval != DefaultSweepInterval {
		t.Errorf("Storage.SweepInterval = %v, want %v", cfg.Storage.SweepInterval, DefaultSweepInterval)
	}
	if cfg.Storage.Snapshot.Retain != DefaultSnapshotRetain {
		t.Errorf("Storage.Snapshot.Retain = %d, want %d", cfg.Storage.Snapshot.Retain, DefaultSnapshotRetain)
	}

	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
	if cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, DefaultLogFormat)
	}
}

func TestVerify_Default(t *testing.T) {
	if err := Verify(Default()); err != nil {
		t.Errorf("Verify(Default()) = %v", err)
	}
}

func TestVerify_Server(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr bool
	}{
		{
			name:   "valid explicit listen",
			mutate: func(c *ServerConfig) { c.Server.Listen = "127.0.0.1:4000" },
		},
		{
			name:    "empty listen",
			mutate:  func(c *ServerConfig) { c.Server.Listen = "" },
			wantErr: true,
		},
		{
			name:    "listen without port",
			mutate:  func(c *ServerConfig) { c.Server.Listen = "localhost" },
			wantErr: true,
		},
		{
			name:    "zero read timeout",
			mutate:  func(c *ServerConfig) { c.Server.ReadTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "negative idle timeout",
			mutate:  func(c *ServerConfig) { c.Server.IdleTimeout = -time.Second },
			wantErr: true,
		},
		{
			name:    "negative rate limit",
			mutate:  func(c *ServerConfig) { c.Server.RateLimit = -1 },
			wantErr: true,
		},
		{
			name:   "rate limit with burst",
			mutate: func(c *ServerConfig) { c.Server.RateLimit = 100; c.Server.RateBurst = 200 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Verify(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerify_Admin(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr bool
	}{
		{
			name:   "disabled admin skips remaining checks",
			mutate: func(c *ServerConfig) { c.Admin.Listen = ""; c.Admin.ReadTimeout = 0 },
		},
		{
			name:   "enabled admin",
			mutate: func(c *ServerConfig) { c.Admin.Listen = ":9090" },
		},
		{
			name:    "malformed admin listen",
			mutate:  func(c *ServerConfig) { c.Admin.Listen = "9090" },
			wantErr: true,
		},
		{
			name:    "enabled admin with zero timeout",
			mutate:  func(c *ServerConfig) { c.Admin.Listen = ":9090"; c.Admin.WriteTimeout = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Verify(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerify_Storage(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr bool
	}{
		{
			name:   "snapshot backend",
			mutate: func(c *ServerConfig) { c.Storage.Backend = "snapshot" },
		},
		{
			name:   "badger backend",
			mutate: func(c *ServerConfig) { c.Storage.Backend = "badger" },
		},
		{
			name:    "unknown backend",
			mutate:  func(c *ServerConfig) { c.Storage.Backend = "etcd" },
			wantErr: true,
		},
		{
			name:    "zero sweep interval",
			mutate:  func(c *ServerConfig) { c.Storage.SweepInterval = 0 },
			wantErr: true,
		},
		{
			name: "snapshot backend without dir",
			mutate: func(c *ServerConfig) {
				c.Storage.Backend = "snapshot"
				c.Storage.Snapshot.Dir = ""
			},
			wantErr: true,
		},
		{
			name: "snapshot backend with zero retain",
			mutate: func(c *ServerConfig) {
				c.Storage.Backend = "snapshot"
				c.Storage.Snapshot.Retain = 0
			},
			wantErr: true,
		},
		{
			name: "snapshot dir ignored for none backend",
			mutate: func(c *ServerConfig) {
				c.Storage.Backend = "none"
				c.Storage.Snapshot.Dir = ""
			},
		},
		{
			name: "badger backend without dir",
			mutate: func(c *ServerConfig) {
				c.Storage.Backend = "badger"
				c.Storage.Badger.Dir = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Verify(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerify_Log(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{name: "debug text", level: "debug", format: "text"},
		{name: "error json", level: "error", format: "json"},
		{name: "unknown level", level: "trace", format: "text", wantErr: true},
		{name: "unknown format", level: "info", format: "xml", wantErr: true},
		{name: "uppercase rejected", level: "INFO", format: "text", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Log.Level = tt.level
			cfg.Log.Format = tt.format
			err := Verify(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
