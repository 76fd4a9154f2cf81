// Package config defines the server configuration structure.
package config

import (
	"errors"
	"fmt"
	"net"
)

// Verify validates the configuration. It is called once at startup;
// hot-reloaded values go through it again before they are applied.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyAdmin(&cfg.Admin); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.Listen == "" {
		return errors.New("server.listen is required")
	}
	if _, _, err := net.SplitHostPort(cfg.Listen); err != nil {
		return fmt.Errorf("server.listen %q: %w", cfg.Listen, err)
	}
	if cfg.ReadTimeout <= 0 {
		return errors.New("server.read_timeout must be positive")
	}
	if cfg.WriteTimeout <= 0 {
		return errors.New("server.write_timeout must be positive")
	}
	if cfg.IdleTimeout <= 0 {
		return errors.New("server.idle_timeout must be positive")
	}
	if cfg.ShutdownTimeout <= 0 {
		return errors.New("server.shutdown_timeout must be positive")
	}
	if cfg.RateLimit < 0 {
		return errors.New("server.rate_limit must not be negative")
	}
	if cfg.RateBurst < 0 {
		return errors.New("server.rate_burst must not be negative")
	}
	return nil
}

func verifyAdmin(cfg *AdminSection) error {
	if cfg.Listen == "" {
		// Admin server disabled.
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Listen); err != nil {
		return fmt.Errorf("admin.listen %q: %w", cfg.Listen, err)
	}
	if cfg.ReadTimeout <= 0 {
		return errors.New("admin.read_timeout must be positive")
	}
	if cfg.WriteTimeout <= 0 {
		return errors.New("admin.write_timeout must be positive")
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	switch cfg.Backend {
	case "none", "snapshot", "badger":
	default:
		return fmt.Errorf("storage.backend %q: must be none, snapshot or badger", cfg.Backend)
	}
	if cfg.SweepInterval <= 0 {
		return errors.New("storage.sweep_interval must be positive")
	}

	if cfg.Backend == "snapshot" {
		if cfg.Snapshot.Dir == "" {
			return errors.New("storage.snapshot.dir is required for the snapshot backend")
		}
		if cfg.Snapshot.Interval <= 0 {
			return errors.New("storage.snapshot.interval must be positive")
		}
		if cfg.Snapshot.Retain < 1 {
			return errors.New("storage.snapshot.retain must be at least 1")
		}
	}
	if cfg.Backend == "badger" && cfg.Badger.Dir == "" {
		return errors.New("storage.badger.dir is required for the badger backend")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q: must be debug, info, warn or error", cfg.Level)
	}
	switch cfg.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q: must be text or json", cfg.Format)
	}
	return nil
}
