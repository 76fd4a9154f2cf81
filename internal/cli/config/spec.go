// Package config provides client-side configuration for keyden-cli.
package config

import (
	"fmt"
	"time"
)

// Default CLI settings.
const (
	DefaultServer  = "localhost:4000"
	DefaultAdmin   = "localhost:8080"
	DefaultTimeout = 5 * time.Second
	DefaultOutput  = "table"
)

// CLIConfig is the configuration for keyden-cli.
type CLIConfig struct {
	// Server is the text-protocol address of the data plane.
	Server string `koanf:"server"`

	// Admin is the address of the admin HTTP server.
	Admin string `koanf:"admin"`

	// Timeout bounds dials and request round-trips.
	Timeout time.Duration `koanf:"timeout"`

	// Output selects the default rendering: table, json or yaml.
	Output string `koanf:"output"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:  DefaultServer,
		Admin:   DefaultAdmin,
		Timeout: DefaultTimeout,
		Output:  DefaultOutput,
	}
}

// Verify checks the configuration for values the CLI cannot work with.
func Verify(cfg *CLIConfig) error {
	if cfg.Server == "" {
		return fmt.Errorf("server address must not be empty")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	switch cfg.Output {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q, want table, json or yaml", cfg.Output)
	}
	return nil
}
