// Package config provides client-side configuration for keyden-cli.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// DefaultPath returns the default CLI config file path, or the empty
// string when the home directory cannot be resolved.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".keyden", "config.yaml")
}

// Load reads the CLI configuration from path, falling back to
// DefaultPath when path is empty. A missing file is not an error; the
// defaults come back unchanged.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), koanfyaml.Parser()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("load cli config: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("parse cli config: %w", err)
	}

	if err := Verify(cfg); err != nil {
		return nil, fmt.Errorf("cli config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes cfg to path (DefaultPath when empty) as YAML, creating
// the parent directory when needed. The file is written 0600 since it
// may name internal endpoints.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return errors.New("no config path available")
	}

	// Durations render as strings so the file round-trips the way a
	// person would write it.
	data, err := yaml.Marshal(map[string]any{
		"server":  cfg.Server,
		"admin":   cfg.Admin,
		"timeout": cfg.Timeout.String(),
		"output":  cfg.Output,
	})
	if err != nil {
		return fmt.Errorf("encode cli config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write cli config: %w", err)
	}
	return nil
}
