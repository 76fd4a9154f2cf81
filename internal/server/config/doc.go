// Package config provides server configuration for keyden.
//
// This package defines the server configuration structure and validation:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Startup validation (backends, intervals, addresses)
//
// Configuration is loaded via internal/infra/confloader: defaults, then
// an optional YAML file, then KEYDEN_ environment overrides.
//
// @req RQ-0502
// @design DS-0502
package config
