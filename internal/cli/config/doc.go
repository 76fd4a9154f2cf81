// Package config provides client-side configuration for keyden-cli.
//
// Settings load from a YAML file (default ~/.keyden/config.yaml):
//
//   - spec.go: CLIConfig struct and validation
//   - loader.go: file loading and initial file creation
//
// Precedence is flags and KEYDEN_* environment variables over the
// file, and the file over built-in defaults. Flag resolution itself
// lives in the command package; this package only reads and writes
// the file.
//
// @design DS-0601
package config
