// Package confloader provides configuration loading mechanism.
//
// This package implements a flexible configuration loader that supports
// multiple sources and formats using koanf as the underlying library.
//
// Features:
//
//   - Multiple Sources: Files, environment variables, maps
//   - Multiple Formats: YAML, JSON, TOML
//   - Watch Support: Automatic reload on config file changes
//   - Type Safety: Unmarshaling into typed structs
//
// Priority (highest to lowest):
//
//  1. Environment variables (KEYDEN_ prefix)
//  2. Configuration files
//  3. Default values
//
// @design DS-0502
// @adr AD-0501
package confloader
