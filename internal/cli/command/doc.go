// Package command defines the commands for keyden-cli.
//
// This package wires urfave/cli/v2 commands over the connection
// clients:
//
//   - root.go: application, global flags, settings resolution
//   - exec.go: one-shot protocol command
//   - shell.go: interactive shell
//   - stats.go: server statistics via the admin endpoint
//   - ping.go: data-plane round-trip check
//   - backup.go: snapshot trigger via the admin endpoint
//   - config.go: CLI configuration file management
//
// Every command resolves its settings the same way: explicit flags and
// KEYDEN_ environment variables win over the config file, which wins
// over built-in defaults.
//
// @req RQ-0602
// @design DS-0601
package command
