// Package main provides the entry point for keyden-cli.
//
// The CLI talks to a keyden server over both of its surfaces: protocol
// commands go to the text port, statistics and snapshots go to the
// admin HTTP port.
//
// Usage:
//
//	keyden-cli [command] [flags]
//	keyden-cli exec 'SET("greeting","hello","30s")'
//	keyden-cli shell
//	keyden-cli stats --output json
//
// The CLI supports both single-command mode and an interactive shell.
//
// @design DS-0601
package main
