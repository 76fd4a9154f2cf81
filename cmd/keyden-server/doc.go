// Package main provides the entry point for keyden-server.
//
// keyden-server hosts the key-value data plane behind a line-oriented
// TCP text protocol and, when configured, an admin HTTP server for
// health probes, aggregate stats, snapshot triggers and Prometheus
// metrics.
//
// Usage:
//
//	keyden-server [flags]
//	keyden-server --config /path/to/config.yaml
//
// Configuration comes from built-in defaults, an optional YAML file
// and KEYDEN_-prefixed environment variables, in that order. When a
// config file is in use the server watches it and hot-applies the
// reloadable keys; everything else needs a restart.
//
// @design DS-0501
package main
