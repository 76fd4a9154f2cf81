// Package httpserver provides the admin HTTP server for Keyden.
//
// The server is disabled unless a listen address is configured. It
// serves the operational endpoints:
//
//   - Health probes: /health/live, /health/ready
//   - Prometheus metrics: /metrics
//   - Registry statistics: /v1/stats
//   - Snapshot trigger: /v1/snapshot
//   - Build identity: /version
//
// Requests pass the middleware chain RequestID -> Logging -> Recover
// before reaching the handlers. There is no data-plane access over
// HTTP; keys move only through the text protocol.
//
// @req RQ-0301
// @design DS-0301
package httpserver
