// Package handler provides the admin HTTP endpoints for Keyden.
//
// The surface is operational only:
//
//   - health.go: liveness and readiness probes
//   - admin.go: registry statistics, snapshot trigger, build identity
//
// Handlers render plain JSON bodies; errors carry a code both in the
// body and the X-Error-Code header.
//
// @req RQ-0301
// @design DS-0302
package handler
