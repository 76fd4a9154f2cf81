// Package metric provides Prometheus metrics for keyden.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: registry construction and the /metrics HTTP handler
//   - collector.go: the data-plane server instrument set
//
// Storage-side instruments (sweep, registry, backend) are created by
// internal/storage and attach to the same registry. Metrics are exposed
// at /metrics on the admin listener in Prometheus format.
//
// @req RQ-0403
// @design DS-0402
package metric
