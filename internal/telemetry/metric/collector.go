// Package metric provides Prometheus metrics for keyden.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ServerMetrics carries the data-plane server's instruments. They are
// usable immediately after construction; Register attaches them to a
// registry for exposition.
type ServerMetrics struct {
	ConnectionsActive prometheus.Gauge
	ConnectionsTotal  prometheus.Counter
	CommandsTotal     *prometheus.CounterVec
	CommandDuration   prometheus.Histogram
	RateLimited       prometheus.Counter
}

// NewServerMetrics creates the server instrument set.
func NewServerMetrics() *ServerMetrics {
	return &ServerMetrics{
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "keyden",
			Subsystem: "server",
			Name:      "connections_active",
			Help:      "Open client connections",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "keyden",
			Subsystem: "server",
			Name:      "connections_total",
			Help:      "Client connections accepted",
		}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "keyden",
			Subsystem: "server",
			Name:      "commands_total",
			Help:      "Commands processed, by command and outcome",
		}, []string{"command", "status"}),
		CommandDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "keyden",
			Subsystem: "server",
			Name:      "command_duration_seconds",
			Help:      "Command processing duration",
			Buckets:   prometheus.DefBuckets,
		}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "keyden",
			Subsystem: "server",
			Name:      "rate_limited_total",
			Help:      "Commands rejected by the per-client rate limiter",
		}),
	}
}

// Register attaches every instrument to registry.
func (m *ServerMetrics) Register(registry *prometheus.Registry) {
	registry.MustRegister(
		m.ConnectionsActive,
		m.ConnectionsTotal,
		m.CommandsTotal,
		m.CommandDuration,
		m.RateLimited,
	)
}

// ObserveCommand records one processed command.
func (m *ServerMetrics) ObserveCommand(command, status string, seconds float64) {
	m.CommandsTotal.WithLabelValues(command, status).Inc()
	m.CommandDuration.Observe(seconds)
}
