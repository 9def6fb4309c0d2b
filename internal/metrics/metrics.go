// Package metrics exports the fabric's Prometheus counters and gauges.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the fabric's Prometheus instruments, registered against a
// private registry so tests can construct isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	ParticipantsTotal     prometheus.Gauge
	PlacementsTotal       prometheus.Counter
	OrphansTotal          prometheus.Counter
	RebalanceMovesTotal   prometheus.Counter
	HeartbeatTimeoutTotal prometheus.Counter
}

// New constructs a Metrics instance with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		ParticipantsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "fm",
			Name:      "participants_total",
			Help:      "Current number of connected participants.",
		}),
		PlacementsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "fm",
			Name:      "placements_total",
			Help:      "Total number of successful tree placements.",
		}),
		OrphansTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "fm",
			Name:      "orphans_total",
			Help:      "Total number of placement attempts that left a listener orphaned.",
		}),
		RebalanceMovesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "fm",
			Name:      "rebalance_moves_total",
			Help:      "Total number of children relocated by the rebalancer.",
		}),
		HeartbeatTimeoutTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "fm",
			Name:      "heartbeat_timeouts_total",
			Help:      "Total number of participants force-disconnected for missing heartbeats.",
		}),
	}
}

// Handler returns the HTTP handler serving this instance's Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
