// Package metric provides Prometheus metrics for respcache.
//
// It exposes connection, command, and store gauges in Prometheus
// format for scraping via the optional metrics endpoint.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "respcache"

// Registry holds all server metrics.
type Registry struct {
	// Connection metrics
	ConnectionsActive prometheus.Gauge
	ConnectionsTotal  prometheus.Counter

	// Request metrics
	CommandsTotal  *prometheus.CounterVec
	ProtocolErrors prometheus.Counter
	RateLimited    prometheus.Counter

	// Store metrics
	KeysStored prometheus.GaugeFunc
}

// NewRegistry creates and registers all server metrics. keyCount is
// sampled on scrape for the stored-keys gauge; it may be nil.
func NewRegistry(reg prometheus.Registerer, keyCount func() float64) *Registry {
	factory := promauto.With(reg)

	r := &Registry{
		ConnectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Number of currently open client connections.",
		}),
		ConnectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Total number of accepted client connections.",
		}),
		CommandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Total number of dispatched commands by name.",
		}, []string{"command"}),
		ProtocolErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_errors_total",
			Help:      "Total number of malformed frames and failed command constructions.",
		}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Total number of request buffers rejected by the per-IP rate limit.",
		}),
	}

	if keyCount == nil {
		keyCount = func() float64 { return 0 }
	}
	r.KeysStored = factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "keys_stored",
		Help:      "Number of stored entries, including expired entries not yet overwritten.",
	}, keyCount)

	return r
}

// Handler returns an HTTP handler serving the metrics endpoint.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
