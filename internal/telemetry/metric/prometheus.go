package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sharedstore"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Host metrics
	MessagesTotal   *prometheus.CounterVec
	SendersRejected *prometheus.CounterVec
	StorageOps      *prometheus.CounterVec
	KnownKeys       prometheus.Gauge

	// Client metrics
	ClientRequests *prometheus.CounterVec
	ClientTimeouts prometheus.Counter
	ClientPending  prometheus.Gauge
	ClientLatency  *prometheus.HistogramVec
}

// NewRegistry creates a registry with all metrics registered, plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,

		MessagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "host",
			Name:      "messages_total",
			Help:      "Messages handled by the host, by envelope type and result",
		}, []string{"type", "result"}),

		SendersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "host",
			Name:      "senders_rejected_total",
			Help:      "Messages rejected by the access gate, by reason",
		}, []string{"reason"}),

		StorageOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "host",
			Name:      "storage_ops_total",
			Help:      "Storage commands executed, by command and outcome",
		}, []string{"cmd", "outcome"}),

		KnownKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "host",
			Name:      "known_keys",
			Help:      "Number of keys in the host index",
		}),

		ClientRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Client requests, by command and outcome",
		}, []string{"cmd", "outcome"}),

		ClientTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "timeouts_total",
			Help:      "Client conversations that expired without a reply",
		}),

		ClientPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "pending_conversations",
			Help:      "Client conversations awaiting a reply",
		}),

		ClientLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Time from request post to settlement",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"cmd"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.MessagesTotal,
		r.SendersRejected,
		r.StorageOps,
		r.KnownKeys,
		r.ClientRequests,
		r.ClientTimeouts,
		r.ClientPending,
		r.ClientLatency,
	)

	return r
}

var (
	globalOnce sync.Once
	global     *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
	})
	return global
}

// Handler returns an HTTP handler serving the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler returns an HTTP handler serving this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registerer exposes the underlying registry for additional collectors,
// such as the badger size gauges.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registry
}
