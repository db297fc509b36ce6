// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Sync metrics
	ProposalsSynced  *prometheus.CounterVec
	SyncErrors       *prometheus.CounterVec
	SyncDuration     *prometheus.HistogramVec
	WatcherEvents    prometheus.Counter
	WatcherDecodeErr prometheus.Counter

	// Metadata metrics
	MetadataCacheHits   prometheus.Counter
	MetadataCacheMisses prometheus.Counter
	MetadataFallbacks   *prometheus.CounterVec
	ProviderCallLatency *prometheus.HistogramVec
	ProviderCallErrors  *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulSync prometheus.Gauge
	UptimeSeconds      prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "swap_mirror"
	}

	return &Metrics{
		// Sync metrics
		ProposalsSynced: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "proposals_synced_total",
			Help:      "Total number of proposals synced by chain, trigger and outcome",
		}, []string{"chain", "trigger", "outcome"}),
		SyncErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "errors_total",
			Help:      "Total number of sync errors by chain",
		}, []string{"chain"}),
		SyncDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "duration_seconds",
			Help:      "Proposal sync duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"chain", "trigger"}),
		WatcherEvents: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watcher",
			Name:      "notifications_total",
			Help:      "Total number of program account notifications received",
		}),
		WatcherDecodeErr: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watcher",
			Name:      "decode_errors_total",
			Help:      "Total number of account notifications that failed to decode",
		}),

		// Metadata metrics
		MetadataCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "metadata",
			Name:      "cache_hits_total",
			Help:      "Total number of metadata cache hits",
		}),
		MetadataCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "metadata",
			Name:      "cache_misses_total",
			Help:      "Total number of metadata cache misses",
		}),
		MetadataFallbacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "metadata",
			Name:      "fallbacks_total",
			Help:      "Total number of placeholder metadata records served by chain",
		}, []string{"chain"}),
		ProviderCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "call_latency_seconds",
			Help:      "Upstream provider call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "operation"}),
		ProviderCallErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "call_errors_total",
			Help:      "Total number of upstream provider call errors",
		}, []string{"provider", "operation"}),

		// HTTP metrics
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulSync: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_sync_timestamp",
			Help:      "Unix timestamp of last successful proposal sync",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordProposalSynced records one completed proposal sync.
func RecordProposalSynced(chain, trigger, outcome string, durationSeconds float64) {
	DefaultMetrics.ProposalsSynced.WithLabelValues(chain, trigger, outcome).Inc()
	DefaultMetrics.SyncDuration.WithLabelValues(chain, trigger).Observe(durationSeconds)
}

// RecordSyncError increments the sync error counter for a chain.
func RecordSyncError(chain string) {
	DefaultMetrics.SyncErrors.WithLabelValues(chain).Inc()
}

// RecordWatcherEvent increments the watcher notification counter.
func RecordWatcherEvent() {
	DefaultMetrics.WatcherEvents.Inc()
}

// RecordWatcherDecodeError increments the watcher decode error counter.
func RecordWatcherDecodeError() {
	DefaultMetrics.WatcherDecodeErr.Inc()
}

// RecordMetadataLookup records a cache hit or miss.
func RecordMetadataLookup(hit bool) {
	if hit {
		DefaultMetrics.MetadataCacheHits.Inc()
	} else {
		DefaultMetrics.MetadataCacheMisses.Inc()
	}
}

// RecordMetadataFallback records a placeholder record being served.
func RecordMetadataFallback(chain string) {
	DefaultMetrics.MetadataFallbacks.WithLabelValues(chain).Inc()
}

// RecordProviderCall records an upstream provider call.
func RecordProviderCall(provider, operation string, seconds float64, err error) {
	DefaultMetrics.ProviderCallLatency.WithLabelValues(provider, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.ProviderCallErrors.WithLabelValues(provider, operation).Inc()
	}
}

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(route, code string, seconds float64) {
	DefaultMetrics.HTTPRequestsTotal.WithLabelValues(route, code).Inc()
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(route).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
