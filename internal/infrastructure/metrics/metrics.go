package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Settlement metrics
	SettlementsSubmitted *prometheus.CounterVec
	SettlementDuration   prometheus.Histogram
	SettledEntries       prometheus.Counter
	SettledAmount        prometheus.Histogram
	SettlementsInFlight  prometheus.Gauge

	// Snapshot metrics
	SnapshotRefreshes       *prometheus.CounterVec
	SnapshotRefreshDuration prometheus.Histogram
	SnapshotEntries         prometheus.Gauge
	SnapshotRejectedEntries prometheus.Counter
	SnapshotStale           prometheus.Gauge

	// Entry metrics
	EntryOperations *prometheus.CounterVec

	// Invoice metrics
	InvoicesGenerated prometheus.Counter

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxErrors    prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates and registers all Prometheus metrics on the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates the metrics and registers them on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		// Settlement metrics
		SettlementsSubmitted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashbook_settlements_total",
				Help: "Total settlement submissions by outcome",
			},
			[]string{"outcome"},
		),
		SettlementDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "cashbook_settlement_duration_seconds",
			Help:    "Duration of settlement dispatches",
			Buckets: prometheus.DefBuckets,
		}),
		SettledEntries: f.NewCounter(prometheus.CounterOpts{
			Name: "cashbook_settled_entries_total",
			Help: "Total number of entries marked as paid",
		}),
		SettledAmount: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "cashbook_settlement_amount",
			Help:    "Settled totals per submission",
			Buckets: []float64{10, 100, 1000, 10000, 100000, 1000000},
		}),
		SettlementsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "cashbook_settlements_in_flight",
			Help: "Settlements currently being dispatched",
		}),

		// Snapshot metrics
		SnapshotRefreshes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashbook_snapshot_refreshes_total",
				Help: "Snapshot refreshes by outcome",
			},
			[]string{"outcome"},
		),
		SnapshotRefreshDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "cashbook_snapshot_refresh_duration_seconds",
			Help:    "Duration of entry store fetches",
			Buckets: prometheus.DefBuckets,
		}),
		SnapshotEntries: f.NewGauge(prometheus.GaugeOpts{
			Name: "cashbook_snapshot_entries",
			Help: "Entries in the current snapshot",
		}),
		SnapshotRejectedEntries: f.NewCounter(prometheus.CounterOpts{
			Name: "cashbook_snapshot_rejected_entries_total",
			Help: "Malformed entries excluded from snapshots",
		}),
		SnapshotStale: f.NewGauge(prometheus.GaugeOpts{
			Name: "cashbook_snapshot_stale",
			Help: "1 when the last refresh failed and views are served from the previous snapshot",
		}),

		// Entry metrics
		EntryOperations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashbook_entry_operations_total",
				Help: "Entry writes by operation",
			},
			[]string{"operation"},
		),

		// Invoice metrics
		InvoicesGenerated: f.NewCounter(prometheus.CounterOpts{
			Name: "cashbook_invoices_generated_total",
			Help: "Recurring contract invoices materialized",
		}),

		// Outbox metrics
		OutboxPublished: f.NewCounter(prometheus.CounterOpts{
			Name: "cashbook_outbox_published_total",
			Help: "Outbox events published",
		}),
		OutboxErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "cashbook_outbox_errors_total",
			Help: "Outbox events that failed to publish",
		}),

		// API metrics
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashbook_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cashbook_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "cashbook_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		// Rate limiting metrics
		RateLimitHits: f.NewCounter(prometheus.CounterOpts{
			Name: "cashbook_rate_limit_hits_total",
			Help: "Total rate limit hits",
		}),
	}
}
