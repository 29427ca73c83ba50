package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dairyadmin_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// PermissionChecks counts module permission evaluations and their outcome (allowed|denied|error).
	PermissionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dairyadmin_permission_checks_total",
			Help: "Total number of module permission checks",
		},
		[]string{"module", "result"},
	)

	// Mutations counts create/update/delete operations per resource.
	Mutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dairyadmin_mutations_total",
			Help: "Total number of master data mutations",
		},
		[]string{"resource", "action"},
	)

	// ImportRows counts imported spreadsheet rows by outcome (inserted|updated|failed).
	ImportRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dairyadmin_import_rows_total",
			Help: "Rows processed by master data imports",
		},
		[]string{"type", "outcome"},
	)

	// RealtimeSubscribers tracks connected invalidation subscribers.
	RealtimeSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dairyadmin_realtime_subscribers",
			Help: "Number of connected realtime subscribers",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dairyadmin_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
