package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the ingestion worker

var (
	// API call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wvw_api_calls_total",
			Help: "Total number of GW2 API calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wvw_api_call_duration_seconds",
			Help:    "Duration of GW2 API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wvw_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	// Sync metrics
	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wvw_sync_operations_total",
			Help: "Total number of sync job runs",
		},
		[]string{"job", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wvw_sync_duration_seconds",
			Help:    "Duration of sync job runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"job"},
	)

	SyncRunsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wvw_sync_runs_skipped_total",
			Help: "Sync job runs skipped because the previous run was still in flight",
		},
		[]string{"job"},
	)

	LastSuccessfulSync = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wvw_last_successful_sync_timestamp",
			Help: "Timestamp of last completed sync cycle",
		},
	)

	// Cache metrics
	CacheRebuildsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wvw_cache_rebuilds_total",
			Help: "Total number of snapshot cache rebuilds",
		},
	)

	CacheChangesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wvw_cache_changes_total",
			Help: "Cache rebuilds that produced a structurally different snapshot",
		},
	)

	// Ingestion stats
	GuildsIngested = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wvw_guilds_ingested_total",
			Help: "Total number of guilds in database",
		},
	)

	StreamClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wvw_stream_clients",
			Help: "Number of connected streaming clients",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wvw_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wvw_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)
)

// RecordAPICall records an API call metric
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
}

// RecordSync records a sync job run
func RecordSync(job, status string, duration float64) {
	SyncOperationsTotal.WithLabelValues(job, status).Inc()
	SyncDuration.WithLabelValues(job).Observe(duration)
}

// RecordSkippedRun records a job run skipped due to overlap
func RecordSkippedRun(job string) {
	SyncRunsSkipped.WithLabelValues(job).Inc()
}

// RecordCacheRebuild records a cache rebuild and whether it changed the snapshot
func RecordCacheRebuild(changed bool) {
	CacheRebuildsTotal.Inc()
	if changed {
		CacheChangesTotal.Inc()
	}
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
