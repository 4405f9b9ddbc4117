package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the logbook service
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Database Metrics
	DBQueriesTotal  prometheus.CounterVec
	DBQueryDuration prometheus.HistogramVec

	// Cache Metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec

	// Pipeline Metrics
	FilesIngestedTotal     prometheus.CounterVec
	RowsSavedTotal         prometheus.Counter
	RowsDroppedTotal       prometheus.Counter
	ClassifierCallsTotal   prometheus.CounterVec
	ClassifierCallDuration prometheus.HistogramVec
	AircraftResolvedTotal  prometheus.CounterVec
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logbook_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "logbook_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "logbook_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Database Metrics
		DBQueriesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logbook_db_queries_total",
				Help: "Total database queries by operation type",
			},
			[]string{"query_type"},
		),
		DBQueryDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "logbook_db_query_duration_seconds",
				Help:    "Database query execution time in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"query_type"},
		),

		// Cache Metrics
		CacheHitsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logbook_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logbook_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Pipeline Metrics
		FilesIngestedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logbook_files_ingested_total",
				Help: "Total uploaded files converted to tables, by source kind",
			},
			[]string{"kind"},
		),
		RowsSavedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "logbook_rows_saved_total",
				Help: "Total flight log rows persisted",
			},
		),
		RowsDroppedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "logbook_rows_dropped_total",
				Help: "Total rows dropped during ingestion for unparseable dates",
			},
		),
		ClassifierCallsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logbook_classifier_calls_total",
				Help: "Total external classifier calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		ClassifierCallDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "logbook_classifier_call_duration_seconds",
				Help:    "External classifier call latency in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
		AircraftResolvedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logbook_aircraft_resolved_total",
				Help: "Aircraft identifier resolutions by source (db, classifier, cache)",
			},
			[]string{"source"},
		),
	}
}
