package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gamezone"

var (
	// HTTPRequestsTotal counts all HTTP requests processed by the API.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled by the API.",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPRequestDuration measures how long HTTP handlers take to respond.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of latencies for HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// ValidationFailures counts request bodies rejected by the body validator.
	ValidationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Number of request bodies rejected by schema validation.",
		},
		[]string{"schema"},
	)

	// StoreOperations tracks operations performed by the key-value store.
	StoreOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_store_operations_total",
			Help:      "Count of cache store operations.",
		},
		[]string{"store", "operation", "status"},
	)

	// StoreOperationDuration measures how long store operations take to complete.
	StoreOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cache_store_operation_duration_seconds",
			Help:      "Histogram of latencies for cache store operations.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"store", "operation"},
	)

	// CacheLookups counts accessor reads by outcome: hit, miss or corrupt.
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Number of cache reads by accessor and outcome.",
		},
		[]string{"accessor", "outcome"},
	)

	// UpstreamRequests counts calls to the football data API.
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Count of requests to the football data API.",
		},
		[]string{"endpoint", "status"},
	)

	// UpstreamRequestDuration measures duration of calls to the football data API.
	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Histogram of football data API request durations.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

// Register registers all metrics in the default registry.
func Register() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ValidationFailures,
		StoreOperations,
		StoreOperationDuration,
		CacheLookups,
		UpstreamRequests,
		UpstreamRequestDuration,
	)
}

// RecordStoreOp increments StoreOperations with result status and observes latency.
func RecordStoreOp(store, operation string, err error, durationSeconds float64) {
	StoreOperations.WithLabelValues(store, operation, status(err)).Inc()
	StoreOperationDuration.WithLabelValues(store, operation).Observe(durationSeconds)
}

// RecordLookup records the outcome of an accessor read.
func RecordLookup(accessor, outcome string) {
	CacheLookups.WithLabelValues(accessor, outcome).Inc()
}

// RecordUpstreamRequest records metrics for a football API call.
func RecordUpstreamRequest(endpoint string, err error, durationSeconds float64) {
	UpstreamRequests.WithLabelValues(endpoint, status(err)).Inc()
	UpstreamRequestDuration.WithLabelValues(endpoint).Observe(durationSeconds)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
