// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the Spark client and its mock backend.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets defines histogram buckets suited for LLM inference latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts chat calls issued by the client, labeled by mode
	// ("complete" or "stream") and outcome ("success" or "error").
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spark_client_requests_total",
			Help: "Chat requests issued by the client",
		},
		[]string{"mode", "status"},
	)

	// RequestDuration records time to first response by mode. For streaming
	// calls this covers the request up to the response headers, not the
	// stream lifetime.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spark_client_request_duration_seconds",
			Help:    "Chat request duration",
			Buckets: LLMBuckets,
		},
		[]string{"mode"},
	)

	// StreamsActive tracks streams that have been opened and not yet closed.
	StreamsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "spark_client_streams_active",
			Help: "Open streaming responses",
		},
	)

	// StreamLinesSkipped counts malformed stream lines that were dropped.
	StreamLinesSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "spark_client_stream_lines_skipped_total",
			Help: "Malformed stream lines skipped",
		},
	)

	// MockRequestsTotal counts HTTP requests handled by the mock backend,
	// labeled by method and status class.
	MockRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spark_mock_requests_total",
			Help: "Mock backend requests",
		},
		[]string{"method", "status"},
	)

	// MockRequestDuration records mock backend request duration in seconds.
	MockRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spark_mock_request_duration_seconds",
			Help:    "Mock backend request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method"},
	)

	// AuthRejectedTotal counts requests the mock backend rejected as
	// unauthenticated.
	AuthRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "spark_mock_auth_rejected_total",
			Help: "Requests rejected by authentication",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		StreamsActive,
		StreamLinesSkipped,
		MockRequestsTotal,
		MockRequestDuration,
		AuthRejectedTotal,
	)
}
