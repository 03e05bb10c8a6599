package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailwatch_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mailwatch_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Log pipeline metrics
	LinesParsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mailwatch_log_lines_parsed_total",
			Help: "Log lines successfully parsed into structured records",
		},
	)

	LinesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mailwatch_log_lines_skipped_total",
			Help: "Log lines discarded as unparseable",
		},
	)

	TransactionsBuilt = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mailwatch_transactions",
			Help: "Transactions produced by the most recent aggregation pass",
		},
	)

	LogFilesRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailwatch_log_files_read_total",
			Help: "Log files read during rebuilds",
		},
		[]string{"kind"}, // kind: plain, gzip
	)

	// Cache metrics
	CacheRefreshes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mailwatch_cache_refreshes_total",
			Help: "Full pipeline reruns triggered by log file changes",
		},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mailwatch_cache_hits_total",
			Help: "Requests served from the cached transaction set",
		},
	)

	// Forwarder metrics
	ForwardPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailwatch_forward_events_total",
			Help: "Delivery events published to Kafka",
		},
		[]string{"status"}, // status: success, failed
	)

	ForwardDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mailwatch_forward_dropped_total",
			Help: "Delivery events dropped because the forward queue was full",
		},
	)

	ForwardPublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mailwatch_forward_publish_duration_seconds",
			Help:    "Time taken to publish a batch of delivery events",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// AI analysis metrics
	AnalysisRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailwatch_ai_analysis_total",
			Help: "AI log analysis requests by provider and outcome",
		},
		[]string{"provider", "status"},
	)

	// Panic recovery
	PanicsRecovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailwatch_panics_recovered_total",
			Help: "Total number of panics recovered",
		},
		[]string{"component"},
	)
)
