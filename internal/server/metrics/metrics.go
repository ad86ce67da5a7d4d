// Package metrics exposes Prometheus instruments for ingestion and editing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingestion results.
const (
	ResultOK          = "ok"
	ResultInvalid     = "invalid"
	ResultUnsupported = "unsupported"
	ResultParseError  = "parse_error"
	ResultStorage     = "storage_error"
	ResultError       = "error"
)

var (
	// IngestionsTotal counts upload ingestions by outcome.
	IngestionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "icarus_ingestions_total",
		Help: "Total document ingestions by result",
	}, []string{"result"})

	// IngestedSegments tracks how many segments a successful upload produced.
	IngestedSegments = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "icarus_ingested_segments",
		Help:    "Number of segments per ingested document",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	TranslationUpdatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "icarus_translation_updates_total",
		Help: "Total successful segment translation updates",
	})

	ProjectsDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "icarus_projects_deleted_total",
		Help: "Total projects deleted by their owners",
	})

	// HTTPRequestDuration is labelled by route template, not raw path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "icarus_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// ObserveIngestion records one ingestion outcome; segments is only used on success.
func ObserveIngestion(result string, segments int) {
	IngestionsTotal.WithLabelValues(result).Inc()
	if result == ResultOK {
		IngestedSegments.Observe(float64(segments))
	}
}
