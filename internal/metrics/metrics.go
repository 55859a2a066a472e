package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Compression metrics
var (
	CompressionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediapress_compressions_total",
			Help: "Total number of compression attempts",
		},
		[]string{"category", "outcome"}, // outcome: "transcoded", "fallback", "skipped"
	)

	CompressionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediapress_compression_duration_seconds",
			Help:    "Compression duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"category"},
	)

	CompressionsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediapress_compressions_in_flight",
			Help: "Number of compression calls currently running",
		},
	)

	BytesIn = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediapress_bytes_in_total",
			Help: "Total payload bytes handed to the dispatcher",
		},
	)

	BytesSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediapress_bytes_saved_total",
			Help: "Total bytes saved by successful transcodes",
		},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediapress_memory_usage_ratio",
			Help: "Current heap usage as a fraction of the configured limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediapress_memory_paused",
			Help: "1 when compression is paused for memory pressure, 0 otherwise",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediapress_memory_gc_pauses_total",
			Help: "Number of forced GC cycles triggered by memory pressure",
		},
	)
)

// Outcome label values.
const (
	OutcomeTranscoded = "transcoded"
	OutcomeFallback   = "fallback"
	OutcomeSkipped    = "skipped"
)
