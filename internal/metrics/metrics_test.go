package metrics

import (
	"testing"
)

func TestCompressionMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"CompressionsTotal", CompressionsTotal},
		{"CompressionDuration", CompressionDuration},
		{"CompressionsInFlight", CompressionsInFlight},
		{"BytesIn", BytesIn},
		{"BytesSaved", BytesSaved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestMemoryMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"MemoryUsageRatio", MemoryUsageRatio},
		{"MemoryPaused", MemoryPaused},
		{"MemoryGCPauses", MemoryGCPauses},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestCompressionLabelCardinality(t *testing.T) {
	// Every category/outcome pair must be addressable without panicking.
	categories := []string{"audio", "video", "image", "other"}
	outcomes := []string{OutcomeTranscoded, OutcomeFallback, OutcomeSkipped}

	for _, c := range categories {
		for _, o := range outcomes {
			if CompressionsTotal.WithLabelValues(c, o) == nil {
				t.Errorf("no counter for %s/%s", c, o)
			}
		}
		if CompressionDuration.WithLabelValues(c) == nil {
			t.Errorf("no histogram for %s", c)
		}
	}
}
