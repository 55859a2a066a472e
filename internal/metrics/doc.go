// Package metrics defines the Prometheus collectors for compression
// operations.
package metrics
