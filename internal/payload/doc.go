// Package payload defines the immutable media payload value passed into and
// out of the compression pipeline.
package payload
