// Package audio models decoded audio as planar float32 sample buffers and
// implements the offline render step: channel downmix and sample-rate
// conversion, run to completion as fast as possible.
package audio
