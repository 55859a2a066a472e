//go:build !cgo

package transcode

import "errors"

// govips binds libvips through cgo; without cgo the accelerated image path
// is never available and the pure-Go path is always used.

// InitVips is a no-op without cgo; the pure-Go path is used instead.
func InitVips() {}

// ShutdownVips releases libvips resources.
func ShutdownVips() {}

// IsVipsAvailable reports whether the vips fast path is usable.
func IsVipsAvailable() bool { return false }

// vipsTranscodeJPEG is unavailable without cgo.
func vipsTranscodeJPEG([]byte, float64) ([]byte, error) {
	return nil, errors.New("vips unavailable: built without cgo")
}
