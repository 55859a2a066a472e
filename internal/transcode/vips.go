//go:build cgo

package transcode

import (
	"fmt"
	"sync"

	"mediapress/internal/logging"
	"mediapress/internal/policy"

	"github.com/davidbyttow/govips/v2/vips"
)

var (
	vipsMu        sync.Mutex
	vipsAvailable bool
)

// InitVips starts libvips for the accelerated image path. Call once at
// startup; the pure-Go path is used when this is never called or fails.
func InitVips() {
	vipsMu.Lock()
	defer vipsMu.Unlock()

	if vipsAvailable {
		return
	}

	vips.LoggingSettings(func(domain string, level vips.LogLevel, msg string) {
		switch {
		case level <= vips.LogLevelError:
			logging.Error("[%s] %s", domain, msg)
		case level == vips.LogLevelWarning:
			logging.Warn("[%s] %s", domain, msg)
		default:
			logging.Debug("[%s] %s", domain, msg)
		}
	}, vips.LogLevelWarning)

	// One image at a time; compression runs sequentially anyway.
	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
	})

	vipsAvailable = true
	logging.Info("libvips initialized (version: %s)", vips.Version)
}

// ShutdownVips releases libvips resources.
func ShutdownVips() {
	vipsMu.Lock()
	defer vipsMu.Unlock()

	if vipsAvailable {
		vips.Shutdown()
		vipsAvailable = false
	}
}

// IsVipsAvailable reports whether the vips fast path is usable.
func IsVipsAvailable() bool {
	vipsMu.Lock()
	defer vipsMu.Unlock()
	return vipsAvailable
}

// vipsTranscodeJPEG decodes, resizes per policy, and re-encodes an image in
// one libvips pipeline, returning the finished JPEG bytes.
func vipsTranscodeJPEG(data []byte, quality float64) ([]byte, error) {
	ref, err := vips.LoadImageFromBuffer(data, vips.NewImportParams())
	if err != nil {
		return nil, fmt.Errorf("vips load: %w", err)
	}
	defer ref.Close()

	plan := policy.PlanDimensions(ref.Width(), ref.Height(), quality, policy.MaxImageDimension)
	if err := ref.Thumbnail(plan.Width, plan.Height, vips.InterestingNone); err != nil {
		return nil, fmt.Errorf("vips resize: %w", err)
	}

	out, _, err := ref.ExportJpeg(&vips.JpegExportParams{
		Quality:        jpegQuality(quality),
		OptimizeCoding: true,
	})
	if err != nil {
		return nil, fmt.Errorf("vips export: %w", err)
	}
	return out, nil
}
