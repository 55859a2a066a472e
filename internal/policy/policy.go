package policy

import (
	"math"

	"mediapress/internal/mediatypes"
)

const (
	// MinWidth is the smallest width a dimension plan will produce.
	MinWidth = 320
	// MinHeight is the smallest height a dimension plan will produce.
	MinHeight = 240

	// MaxImageDimension is the longest axis allowed for re-encoded images.
	MaxImageDimension = 2048
	// MaxVideoDimension is the longest axis allowed for re-encoded video.
	MaxVideoDimension = 1280

	// MaxVideoFPS caps the frame rate fed to the video encoder.
	MaxVideoFPS = 24

	// MinSampleRate is the floor for resampled audio.
	MinSampleRate = 22050
	// MinBitDepth is the floor for reduced audio bit depth.
	MinBitDepth = 8
	// MaxChannels caps audio output channels; wider sources are downmixed.
	MaxChannels = 2

	// MinSourceBytes is the size below which compression is not worth the
	// overhead.
	MinSourceBytes = 1 << 20
	// MaxSourceBytes is the size above which compression is refused outright.
	MaxSourceBytes = 1 << 30
)

// Tunable policy constants. The values are inherited behavior with no deeper
// rationale, so they are variables rather than consts.
var (
	// MaxVideoSourceBytes is the ceiling above which video sources are
	// shipped as-is without attempting transcoding.
	MaxVideoSourceBytes = int64(500 << 20)

	// IneffectiveRatio is the output/input size ratio at or above which a
	// transcoded video is discarded in favor of the original.
	IneffectiveRatio = 0.95
)

// DimensionPlan is the target raster size for an image or video transcode.
// Both axes are even and within [MinWidth x MinHeight, maxDimension].
type DimensionPlan struct {
	Width  int
	Height int
}

// PlanDimensions derives the target dimensions for a source of
// origWidth x origHeight at the given quality. The quality scale is
// sqrt(quality) so that the pixel count scales roughly linearly with
// quality. If either scaled axis exceeds maxDimension, both are re-derived
// from the original aspect ratio with the longer side pinned to
// maxDimension. Odd axes are decremented; each axis is then clamped to its
// floor.
func PlanDimensions(origWidth, origHeight int, quality float64, maxDimension int) DimensionPlan {
	scale := math.Sqrt(quality)
	width := int(float64(origWidth) * scale)
	height := int(float64(origHeight) * scale)

	if width > maxDimension || height > maxDimension {
		if origWidth >= origHeight {
			width = maxDimension
			height = int(float64(maxDimension) * float64(origHeight) / float64(origWidth))
		} else {
			height = maxDimension
			width = int(float64(maxDimension) * float64(origWidth) / float64(origHeight))
		}
	}

	// Encoders reject odd dimensions for chroma-subsampled formats.
	if width%2 != 0 {
		width--
	}
	if height%2 != 0 {
		height--
	}

	if width < MinWidth {
		width = MinWidth
	}
	if height < MinHeight {
		height = MinHeight
	}

	return DimensionPlan{Width: width, Height: height}
}

// PlanBitrate derives the target video bitrate in bits per second for the
// planned dimensions at the given quality.
func PlanBitrate(plan DimensionPlan, quality float64) int {
	return int(float64(plan.Width) * float64(plan.Height) * 0.1 * (0.5 + 0.5*quality))
}

// AudioRenderPlan is the target shape of an offline audio render.
type AudioRenderPlan struct {
	Channels   int
	SampleRate int
	BitDepth   int
}

// PlanAudio derives the offline render parameters for a source with the
// given channel count and sample rate at the given quality.
func PlanAudio(srcChannels, srcSampleRate int, quality float64) AudioRenderPlan {
	channels := srcChannels
	if channels > MaxChannels {
		channels = MaxChannels
	}

	sampleRate := int(float64(srcSampleRate) * quality)
	if sampleRate < MinSampleRate {
		sampleRate = MinSampleRate
	}

	bitDepth := int(16 * quality)
	if bitDepth < MinBitDepth {
		bitDepth = MinBitDepth
	}

	return AudioRenderPlan{Channels: channels, SampleRate: sampleRate, BitDepth: bitDepth}
}

// IsEligibleCategory reports whether the MIME type's top-level category is
// one the pipeline can compress.
func IsEligibleCategory(mimeType string) bool {
	switch mediatypes.CategoryOf(mimeType) {
	case mediatypes.CategoryAudio, mediatypes.CategoryVideo, mediatypes.CategoryImage:
		return true
	}
	return false
}

// ShouldAttempt reports whether a payload of the given size is worth
// compressing. Below MinSourceBytes the overhead outweighs the savings;
// above MaxSourceBytes compression is refused.
func ShouldAttempt(sizeBytes int64) bool {
	return sizeBytes >= MinSourceBytes && sizeBytes <= MaxSourceBytes
}

// EstimateCompressedSize gives the non-binding size preview shown before
// compression runs.
func EstimateCompressedSize(originalSize int64, quality float64) int64 {
	return int64(float64(originalSize) * quality)
}
