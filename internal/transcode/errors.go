package transcode

import "errors"

// Sentinel errors raised inside transcoders. Every one of these is absorbed
// at the dispatcher boundary and converted into a fallback to the original
// payload; none reaches the caller.
var (
	// ErrDecode indicates a corrupt or unsupported payload.
	ErrDecode = errors.New("media decode failed")

	// ErrEncode indicates the re-encode step failed.
	ErrEncode = errors.New("media encode failed")

	// ErrPlayback indicates video decode could not be started.
	ErrPlayback = errors.New("video playback failed to start")

	// ErrEncoder indicates a runtime failure in the streaming encoder.
	ErrEncoder = errors.New("video encoder failed")

	// ErrNoCodecSupport indicates no entry of the codec preference ladder is
	// available.
	ErrNoCodecSupport = errors.New("no supported encoder codec")

	// ErrIneffective indicates transcoding finished but did not shrink the
	// payload enough to be worth shipping.
	ErrIneffective = errors.New("compression ineffective")

	// ErrMetadataTimeout indicates the metadata probe exceeded its deadline.
	ErrMetadataTimeout = errors.New("timed out loading media metadata")

	// ErrReadTimeout indicates reading the payload exceeded its deadline.
	ErrReadTimeout = errors.New("timed out reading payload")

	// ErrDecodeTimeout indicates decoding exceeded its deadline.
	ErrDecodeTimeout = errors.New("timed out decoding media")

	// ErrRenderTimeout indicates the offline audio render exceeded its
	// deadline.
	ErrRenderTimeout = errors.New("timed out rendering audio")

	// ErrCompressionTimeout indicates the whole video compression pass
	// exceeded its deadline.
	ErrCompressionTimeout = errors.New("timed out compressing media")
)

// IsTimeout reports whether err is one of the timeout variants.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrMetadataTimeout) ||
		errors.Is(err, ErrReadTimeout) ||
		errors.Is(err, ErrDecodeTimeout) ||
		errors.Is(err, ErrRenderTimeout) ||
		errors.Is(err, ErrCompressionTimeout)
}
