package transcode

// Choice is one rung of the codec preference ladder: an encoder bound to a
// container, with the output naming that goes with it.
type Choice struct {
	// Codec is the ffmpeg encoder name; empty means the container default.
	Codec string
	// Container is the output format name.
	Container string
	// MIME is the MIME type of the produced payload.
	MIME string
	// Ext is the file extension for the produced payload, with leading dot.
	Ext string
}

// DefaultLadder is the codec preference order: modern codec in an open
// container first, then the legacy open codec, the open container default,
// and finally the proprietary container.
var DefaultLadder = []Choice{
	{Codec: "libvpx-vp9", Container: "webm", MIME: "video/webm", Ext: ".webm"},
	{Codec: "libvpx", Container: "webm", MIME: "video/webm", Ext: ".webm"},
	{Codec: "", Container: "webm", MIME: "video/webm", Ext: ".webm"},
	{Codec: "libx264", Container: "mp4", MIME: "video/mp4", Ext: ".mp4"},
}

// Negotiate probes the ladder in order and returns the first supported
// rung. ErrNoCodecSupport when nothing matches.
func Negotiate(supported func(Choice) bool, ladder []Choice) (Choice, error) {
	for _, c := range ladder {
		if supported(c) {
			return c, nil
		}
	}
	return Choice{}, ErrNoCodecSupport
}

// EncoderProber builds a ladder probe over the set of encoder names the
// local ffmpeg build supports. Container-default rungs pass when any of the
// container's stock encoders is present.
func EncoderProber(encoders map[string]bool) func(Choice) bool {
	return func(c Choice) bool {
		if c.Codec != "" {
			return encoders[c.Codec]
		}
		switch c.Container {
		case "webm":
			return encoders["libvpx"] || encoders["libvpx-vp9"]
		case "mp4":
			return encoders["libx264"] || encoders["mpeg4"]
		}
		return false
	}
}
