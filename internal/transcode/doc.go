// Package transcode implements the media compression pipeline: per-category
// transcoders for audio, image, and video, the codec preference ladder, and
// the dispatcher that classifies payloads, enforces deadlines, and guarantees
// fallback to the original payload on any failure.
package transcode
