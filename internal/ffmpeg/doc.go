// Package ffmpeg wraps the ffmpeg and ffprobe binaries for the decode and
// encode primitives the transcoders need: stream metadata, raw audio sample
// extraction, raw RGBA frame extraction, and chunked streaming encoding.
// All input and output flows over pipes; no temporary files are written.
package ffmpeg
