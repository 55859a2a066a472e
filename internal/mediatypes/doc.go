// Package mediatypes classifies media payloads into the categories the
// compression pipeline understands (audio, video, image, other) based on
// declared MIME types, file extensions, and content sniffing.
package mediatypes
