package mediatypes

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Category represents the media category of a payload.
type Category string

const (
	// CategoryAudio represents audio payloads.
	CategoryAudio Category = "audio"
	// CategoryVideo represents video payloads.
	CategoryVideo Category = "video"
	// CategoryImage represents image payloads.
	CategoryImage Category = "image"
	// CategoryOther represents payloads the pipeline does not handle.
	CategoryOther Category = "other"
)

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	// Images
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",

	// Videos
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".3gp":  "video/3gpp",
	".ts":   "video/mp2t",

	// Audio
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".opus": "audio/opus",
	".wma":  "audio/x-ms-wma",
}

// GetMimeType returns the MIME type for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".jpg").
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

// CategoryOf returns the Category for a MIME type based on its top-level
// type. Parameters and suffixes ("audio/ogg; codecs=opus") are ignored.
func CategoryOf(mimeType string) Category {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(mimeType, "/"); idx > 0 {
		switch mimeType[:idx] {
		case "audio":
			return CategoryAudio
		case "video":
			return CategoryVideo
		case "image":
			return CategoryImage
		}
	}
	return CategoryOther
}

// Detect sniffs the MIME type from content. Used when the declared type is
// missing or opaque.
func Detect(data []byte) string {
	return mimetype.Detect(data).String()
}

// Classify resolves the category of a payload, preferring the declared MIME
// type and falling back to content sniffing when the declaration is absent
// or application/octet-stream.
func Classify(mimeType string, data []byte) Category {
	if mimeType != "" && mimeType != "application/octet-stream" {
		return CategoryOf(mimeType)
	}
	if len(data) == 0 {
		return CategoryOther
	}
	return CategoryOf(Detect(data))
}
