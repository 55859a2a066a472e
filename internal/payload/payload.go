package payload

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mediapress/internal/mediatypes"
)

// Payload is a file-like media payload: a display name, a declared MIME
// type, a declared byte length, and an opaque byte source. Payloads are
// immutable; transformations produce new ones.
type Payload struct {
	Name string
	MIME string
	Size int64

	open func() (io.ReadCloser, error)
}

// New creates a payload over an arbitrary byte source. The size is the
// declared length and is trusted by eligibility checks without reading the
// source.
func New(name, mime string, size int64, open func() (io.ReadCloser, error)) *Payload {
	return &Payload{Name: name, MIME: mime, Size: size, open: open}
}

// FromBytes creates an in-memory payload. The data is not copied; callers
// must not mutate it afterwards.
func FromBytes(name, mime string, data []byte) *Payload {
	return &Payload{
		Name: name,
		MIME: mime,
		Size: int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// FromFile creates a payload backed by a file on disk. The MIME type is
// derived from the extension.
func FromFile(path string) (*Payload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	return &Payload{
		Name: filepath.Base(path),
		MIME: mediatypes.GetMimeType(ext),
		Size: info.Size(),
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// Open returns a fresh reader over the payload bytes. Each call returns an
// independent reader positioned at the start.
func (p *Payload) Open() (io.ReadCloser, error) {
	if p.open == nil {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return p.open()
}

// ReplaceExt returns name with its extension replaced. The new extension
// must include the leading dot.
func ReplaceExt(name, ext string) string {
	old := filepath.Ext(name)
	return strings.TrimSuffix(name, old) + ext
}
