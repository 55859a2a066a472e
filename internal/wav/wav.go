package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"mediapress/internal/audio"
)

// HeaderSize is the size of the canonical PCM WAV header in bytes.
const HeaderSize = 44

// formatPCM is the WAVE format tag for uncompressed PCM.
const formatPCM = 1

// Header holds the fields of a parsed PCM WAV header.
type Header struct {
	Channels      int
	SampleRate    int
	BitsPerSample int
	ByteRate      int
	BlockAlign    int
	DataSize      int
}

// IsWAV reports whether data starts with a RIFF/WAVE signature.
func IsWAV(data []byte) bool {
	return len(data) >= 12 &&
		bytes.Equal(data[0:4], []byte("RIFF")) &&
		bytes.Equal(data[8:12], []byte("WAVE"))
}

// bytesPerSample returns the container sample width for a bit depth.
// Depths up to 8 pack into unsigned bytes; everything up to 16 into signed
// little-endian 16-bit words.
func bytesPerSample(bitDepth int) int {
	if bitDepth <= 8 {
		return 1
	}
	return 2
}

// Encode serializes buf into a WAV container at the given bit depth.
// Each float sample is clamped to [-1, 1], scaled by 2^(bitDepth-1)-1, and
// written interleaved: unsigned offset-128 bytes for 8-bit, signed
// little-endian words for 16-bit.
func Encode(buf *audio.SampleBuffer, bitDepth int) ([]byte, error) {
	channels := buf.Channels()
	if channels == 0 || buf.Frames() == 0 {
		return nil, fmt.Errorf("empty sample buffer")
	}
	if bitDepth < 8 || bitDepth > 16 {
		return nil, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	frames := buf.Frames()
	sampleBytes := bytesPerSample(bitDepth)
	blockAlign := channels * sampleBytes
	byteRate := buf.SampleRate * blockAlign
	dataSize := frames * blockAlign

	out := make([]byte, 0, HeaderSize+dataSize)
	w := bytes.NewBuffer(out)

	w.WriteString("RIFF")
	writeU32(w, uint32(36+dataSize))
	w.WriteString("WAVE")

	w.WriteString("fmt ")
	writeU32(w, 16)
	writeU16(w, formatPCM)
	writeU16(w, uint16(channels))
	writeU32(w, uint32(buf.SampleRate))
	writeU32(w, uint32(byteRate))
	writeU16(w, uint16(blockAlign))
	writeU16(w, uint16(bitDepth))

	w.WriteString("data")
	writeU32(w, uint32(dataSize))

	scale := float64(int(1)<<(bitDepth-1) - 1)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			s := float64(buf.Data[ch][i])
			if s > 1 {
				s = 1
			} else if s < -1 {
				s = -1
			}
			v := int(s * scale)

			if sampleBytes == 1 {
				w.WriteByte(byte(v + 128))
			} else {
				writeU16(w, uint16(int16(v)))
			}
		}
	}

	return w.Bytes(), nil
}

// ParseHeader reads the fmt and data chunk fields from a WAV container.
// Chunks other than fmt and data are skipped.
func ParseHeader(data []byte) (*Header, error) {
	if !IsWAV(data) {
		return nil, fmt.Errorf("not a RIFF/WAVE container")
	}

	h := &Header{}
	sawFmt := false
	pos := 12

	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8

		switch id {
		case "fmt ":
			if size < 16 || body+16 > len(data) {
				return nil, fmt.Errorf("truncated fmt chunk")
			}
			format := int(binary.LittleEndian.Uint16(data[body : body+2]))
			if format != formatPCM {
				return nil, fmt.Errorf("unsupported WAVE format tag %d", format)
			}
			h.Channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			h.SampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			h.ByteRate = int(binary.LittleEndian.Uint32(data[body+8 : body+12]))
			h.BlockAlign = int(binary.LittleEndian.Uint16(data[body+12 : body+14]))
			h.BitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			sawFmt = true
		case "data":
			if !sawFmt {
				return nil, fmt.Errorf("data chunk before fmt chunk")
			}
			h.DataSize = size
			return h, nil
		}

		// Chunks are word-aligned.
		pos = body + size + size%2
	}

	return nil, fmt.Errorf("no data chunk found")
}

// Decode parses a PCM WAV container into a sample buffer. 8-bit samples are
// unsigned offset-128; 9- to 16-bit samples are signed little-endian words.
func Decode(data []byte) (*audio.SampleBuffer, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if h.Channels < 1 {
		return nil, fmt.Errorf("invalid channel count %d", h.Channels)
	}
	if h.SampleRate < 1 {
		return nil, fmt.Errorf("invalid sample rate %d", h.SampleRate)
	}
	if h.BitsPerSample < 8 || h.BitsPerSample > 16 {
		return nil, fmt.Errorf("unsupported bit depth %d", h.BitsPerSample)
	}

	body, err := dataChunk(data)
	if err != nil {
		return nil, err
	}
	if len(body) > h.DataSize {
		body = body[:h.DataSize]
	}

	sampleBytes := bytesPerSample(h.BitsPerSample)
	blockAlign := h.Channels * sampleBytes
	frames := len(body) / blockAlign
	if frames == 0 {
		return nil, fmt.Errorf("no sample frames")
	}

	buf := &audio.SampleBuffer{
		SampleRate: h.SampleRate,
		Data:       make([][]float32, h.Channels),
	}
	for ch := range buf.Data {
		buf.Data[ch] = make([]float32, frames)
	}

	scale := float32(int(1)<<(h.BitsPerSample-1) - 1)
	for i := 0; i < frames; i++ {
		base := i * blockAlign
		for ch := 0; ch < h.Channels; ch++ {
			off := base + ch*sampleBytes
			var v float32
			if sampleBytes == 1 {
				v = float32(int(body[off]) - 128)
			} else {
				v = float32(int16(binary.LittleEndian.Uint16(body[off : off+2])))
			}
			buf.Data[ch][i] = v / scale
		}
	}

	return buf, nil
}

// dataChunk returns the payload of the data chunk.
func dataChunk(data []byte) ([]byte, error) {
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8

		if id == "data" {
			end := body + size
			if end > len(data) {
				end = len(data)
			}
			return data[body:end], nil
		}
		pos = body + size + size%2
	}
	return nil, fmt.Errorf("no data chunk found")
}

func writeU16(w *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.Write(b[:])
}

func writeU32(w *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.Write(b[:])
}
