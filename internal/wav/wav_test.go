package wav

import (
	"encoding/binary"
	"math"
	"testing"

	"mediapress/internal/audio"
)

// sineBuffer builds a stereo sine-wave buffer for round-trip tests.
func sineBuffer(sampleRate, frames int) *audio.SampleBuffer {
	left := make([]float32, frames)
	right := make([]float32, frames)
	for i := range left {
		left[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / float64(sampleRate)))
		right[i] = float32(math.Sin(2 * math.Pi * 880 * float64(i) / float64(sampleRate)))
	}
	return &audio.SampleBuffer{SampleRate: sampleRate, Data: [][]float32{left, right}}
}

func TestEncodeHeaderRoundTrip(t *testing.T) {
	buf := sineBuffer(44100, 44100)

	data, err := Encode(buf, 16)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	h, err := ParseHeader(data)
	if err != nil {
		t.Fatalf("ParseHeader() error: %v", err)
	}

	wantData := 44100 * 2 * 2 // frames * channels * bytes
	if h.Channels != 2 {
		t.Errorf("Channels = %d, want 2", h.Channels)
	}
	if h.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", h.SampleRate)
	}
	if h.BitsPerSample != 16 {
		t.Errorf("BitsPerSample = %d, want 16", h.BitsPerSample)
	}
	if h.ByteRate != 44100*2*2 {
		t.Errorf("ByteRate = %d, want %d", h.ByteRate, 44100*2*2)
	}
	if h.BlockAlign != 4 {
		t.Errorf("BlockAlign = %d, want 4", h.BlockAlign)
	}
	if h.DataSize != wantData {
		t.Errorf("DataSize = %d, want %d", h.DataSize, wantData)
	}
	if len(data) != HeaderSize+wantData {
		t.Errorf("len(data) = %d, want %d", len(data), HeaderSize+wantData)
	}

	// RIFF chunk size covers everything after the first 8 bytes.
	riffSize := int(binary.LittleEndian.Uint32(data[4:8]))
	if riffSize != 36+wantData {
		t.Errorf("RIFF size = %d, want %d", riffSize, 36+wantData)
	}
}

func TestEncodeHeaderBytes(t *testing.T) {
	buf := &audio.SampleBuffer{SampleRate: 22050, Data: [][]float32{{0, 0.5, -0.5, 1}}}

	data, err := Encode(buf, 8)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE signature")
	}
	if string(data[12:16]) != "fmt " || string(data[36:40]) != "data" {
		t.Error("missing fmt/data chunk markers")
	}
	if got := binary.LittleEndian.Uint32(data[16:20]); got != 16 {
		t.Errorf("fmt chunk size = %d, want 16", got)
	}
	if got := binary.LittleEndian.Uint16(data[20:22]); got != 1 {
		t.Errorf("format tag = %d, want 1 (PCM)", got)
	}

	// 8-bit samples are unsigned with a 128 offset: 0 -> 128, 1.0 -> 255.
	samples := data[HeaderSize:]
	if samples[0] != 128 {
		t.Errorf("sample 0 = %d, want 128", samples[0])
	}
	if samples[3] != 255 {
		t.Errorf("sample 3 = %d, want 255", samples[3])
	}
}

func TestEncodeClampsOutOfRange(t *testing.T) {
	buf := &audio.SampleBuffer{SampleRate: 8000, Data: [][]float32{{2.0, -2.0}}}

	data, err := Encode(buf, 16)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	s0 := int16(binary.LittleEndian.Uint16(data[HeaderSize : HeaderSize+2]))
	s1 := int16(binary.LittleEndian.Uint16(data[HeaderSize+2 : HeaderSize+4]))
	if s0 != 32767 {
		t.Errorf("clipped positive sample = %d, want 32767", s0)
	}
	if s1 != -32767 {
		t.Errorf("clipped negative sample = %d, want -32767", s1)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	src := sineBuffer(44100, 4410)

	data, err := Encode(src, 16)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	if got.SampleRate != src.SampleRate {
		t.Errorf("SampleRate = %d, want %d", got.SampleRate, src.SampleRate)
	}
	if got.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", got.Channels())
	}
	if got.Frames() != src.Frames() {
		t.Errorf("Frames() = %d, want %d", got.Frames(), src.Frames())
	}

	// 16-bit quantization error is bounded by 1/32767.
	for i := 0; i < src.Frames(); i += 100 {
		diff := math.Abs(float64(got.Data[0][i] - src.Data[0][i]))
		if diff > 1.0/32000 {
			t.Fatalf("frame %d: decoded %v, source %v", i, got.Data[0][i], src.Data[0][i])
		}
	}
}

func TestDecodeSkipsUnknownChunks(t *testing.T) {
	src := &audio.SampleBuffer{SampleRate: 8000, Data: [][]float32{{0.25, -0.25}}}
	data, err := Encode(src, 16)
	if err != nil {
		t.Fatal(err)
	}

	// Splice a LIST chunk between fmt and data.
	list := append([]byte("LIST"), 0x04, 0, 0, 0, 'I', 'N', 'F', 'O')
	spliced := append([]byte{}, data[:36]...)
	spliced = append(spliced, list...)
	spliced = append(spliced, data[36:]...)
	binary.LittleEndian.PutUint32(spliced[4:8], uint32(len(spliced)-8))

	got, err := Decode(spliced)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got.Frames() != 2 {
		t.Errorf("Frames() = %d, want 2", got.Frames())
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"Empty", nil},
		{"NotRIFF", []byte("this is definitely not a wav file")},
		{"TruncatedHeader", []byte("RIFF\x00\x00\x00\x00WAVE")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEncodeErrors(t *testing.T) {
	empty := &audio.SampleBuffer{SampleRate: 44100}
	if _, err := Encode(empty, 16); err == nil {
		t.Error("expected error for empty buffer")
	}

	buf := &audio.SampleBuffer{SampleRate: 44100, Data: [][]float32{{0.1}}}
	if _, err := Encode(buf, 4); err == nil {
		t.Error("expected error for bit depth below 8")
	}
	if _, err := Encode(buf, 24); err == nil {
		t.Error("expected error for bit depth above 16")
	}
}

func TestIsWAV(t *testing.T) {
	buf := &audio.SampleBuffer{SampleRate: 8000, Data: [][]float32{{0}}}
	data, _ := Encode(buf, 8)

	if !IsWAV(data) {
		t.Error("IsWAV() = false for encoded WAV")
	}
	if IsWAV([]byte("RIFFxxxxAVI ")) {
		t.Error("IsWAV() = true for AVI container")
	}
	if IsWAV(nil) {
		t.Error("IsWAV() = true for nil")
	}
}
