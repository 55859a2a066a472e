package audio

import (
	"context"
	"math"
	"testing"
	"time"
)

// sine generates one channel of a pure tone.
func sine(freq float64, sampleRate, frames int) []float32 {
	out := make([]float32, frames)
	for i := range out {
		out[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate)))
	}
	return out
}

func TestSampleBufferAccessors(t *testing.T) {
	buf := &SampleBuffer{
		SampleRate: 44100,
		Data:       [][]float32{make([]float32, 44100), make([]float32, 44100)},
	}

	if buf.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", buf.Channels())
	}
	if buf.Frames() != 44100 {
		t.Errorf("Frames() = %d, want 44100", buf.Frames())
	}
	if buf.Duration() != 1.0 {
		t.Errorf("Duration() = %v, want 1.0", buf.Duration())
	}
}

func TestRenderOfflineResamples(t *testing.T) {
	src := &SampleBuffer{
		SampleRate: 44100,
		Data:       [][]float32{sine(440, 44100, 44100)},
	}

	out, err := RenderOffline(context.Background(), src, 1, 22050)
	if err != nil {
		t.Fatalf("RenderOffline() error: %v", err)
	}

	if out.SampleRate != 22050 {
		t.Errorf("SampleRate = %d, want 22050", out.SampleRate)
	}
	if out.Channels() != 1 {
		t.Errorf("Channels() = %d, want 1", out.Channels())
	}
	// floor(1.0s * 22050) frames
	if out.Frames() != 22050 {
		t.Errorf("Frames() = %d, want 22050", out.Frames())
	}

	// Every other source sample should line up closely after 2:1 decimation.
	for i := 0; i < 100; i++ {
		want := src.Data[0][i*2]
		got := out.Data[0][i]
		if math.Abs(float64(got-want)) > 0.01 {
			t.Fatalf("frame %d: resampled %v, source %v", i, got, want)
		}
	}
}

func TestRenderOfflineMonoPassesThrough(t *testing.T) {
	src := &SampleBuffer{
		SampleRate: 22050,
		Data:       [][]float32{sine(220, 22050, 22050)},
	}

	out, err := RenderOffline(context.Background(), src, 1, 22050)
	if err != nil {
		t.Fatalf("RenderOffline() error: %v", err)
	}
	if out.Channels() != 1 {
		t.Errorf("mono input became %d channels", out.Channels())
	}
	if out.Frames() != src.Frames() {
		t.Errorf("Frames() = %d, want %d", out.Frames(), src.Frames())
	}
}

func TestRenderOfflineDownmixesSurround(t *testing.T) {
	frames := 1024
	data := make([][]float32, 6)
	for ch := range data {
		channel := make([]float32, frames)
		for i := range channel {
			channel[i] = float32(ch) / 10
		}
		data[ch] = channel
	}
	src := &SampleBuffer{SampleRate: 48000, Data: data}

	out, err := RenderOffline(context.Background(), src, 2, 48000)
	if err != nil {
		t.Fatalf("RenderOffline() error: %v", err)
	}

	if out.Channels() != 2 {
		t.Fatalf("Channels() = %d, want 2", out.Channels())
	}

	// Channels 0,2,4 fold into left; 1,3,5 into right.
	wantLeft := float32(0+2+4) / 10 / 3
	wantRight := float32(1+3+5) / 10 / 3
	if got := out.Data[0][0]; math.Abs(float64(got-wantLeft)) > 1e-6 {
		t.Errorf("left[0] = %v, want %v", got, wantLeft)
	}
	if got := out.Data[1][0]; math.Abs(float64(got-wantRight)) > 1e-6 {
		t.Errorf("right[0] = %v, want %v", got, wantRight)
	}
}

func TestRenderOfflineHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &SampleBuffer{
		SampleRate: 44100,
		Data:       [][]float32{make([]float32, 44100 * 10)},
	}

	if _, err := RenderOffline(ctx, src, 1, 44100); err == nil {
		t.Error("expected error from canceled context")
	}
}

func TestRenderOfflineHonorsDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	src := &SampleBuffer{
		SampleRate: 44100,
		Data:       [][]float32{make([]float32, 44100)},
	}

	if _, err := RenderOffline(ctx, src, 1, 22050); err == nil {
		t.Error("expected error from expired deadline")
	}
}

func TestRenderOfflineRejectsEmptyBuffer(t *testing.T) {
	tests := []struct {
		name string
		src  *SampleBuffer
	}{
		{"NoChannels", &SampleBuffer{SampleRate: 44100}},
		{"NoFrames", &SampleBuffer{SampleRate: 44100, Data: [][]float32{{}}}},
		{"BadRate", &SampleBuffer{SampleRate: 0, Data: [][]float32{{0.5}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RenderOffline(context.Background(), tt.src, 2, 22050); err == nil {
				t.Error("expected error")
			}
		})
	}
}
