package ffmpeg

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"

	"mediapress/internal/audio"
)

// DecodeAudio decodes the payload's audio stream into a planar float32
// sample buffer at its native channel count and sample rate. channels and
// sampleRate come from a prior Probe call and describe the raw f32le stream
// ffmpeg emits.
func DecodeAudio(ctx context.Context, data []byte, channels, sampleRate int) (*audio.SampleBuffer, error) {
	if channels < 1 || sampleRate < 1 {
		return nil, fmt.Errorf("invalid audio shape: %d channels at %d Hz", channels, sampleRate)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-i", "pipe:0",
		"-vn",
		"-f", "f32le",
		"-acodec", "pcm_f32le",
		"pipe:1",
	)
	cmd.Stdin = bytes.NewReader(data)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ffmpeg audio decode: %w - %s", err, stderr.String())
	}

	raw := stdout.Bytes()
	frames := len(raw) / (4 * channels)
	if frames == 0 {
		return nil, fmt.Errorf("decoded no audio frames")
	}

	buf := &audio.SampleBuffer{
		SampleRate: sampleRate,
		Data:       make([][]float32, channels),
	}
	for ch := range buf.Data {
		buf.Data[ch] = make([]float32, frames)
	}

	for i := 0; i < frames; i++ {
		base := i * 4 * channels
		for ch := 0; ch < channels; ch++ {
			bits := binary.LittleEndian.Uint32(raw[base+ch*4 : base+ch*4+4])
			buf.Data[ch][i] = math.Float32frombits(bits)
		}
	}

	return buf, nil
}
