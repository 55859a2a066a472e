package audio

import (
	"context"
	"fmt"
)

// SampleBuffer holds decoded audio as one float32 slice per channel.
// Samples are nominally in [-1, 1]; out-of-range values are clamped at
// serialization time, not here.
type SampleBuffer struct {
	SampleRate int
	Data       [][]float32
}

// Channels returns the number of channels in the buffer.
func (b *SampleBuffer) Channels() int {
	return len(b.Data)
}

// Frames returns the number of sample frames per channel.
func (b *SampleBuffer) Frames() int {
	if len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

// Duration returns the buffer length in seconds.
func (b *SampleBuffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// ctxCheckInterval is how many output frames are rendered between context
// checks.
const ctxCheckInterval = 1 << 16

// RenderOffline re-synthesizes src at the target channel count and sample
// rate, producing a new buffer of floor(duration*targetRate) frames. Wider
// sources are downmixed first; resampling is linear interpolation. The
// context is checked periodically so a deadline tears the render down
// mid-buffer.
func RenderOffline(ctx context.Context, src *SampleBuffer, targetChannels, targetRate int) (*SampleBuffer, error) {
	if src.Channels() == 0 || src.Frames() == 0 {
		return nil, fmt.Errorf("empty sample buffer")
	}
	if src.SampleRate <= 0 || targetRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: src=%d target=%d", src.SampleRate, targetRate)
	}
	if targetChannels <= 0 || targetChannels > src.Channels() {
		targetChannels = src.Channels()
	}

	mixed := downmix(src, targetChannels)

	outFrames := int(mixed.Duration() * float64(targetRate))
	if outFrames < 1 {
		outFrames = 1
	}

	out := &SampleBuffer{
		SampleRate: targetRate,
		Data:       make([][]float32, targetChannels),
	}

	step := float64(mixed.SampleRate) / float64(targetRate)
	srcFrames := mixed.Frames()

	for ch := 0; ch < targetChannels; ch++ {
		in := mixed.Data[ch]
		resampled := make([]float32, outFrames)

		for i := 0; i < outFrames; i++ {
			if i%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}

			pos := float64(i) * step
			i0 := int(pos)
			if i0 >= srcFrames-1 {
				resampled[i] = in[srcFrames-1]
				continue
			}
			frac := float32(pos - float64(i0))
			resampled[i] = in[i0]*(1-frac) + in[i0+1]*frac
		}
		out.Data[ch] = resampled
	}

	return out, nil
}

// downmix folds src into at most targetChannels channels. Source channel i
// contributes to output channel i%targetChannels; each output channel is the
// mean of its contributors. With targetChannels=2 this folds surround
// layouts into stereo; mono and stereo sources pass through untouched.
func downmix(src *SampleBuffer, targetChannels int) *SampleBuffer {
	if src.Channels() <= targetChannels {
		return src
	}

	frames := src.Frames()
	out := &SampleBuffer{
		SampleRate: src.SampleRate,
		Data:       make([][]float32, targetChannels),
	}

	counts := make([]int, targetChannels)
	for ch := 0; ch < src.Channels(); ch++ {
		counts[ch%targetChannels]++
	}

	for ch := 0; ch < targetChannels; ch++ {
		out.Data[ch] = make([]float32, frames)
	}
	for ch := 0; ch < src.Channels(); ch++ {
		dst := out.Data[ch%targetChannels]
		for i, s := range src.Data[ch] {
			dst[i] += s
		}
	}
	for ch := 0; ch < targetChannels; ch++ {
		n := float32(counts[ch])
		for i := range out.Data[ch] {
			out.Data[ch][i] /= n
		}
	}

	return out
}
