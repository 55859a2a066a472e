package transcode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mediapress/internal/audio"
	"mediapress/internal/ffmpeg"
	"mediapress/internal/payload"
	"mediapress/internal/policy"
	"mediapress/internal/progress"
	"mediapress/internal/wav"
)

const (
	audioReadTimeout   = 30 * time.Second
	audioDecodeTimeout = 30 * time.Second
	audioRenderTimeout = 60 * time.Second
)

// TranscodeAudio re-encodes an audio payload as uncompressed PCM WAV at a
// quality-reduced sample rate and bit depth. WAV sources decode natively;
// everything else goes through ffmpeg.
func TranscodeAudio(ctx context.Context, p *payload.Payload, quality float64, report progress.Sink) (*payload.Payload, error) {
	report(0, "reading audio")
	data, err := readAllTimeout(ctx, p, audioReadTimeout, ErrReadTimeout)
	if err != nil {
		return nil, err
	}

	report(15, "decoding audio")
	buf, err := decodeAudioTimeout(ctx, data)
	if err != nil {
		return nil, err
	}

	plan := policy.PlanAudio(buf.Channels(), buf.SampleRate, quality)

	report(45, "rendering audio")
	rctx, cancel := context.WithTimeout(ctx, audioRenderTimeout)
	defer cancel()
	rendered, err := audio.RenderOffline(rctx, buf, plan.Channels, plan.SampleRate)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, ErrRenderTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	report(80, "encoding wav")
	out, err := wav.Encode(rendered, plan.BitDepth)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	report(100, "audio ready")
	return payload.FromBytes(payload.ReplaceExt(p.Name, ".wav"), "audio/wav", out), nil
}

// decodeAudioTimeout decodes payload bytes into a sample buffer under the
// audio decode deadline.
func decodeAudioTimeout(ctx context.Context, data []byte) (*audio.SampleBuffer, error) {
	if wav.IsWAV(data) {
		buf, err := wav.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return buf, nil
	}

	if !ffmpeg.Available() {
		return nil, fmt.Errorf("%w: no decoder for compressed audio", ErrDecode)
	}

	dctx, cancel := context.WithTimeout(ctx, audioDecodeTimeout)
	defer cancel()

	info, err := ffmpeg.Probe(dctx, data)
	if err != nil {
		if dctx.Err() != nil {
			return nil, ErrDecodeTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if !info.HasAudio || info.Channels < 1 || info.SampleRate < 1 {
		return nil, fmt.Errorf("%w: no audio stream", ErrDecode)
	}

	buf, err := ffmpeg.DecodeAudio(dctx, data, info.Channels, info.SampleRate)
	if err != nil {
		if dctx.Err() != nil {
			return nil, ErrDecodeTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return buf, nil
}
