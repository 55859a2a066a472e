package transcode

import (
	"context"
	"fmt"
	"image"
	"io"
	"time"

	"mediapress/internal/ffmpeg"
	"mediapress/internal/logging"
	"mediapress/internal/payload"
	"mediapress/internal/policy"
	"mediapress/internal/progress"

	"github.com/disintegration/imaging"
)

const (
	videoReadTimeout     = 30 * time.Second
	videoMetadataTimeout = 30 * time.Second

	// minVideoDeadline is the floor for the whole-video compression budget;
	// the budget is max of this and twice the source duration.
	minVideoDeadline = 60 * time.Second
)

// TranscodeVideo re-encodes a video payload through the negotiated codec at
// policy-derived dimensions and bitrate. The source's frames are decoded,
// gated to at most MaxVideoFPS, rescaled onto the target raster, and fed to
// a chunked streaming encoder. An output that is not meaningfully smaller
// than the input fails with ErrIneffective so the caller ships the original.
func TranscodeVideo(ctx context.Context, p *payload.Payload, quality float64, report progress.Sink) (*payload.Payload, error) {
	report(0, "reading video")
	data, err := readAllTimeout(ctx, p, videoReadTimeout, ErrReadTimeout)
	if err != nil {
		return nil, err
	}

	report(5, "loading metadata")
	mctx, cancel := context.WithTimeout(ctx, videoMetadataTimeout)
	info, err := ffmpeg.Probe(mctx, data)
	cancel()
	if err != nil {
		if mctx.Err() != nil {
			return nil, ErrMetadataTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrPlayback, err)
	}
	if !info.HasVideo || info.Width < 1 || info.Height < 1 {
		return nil, fmt.Errorf("%w: no video stream", ErrPlayback)
	}

	plan := policy.PlanDimensions(info.Width, info.Height, quality, policy.MaxVideoDimension)
	bitrate := policy.PlanBitrate(plan, quality)

	report(8, "negotiating codec")
	encoders, err := ffmpeg.Encoders(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCodecSupport, err)
	}
	choice, err := Negotiate(EncoderProber(encoders), DefaultLadder)
	if err != nil {
		return nil, err
	}

	targetFPS := policy.MaxVideoFPS
	if info.FrameRate > 0 && info.FrameRate < float64(targetFPS) {
		targetFPS = int(info.FrameRate)
		if targetFPS < 1 {
			targetFPS = 1
		}
	}

	// The whole pass gets a budget of at least a minute, or twice the
	// source duration for long material.
	budget := minVideoDeadline
	if d := time.Duration(2 * info.Duration * float64(time.Second)); d > budget {
		budget = d
	}
	vctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	dec, err := ffmpeg.NewFrameDecoder(vctx, data, info.Width, info.Height)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlayback, err)
	}
	defer dec.Close()

	enc := ffmpeg.NewChunkEncoder(ffmpeg.EncoderConfig{
		Width:      plan.Width,
		Height:     plan.Height,
		FrameRate:  targetFPS,
		Bitrate:    bitrate,
		VideoCodec: choice.Codec,
		Container:  choice.Container,
	})

	out, err := runVideoPipeline(vctx, dec, enc, info, plan, targetFPS, report)
	if err != nil {
		if vctx.Err() != nil {
			return nil, ErrCompressionTimeout
		}
		return nil, err
	}

	if float64(len(out)) >= policy.IneffectiveRatio*float64(p.Size) {
		logging.Info("transcoded %s to %d bytes (>= %.0f%% of %d), keeping original",
			p.Name, len(out), policy.IneffectiveRatio*100, p.Size)
		return nil, ErrIneffective
	}

	report(100, "video ready")
	return payload.FromBytes(payload.ReplaceExt(p.Name, choice.Ext), choice.MIME, out), nil
}

// frameSource yields decoded frames in presentation order. io.EOF ends the
// stream.
type frameSource interface {
	Next() ([]byte, error)
	Close() error
}

// frameSink is the streaming encoder side of the pipeline.
type frameSink interface {
	Start(ctx context.Context) error
	WriteFrame(frame []byte) error
	Stop() error
	Abort()
	Result() ([]byte, error)
}

// runVideoPipeline drives decode -> gate -> rescale -> encode and returns
// the assembled output container.
func runVideoPipeline(ctx context.Context, dec frameSource, enc frameSink, info *ffmpeg.Info,
	plan policy.DimensionPlan, targetFPS int, report progress.Sink) ([]byte, error) {

	if err := enc.Start(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoder, err)
	}

	report(12, "transcoding frames")

	clock := NewStreamClock(info.FrameRate)
	gate := NewGate(targetFPS)
	lastPct := 12

	for {
		if ctx.Err() != nil {
			enc.Abort()
			return nil, ErrCompressionTimeout
		}

		frame, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A broken decode stream must not ship a truncated video;
			// the caller falls back to the original.
			enc.Abort()
			return nil, fmt.Errorf("%w: %v", ErrPlayback, err)
		}

		ts, ok := clock.Next()
		if !ok {
			break
		}
		if !gate.Admit(ts) {
			continue
		}

		scaled, err := scaleFrame(frame, info.Width, info.Height, plan)
		if err != nil {
			// Per-frame draw errors are non-fatal; skip and keep going.
			logging.Warn("frame draw failed at %v: %v", ts, err)
			continue
		}

		if err := enc.WriteFrame(scaled); err != nil {
			enc.Abort()
			return nil, fmt.Errorf("%w: %v", ErrEncoder, err)
		}

		if info.Duration > 0 {
			if pct := 12 + int(ts.Seconds()/info.Duration*78); pct >= lastPct+10 {
				lastPct = pct
				report(pct, "transcoding frames")
			}
		}
	}

	report(92, "finalizing")
	if err := enc.Stop(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoder, err)
	}

	out, err := enc.Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoder, err)
	}
	return out, nil
}

// scaleFrame draws one packed RGBA frame onto the target raster size.
func scaleFrame(frame []byte, srcWidth, srcHeight int, plan policy.DimensionPlan) ([]byte, error) {
	if len(frame) != srcWidth*srcHeight*4 {
		return nil, fmt.Errorf("frame is %d bytes, want %d", len(frame), srcWidth*srcHeight*4)
	}

	if srcWidth == plan.Width && srcHeight == plan.Height {
		return frame, nil
	}

	src := &image.RGBA{
		Pix:    frame,
		Stride: srcWidth * 4,
		Rect:   image.Rect(0, 0, srcWidth, srcHeight),
	}
	resized := imaging.Resize(src, plan.Width, plan.Height, imaging.Lanczos)
	return resized.Pix, nil
}
