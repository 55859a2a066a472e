package transcode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"mediapress/internal/logging"
	"mediapress/internal/mediatypes"
	"mediapress/internal/metrics"
	"mediapress/internal/payload"
	"mediapress/internal/policy"
	"mediapress/internal/progress"
)

const (
	// minDeadline and maxDeadline clamp the per-call compression budget,
	// which otherwise scales with payload size at one millisecond per KiB.
	minDeadline = 60 * time.Second
	maxDeadline = 300 * time.Second

	// sniffLen is how many leading bytes are read for MIME sniffing when a
	// payload has no usable declared type.
	sniffLen = 3072
)

// Transcoder converts one payload into a smaller one, reporting progress on
// its own 0-100 scale.
type Transcoder func(ctx context.Context, p *payload.Payload, quality float64, report progress.Sink) (*payload.Payload, error)

// Result is the outcome of a compression call: the payload to ship and
// whether it was actually transcoded. Callers never need to distinguish the
// two to proceed.
type Result struct {
	Payload    *payload.Payload
	Transcoded bool
}

// Dispatcher classifies payloads and routes them to the matching transcoder
// under a global deadline. Its defining guarantee: Compress never fails the
// caller's flow; every error degrades to shipping the original payload.
type Dispatcher struct {
	audio Transcoder
	video Transcoder
	image Transcoder
}

// NewDispatcher creates a dispatcher wired to the real transcoders.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		audio: TranscodeAudio,
		video: TranscodeVideo,
		image: TranscodeImage,
	}
}

// Compress runs the payload through the matching transcoder and returns
// either the transcoded payload or the original. Progress lands on sink as
// monotonically non-decreasing percentages ending at 100 on every path.
func (d *Dispatcher) Compress(ctx context.Context, p *payload.Payload, quality float64, sink progress.Sink) Result {
	start := time.Now()
	if sink == nil {
		sink = progress.Discard
	}
	report := progress.Monotonic(sink)

	if quality < 0.1 {
		quality = 0.1
	} else if quality > 1.0 {
		quality = 1.0
	}

	metrics.CompressionsInFlight.Inc()
	defer metrics.CompressionsInFlight.Dec()
	metrics.BytesIn.Add(float64(p.Size))

	category := d.classify(p)
	report(0, fmt.Sprintf("compressing %s", p.Name))

	var tc Transcoder
	switch category {
	case mediatypes.CategoryAudio:
		tc = d.audio
	case mediatypes.CategoryVideo:
		tc = d.video
	case mediatypes.CategoryImage:
		tc = d.image
	default:
		return d.skip(report, category, p, "unsupported media type, keeping original")
	}

	if !policy.ShouldAttempt(p.Size) {
		return d.skip(report, category, p, "size out of range, keeping original")
	}
	if category == mediatypes.CategoryVideo && p.Size > policy.MaxVideoSourceBytes {
		return d.skip(report, category, p, "file too large to compress, keeping original")
	}

	cctx, cancel := context.WithTimeout(ctx, deadlineFor(p.Size))
	defer cancel()

	// Transcoders report on their own scale; reserve the outer edges of the
	// band for the dispatcher's bookkeeping. Once the outcome is decided an
	// abandoned transcoder goroutine may still be running; its late events
	// are dropped so nothing lands after the final report.
	inner := progress.Band(report, 5, 95)
	var settled atomic.Bool
	guarded := func(percent int, message string) {
		if settled.Load() || cctx.Err() != nil {
			return
		}
		inner(percent, message)
	}

	type outcome struct {
		out *payload.Payload
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		out, err := tc(cctx, p, quality, guarded)
		done <- outcome{out, err}
	}()

	var o outcome
	select {
	case o = <-done:
	case <-cctx.Done():
		o = outcome{nil, ErrCompressionTimeout}
	}
	settled.Store(true)

	if o.err != nil {
		logging.Warn("compression of %s failed: %v", p.Name, o.err)
		metrics.CompressionsTotal.WithLabelValues(string(category), metrics.OutcomeFallback).Inc()
		metrics.CompressionDuration.WithLabelValues(string(category)).Observe(time.Since(start).Seconds())
		report(100, fallbackMessage(o.err))
		return Result{Payload: p, Transcoded: false}
	}

	saved := p.Size - o.out.Size
	if saved > 0 {
		metrics.BytesSaved.Add(float64(saved))
	}
	metrics.CompressionsTotal.WithLabelValues(string(category), metrics.OutcomeTranscoded).Inc()
	metrics.CompressionDuration.WithLabelValues(string(category)).Observe(time.Since(start).Seconds())

	logging.Info("compressed %s: %d -> %d bytes", p.Name, p.Size, o.out.Size)
	report(100, "compression complete")
	return Result{Payload: o.out, Transcoded: true}
}

// classify resolves the payload category, sniffing content when the
// declared MIME type is absent or opaque.
func (d *Dispatcher) classify(p *payload.Payload) mediatypes.Category {
	if p.MIME != "" && p.MIME != "application/octet-stream" {
		return mediatypes.CategoryOf(p.MIME)
	}

	r, err := p.Open()
	if err != nil {
		return mediatypes.CategoryOther
	}
	defer r.Close()

	head := make([]byte, sniffLen)
	n, _ := io.ReadFull(r, head)
	return mediatypes.Classify("", head[:n])
}

// skip records a short-circuit outcome and returns the original payload.
func (d *Dispatcher) skip(report progress.Sink, category mediatypes.Category, p *payload.Payload, msg string) Result {
	logging.Debug("skipping compression of %s: %s", p.Name, msg)
	metrics.CompressionsTotal.WithLabelValues(string(category), metrics.OutcomeSkipped).Inc()
	report(100, msg)
	return Result{Payload: p, Transcoded: false}
}

// deadlineFor computes the per-call budget: one millisecond per KiB of
// payload, clamped to [minDeadline, maxDeadline].
func deadlineFor(sizeBytes int64) time.Duration {
	d := time.Duration(sizeBytes/1024) * time.Millisecond
	if d < minDeadline {
		return minDeadline
	}
	if d > maxDeadline {
		return maxDeadline
	}
	return d
}

// fallbackMessage translates a transcoder error into the progress text shown
// to the user. The error itself never propagates.
func fallbackMessage(err error) string {
	switch {
	case errors.Is(err, ErrIneffective):
		return "compression ineffective, uploading original"
	case IsTimeout(err):
		return "compression timed out, uploading original"
	case errors.Is(err, ErrNoCodecSupport):
		return "no supported codec, uploading original"
	default:
		return "compression unavailable, uploading original"
	}
}
