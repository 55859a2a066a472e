package transcode

import "time"

// FrameClock supplies presentation timestamps for successive decoded video
// frames. It decouples the draw loop from any particular scheduling
// primitive so the throttling logic is testable on its own.
type FrameClock interface {
	// Next returns the timestamp of the next frame and false once the
	// stream is exhausted.
	Next() (time.Duration, bool)
}

// StreamClock is a FrameClock that derives timestamps from a fixed source
// frame rate: frame n is presented at n/fps seconds.
type StreamClock struct {
	interval time.Duration
	index    int
}

// defaultAssumedFPS is used when the source frame rate is unknown.
const defaultAssumedFPS = 30.0

// NewStreamClock creates a clock for a source running at fps frames per
// second. Non-positive rates fall back to an assumed rate.
func NewStreamClock(fps float64) *StreamClock {
	if fps <= 0 {
		fps = defaultAssumedFPS
	}
	return &StreamClock{interval: time.Duration(float64(time.Second) / fps)}
}

// Next returns the presentation timestamp of the next frame. A StreamClock
// never exhausts; the decoder signals the end of the stream.
func (c *StreamClock) Next() (time.Duration, bool) {
	ts := time.Duration(c.index) * c.interval
	c.index++
	return ts, true
}

// Gate throttles frame draws to a target cadence: a frame is admitted when
// its timestamp reaches the next tick of the target rate. Over any stretch
// of stream time the admitted count matches targetFPS times the elapsed
// duration, so an encoder configured at targetFPS reproduces the source
// duration instead of compressing it.
type Gate struct {
	interval time.Duration
	next     time.Duration
	started  bool
}

// NewGate creates a gate for the given target frame rate.
func NewGate(targetFPS int) *Gate {
	if targetFPS < 1 {
		targetFPS = 1
	}
	return &Gate{interval: time.Second / time.Duration(targetFPS)}
}

// Admit reports whether a frame with the given timestamp should be drawn,
// and records it as drawn if so.
func (g *Gate) Admit(ts time.Duration) bool {
	if !g.started {
		g.started = true
		g.next = ts + g.interval
		return true
	}
	if ts < g.next {
		return false
	}
	g.next += g.interval
	// A source running below the target rate leaves the next tick in the
	// past; resync so a later burst cannot exceed the cadence.
	if g.next <= ts {
		g.next = ts + g.interval
	}
	return true
}
