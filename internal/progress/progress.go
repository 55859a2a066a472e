package progress

import (
	"sync"

	"mediapress/internal/logging"
)

// Event is a single progress update.
type Event struct {
	Percent int
	Message string
}

// Sink receives progress updates. Percent is 0-100; message is a short
// human-readable phase description. Implementations must be cheap: sinks are
// called from transcoding hot paths (at phase boundaries, not per frame).
type Sink func(percent int, message string)

// Discard is a Sink that drops all updates.
func Discard(int, string) {}

// Monotonic wraps a sink so that percent values never decrease. Updates with
// a lower percent than the high-water mark are re-reported at the mark; the
// message always passes through.
func Monotonic(sink Sink) Sink {
	var mu sync.Mutex
	high := 0
	return func(percent int, message string) {
		mu.Lock()
		if percent < high {
			percent = high
		} else {
			high = percent
		}
		mu.Unlock()
		sink(percent, message)
	}
}

// Band remaps a nested reporter's 0-100 scale into the [lo, hi] band of the
// outer sink, so composed progress never collides with the phases the outer
// caller reports itself.
func Band(sink Sink, lo, hi int) Sink {
	if hi < lo {
		lo, hi = hi, lo
	}
	span := hi - lo
	return func(percent int, message string) {
		if percent < 0 {
			percent = 0
		} else if percent > 100 {
			percent = 100
		}
		sink(lo+percent*span/100, message)
	}
}

// Channel returns a Sink backed by a bounded channel of Events plus the
// receive side for the caller to drain. When the buffer is full the oldest
// pending event is dropped so the producer never blocks; the terminal 100%
// event always lands. Close the sink side by calling the returned stop
// function once no more updates will be sent.
func Channel(buffer int) (Sink, <-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	var mu sync.Mutex
	closed := false

	sink := func(percent int, message string) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			logging.Debug("progress event after close dropped: %d%% %s", percent, message)
			return
		}
		ev := Event{Percent: percent, Message: message}
		for {
			select {
			case ch <- ev:
				return
			default:
				// Buffer full: make room by discarding the oldest event.
				select {
				case <-ch:
				default:
				}
			}
		}
	}

	stop := func() {
		mu.Lock()
		defer mu.Unlock()
		if !closed {
			closed = true
			close(ch)
		}
	}

	return sink, ch, stop
}
