package transcode

import (
	"testing"
	"time"
)

func TestStreamClockTimestamps(t *testing.T) {
	clock := NewStreamClock(24)

	for i := 0; i < 5; i++ {
		ts, ok := clock.Next()
		if !ok {
			t.Fatal("StreamClock exhausted unexpectedly")
		}
		want := time.Duration(i) * (time.Second / 24)
		if ts != want {
			t.Errorf("frame %d: ts = %v, want %v", i, ts, want)
		}
	}
}

func TestStreamClockDefaultsOnBadRate(t *testing.T) {
	clock := NewStreamClock(0)
	clock.Next()
	ts, _ := clock.Next()

	fps := float64(defaultAssumedFPS)
	want := time.Duration(float64(time.Second) / fps)
	if ts != want {
		t.Errorf("second tick = %v, want %v", ts, want)
	}
}

func TestGateAdmitsFirstFrame(t *testing.T) {
	gate := NewGate(24)
	if !gate.Admit(0) {
		t.Error("first frame must be admitted")
	}
}

func TestGateThrottlesToTargetRate(t *testing.T) {
	// 60 fps source gated to 30 fps admits every other frame.
	gate := NewGate(30)
	interval := time.Second / 60

	admitted := 0
	for i := 0; i < 60; i++ {
		if gate.Admit(time.Duration(i) * interval) {
			admitted++
		}
	}

	if admitted != 30 {
		t.Errorf("admitted %d of 60 frames, want 30", admitted)
	}
}

func TestGatePassesSlowSourceUntouched(t *testing.T) {
	// 12 fps source gated to 24 fps admits everything.
	gate := NewGate(24)
	interval := time.Second / 12

	for i := 0; i < 12; i++ {
		if !gate.Admit(time.Duration(i) * interval) {
			t.Errorf("frame %d dropped from a source already below target rate", i)
		}
	}
}

func TestGateMatchesTargetCadence(t *testing.T) {
	// A 10s source at 30 fps gated to 24 fps must admit 24 frames per second
	// of stream time. Anything less and an encoder configured at 24 fps
	// produces a shorter, faster-playing output.
	gate := NewGate(24)
	interval := time.Second / 30

	admitted := 0
	for i := 0; i < 300; i++ {
		if gate.Admit(time.Duration(i) * interval) {
			admitted++
		}
	}

	if admitted != 240 {
		t.Fatalf("admitted %d of 300 frames, want 240", admitted)
	}

	encodedDuration := float64(admitted) / 24.0
	if encodedDuration < 9.9 || encodedDuration > 10.1 {
		t.Errorf("encoded duration = %.2fs at 24 fps, want ~10s", encodedDuration)
	}
}

func TestGateClampsBadTarget(t *testing.T) {
	gate := NewGate(0)
	if !gate.Admit(0) {
		t.Error("gate with clamped rate should still admit frames")
	}
	if gate.Admit(500 * time.Millisecond) {
		t.Error("1 fps gate admitted a frame after 500ms")
	}
	if !gate.Admit(time.Second) {
		t.Error("1 fps gate refused a frame after a full second")
	}
}
