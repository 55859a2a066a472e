package ffmpeg

import (
	"context"
	"strings"
	"testing"
	"time"
)

func testConfig() EncoderConfig {
	return EncoderConfig{
		Width:     320,
		Height:    240,
		FrameRate: 24,
		Bitrate:   50000,
		Container: "webm",
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateIdle, "idle"},
		{StateRecording, "recording"},
		{StateStopping, "stopping"},
		{StateStopped, "stopped"},
		{State(9), "unknown(9)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("State.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestEncoderStartsIdle(t *testing.T) {
	enc := NewChunkEncoder(testConfig())
	if enc.State() != StateIdle {
		t.Errorf("State() = %v, want %v", enc.State(), StateIdle)
	}
}

func TestEncoderGuardsTransitions(t *testing.T) {
	enc := NewChunkEncoder(testConfig())

	if err := enc.WriteFrame(make([]byte, 4)); err == nil {
		t.Error("WriteFrame before Start should fail")
	}
	if err := enc.Stop(); err == nil {
		t.Error("Stop before Start should fail")
	}
	if _, err := enc.Result(); err == nil {
		t.Error("Result before Start should fail")
	}
	if enc.State() != StateIdle {
		t.Errorf("failed operations changed state to %v", enc.State())
	}
}

func TestEncoderAbortFromIdle(t *testing.T) {
	enc := NewChunkEncoder(testConfig())
	enc.Abort()

	if enc.State() != StateStopped {
		t.Errorf("State() after Abort = %v, want %v", enc.State(), StateStopped)
	}
	if _, err := enc.Result(); err == nil {
		t.Error("Result after Abort should fail")
	}
}

func TestEncoderStartRefusedWhenNotIdle(t *testing.T) {
	enc := NewChunkEncoder(testConfig())
	enc.Abort()

	err := enc.Start(context.Background())
	if err == nil {
		t.Fatal("Start after Abort should fail")
	}
	if !strings.Contains(err.Error(), "invalid encoder transition") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEncoderConfigDefaults(t *testing.T) {
	enc := NewChunkEncoder(EncoderConfig{Width: 2, Height: 2, FrameRate: 1, Bitrate: 1, Container: "webm"})

	if enc.cfg.ChunkSize != 256*1024 {
		t.Errorf("ChunkSize default = %d, want %d", enc.cfg.ChunkSize, 256*1024)
	}
	if enc.cfg.IdleTimeout != 60*time.Second {
		t.Errorf("IdleTimeout default = %v, want %v", enc.cfg.IdleTimeout, 60*time.Second)
	}
}
