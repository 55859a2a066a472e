package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"mediapress/internal/logging"
)

// ErrEncoderStalled indicates the encoder stopped emitting output for longer
// than the configured idle timeout.
var ErrEncoderStalled = errors.New("encoder produced no output within idle timeout")

// State is the lifecycle state of a ChunkEncoder.
type State int

const (
	// StateIdle is the initial state before Start.
	StateIdle State = iota
	// StateRecording means the encoder accepts frames.
	StateRecording
	// StateStopping means input is closed and the tail is draining.
	StateStopping
	// StateStopped is the terminal state; the result is available.
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// EncoderConfig configures a ChunkEncoder.
type EncoderConfig struct {
	// Width and Height are the dimensions of incoming RGBA frames.
	Width  int
	Height int
	// FrameRate is the nominal input frame rate.
	FrameRate int
	// Bitrate is the target video bitrate in bits per second.
	Bitrate int
	// VideoCodec is the ffmpeg encoder name; empty selects the container
	// default.
	VideoCodec string
	// Container is the output format ("webm" or "mp4").
	Container string
	// ChunkSize is the read granularity for collecting output (default 256 KiB).
	ChunkSize int
	// IdleTimeout kills the encoder when no output arrives for this long
	// (default 60s).
	IdleTimeout time.Duration
}

// ChunkEncoder drives an ffmpeg encoding process as an explicit state
// machine: raw RGBA frames go in over stdin, compressed container chunks are
// collected off stdout as they are emitted. The zero value is not usable;
// use NewChunkEncoder.
type ChunkEncoder struct {
	cfg EncoderConfig

	mu      sync.Mutex
	state   State
	readErr error
	out     bytes.Buffer
	chunks  int
	aborted bool

	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stderr   bytes.Buffer
	readDone chan struct{}
}

// NewChunkEncoder creates an encoder in the idle state.
func NewChunkEncoder(cfg EncoderConfig) *ChunkEncoder {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 256 * 1024
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	return &ChunkEncoder{cfg: cfg, state: StateIdle, readDone: make(chan struct{})}
}

// State returns the current lifecycle state.
func (e *ChunkEncoder) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// transition moves the state machine from one state to another, failing on
// anything but the expected current state.
func (e *ChunkEncoder) transition(from, to State) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != from {
		return fmt.Errorf("invalid encoder transition %s -> %s (current state %s)", from, to, e.state)
	}
	e.state = to
	return nil
}

// Start launches the encoding process and moves idle -> recording.
func (e *ChunkEncoder) Start(ctx context.Context) error {
	if err := e.transition(StateIdle, StateRecording); err != nil {
		return err
	}

	args := []string{
		"-v", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", e.cfg.Width, e.cfg.Height),
		"-framerate", strconv.Itoa(e.cfg.FrameRate),
		"-i", "pipe:0",
	}
	if e.cfg.VideoCodec != "" {
		args = append(args, "-c:v", e.cfg.VideoCodec)
	}
	args = append(args, "-b:v", strconv.Itoa(e.cfg.Bitrate))
	if e.cfg.Container == "mp4" {
		// Fragmented output so the container is valid on a non-seekable pipe.
		args = append(args, "-movflags", "frag_keyframe+empty_moov+faststart")
	}
	args = append(args, "-f", e.cfg.Container, "pipe:1")

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stderr = &e.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		e.fail(fmt.Errorf("stdin pipe: %w", err))
		return err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		e.fail(fmt.Errorf("stdout pipe: %w", err))
		return err
	}

	if err := cmd.Start(); err != nil {
		e.fail(fmt.Errorf("start ffmpeg encoder: %w", err))
		return fmt.Errorf("start ffmpeg encoder: %w", err)
	}

	e.mu.Lock()
	e.cmd = cmd
	e.stdin = stdin
	e.mu.Unlock()

	go e.collect(stdout)
	return nil
}

// WriteFrame feeds one raw RGBA frame to the encoder. Only valid while
// recording.
func (e *ChunkEncoder) WriteFrame(frame []byte) error {
	e.mu.Lock()
	if e.state != StateRecording {
		state := e.state
		e.mu.Unlock()
		return fmt.Errorf("write frame in state %s", state)
	}
	stdin := e.stdin
	e.mu.Unlock()

	if _, err := stdin.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Stop closes the input side, drains the remaining output, and moves the
// machine to stopped. Returns any error the collector or the process hit.
func (e *ChunkEncoder) Stop() error {
	if err := e.transition(StateRecording, StateStopping); err != nil {
		return err
	}

	_ = e.stdin.Close()
	<-e.readDone
	waitErr := e.cmd.Wait()

	e.mu.Lock()
	e.state = StateStopped
	readErr := e.readErr
	e.mu.Unlock()

	if readErr != nil {
		return readErr
	}
	if waitErr != nil {
		return fmt.Errorf("encoder exited: %w - %s", waitErr, e.stderr.String())
	}
	return nil
}

// Abort forcibly tears the encoder down from any state. Used by timeout
// handling; the result is discarded.
func (e *ChunkEncoder) Abort() {
	e.mu.Lock()
	state := e.state
	e.aborted = true
	e.state = StateStopped
	cmd := e.cmd
	stdin := e.stdin
	e.mu.Unlock()

	if state == StateIdle || cmd == nil {
		return
	}
	if stdin != nil {
		_ = stdin.Close()
	}
	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
	<-e.readDone
	_ = cmd.Wait()
}

// Result returns the assembled output chunks. Only valid once stopped
// cleanly.
func (e *ChunkEncoder) Result() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateStopped {
		return nil, fmt.Errorf("result requested in state %s", e.state)
	}
	if e.aborted {
		return nil, fmt.Errorf("encoder aborted")
	}
	if e.readErr != nil {
		return nil, e.readErr
	}
	return e.out.Bytes(), nil
}

// fail marks the encoder stopped with an error before the process ever ran.
func (e *ChunkEncoder) fail(err error) {
	e.mu.Lock()
	e.state = StateStopped
	e.readErr = err
	e.mu.Unlock()
	close(e.readDone)
}

type chunk struct {
	data []byte
	err  error
}

// collect assembles encoder output chunks, enforcing the idle timeout. It
// owns readDone.
func (e *ChunkEncoder) collect(stdout io.ReadCloser) {
	defer close(e.readDone)

	ch := make(chan chunk, 4)
	go func() {
		for {
			buf := make([]byte, e.cfg.ChunkSize)
			n, err := stdout.Read(buf)
			if n > 0 {
				ch <- chunk{data: buf[:n]}
			}
			if err != nil {
				ch <- chunk{err: err}
				return
			}
		}
	}()

	idle := time.NewTimer(e.cfg.IdleTimeout)
	defer idle.Stop()

	for {
		select {
		case c := <-ch:
			if c.data != nil {
				e.mu.Lock()
				e.out.Write(c.data)
				e.chunks++
				e.mu.Unlock()
			}
			if c.err != nil {
				if c.err != io.EOF {
					e.mu.Lock()
					e.readErr = fmt.Errorf("read encoder output: %w", c.err)
					e.mu.Unlock()
				}
				return
			}

			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(e.cfg.IdleTimeout)

		case <-idle.C:
			logging.Warn("encoder idle for %v, killing process", e.cfg.IdleTimeout)
			e.mu.Lock()
			e.readErr = ErrEncoderStalled
			cmd := e.cmd
			e.mu.Unlock()
			if cmd != nil && cmd.Process != nil {
				_ = cmd.Process.Kill()
			}
			return
		}
	}
}
