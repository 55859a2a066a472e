package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"

	"mediapress/internal/logging"
)

// FrameDecoder streams raw RGBA frames from a video payload. Frames are
// produced in decode order; the caller owns pacing and teardown.
type FrameDecoder struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer

	frameSize int
	buf       []byte
	closed    bool
}

// NewFrameDecoder starts an ffmpeg process decoding the payload into raw
// RGBA frames of width x height (the source dimensions from Probe).
func NewFrameDecoder(ctx context.Context, data []byte, width, height int) (*FrameDecoder, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-i", "pipe:0",
		"-an",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	)
	cmd.Stdin = bytes.NewReader(data)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	d := &FrameDecoder{
		cmd:       cmd,
		stdout:    stdout,
		frameSize: width * height * 4,
	}
	cmd.Stderr = &d.stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg decoder: %w", err)
	}

	d.buf = make([]byte, d.frameSize)
	return d, nil
}

// Next returns the next decoded frame as packed RGBA bytes. The returned
// slice is reused between calls; callers that keep a frame must copy it.
// io.EOF signals the end of the stream.
func (d *FrameDecoder) Next() ([]byte, error) {
	if d.closed {
		return nil, io.EOF
	}

	_, err := io.ReadFull(d.stdout, d.buf)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame: %w", err)
	}
	return d.buf, nil
}

// Close tears the decoder down, killing the process if it is still running.
func (d *FrameDecoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	_ = d.stdout.Close()
	if d.cmd.Process != nil {
		_ = d.cmd.Process.Kill()
	}
	err := d.cmd.Wait()
	if err != nil && d.stderr.Len() > 0 {
		logging.Debug("ffmpeg decoder stderr: %s", d.stderr.String())
	}
	return nil
}
