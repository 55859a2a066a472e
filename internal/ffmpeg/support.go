package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

var (
	encoderOnce  sync.Once
	encoderCache map[string]bool
	encoderErr   error
)

// Encoders returns the set of encoder names the local ffmpeg build supports.
// The list is probed once per process and cached.
func Encoders(ctx context.Context) (map[string]bool, error) {
	encoderOnce.Do(func() {
		encoderCache, encoderErr = listEncoders(ctx)
	})
	return encoderCache, encoderErr
}

// listEncoders parses `ffmpeg -encoders` output. Encoder lines follow a
// "------" separator and look like " V....D libx264    H.264 ...".
func listEncoders(ctx context.Context) (map[string]bool, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg", "-hide_banner", "-encoders")

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("list encoders: %w", err)
	}

	return parseEncoderList(stdout.String()), nil
}

func parseEncoderList(out string) map[string]bool {
	encoders := make(map[string]bool)
	inList := false

	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if !inList {
			if strings.Contains(line, "-----") {
				inList = true
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			encoders[fields[1]] = true
		}
	}

	return encoders
}
