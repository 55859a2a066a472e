package transcode

import (
	"context"
	"fmt"
	"io"
	"time"

	"mediapress/internal/payload"
)

// readAllTimeout reads the whole payload under a deadline. The read races a
// timer; expiry returns timeoutErr and abandons the in-flight read.
func readAllTimeout(ctx context.Context, p *payload.Payload, limit time.Duration, timeoutErr error) ([]byte, error) {
	rctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		r, err := p.Open()
		if err != nil {
			ch <- result{nil, err}
			return
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		ch <- result{data, err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, res.err)
		}
		return res.data, nil
	case <-rctx.Done():
		return nil, timeoutErr
	}
}
