package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"mediapress/internal/logging"
	"mediapress/internal/payload"
	"mediapress/internal/policy"
	"mediapress/internal/progress"

	"github.com/disintegration/imaging"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp" // WebP format support
)

// imageDecodeTimeout bounds decode of a single image.
const imageDecodeTimeout = 15 * time.Second

// TranscodeImage re-encodes an image payload as JPEG at the quality factor,
// resized per the dimension policy (longest axis capped at 2048).
func TranscodeImage(ctx context.Context, p *payload.Payload, quality float64, report progress.Sink) (*payload.Payload, error) {
	report(0, "reading image")
	data, err := readAllTimeout(ctx, p, imageDecodeTimeout, ErrDecodeTimeout)
	if err != nil {
		return nil, err
	}

	// The vips path shrinks during decode, which is much cheaper for large
	// sources. It produces the finished JPEG directly.
	if IsVipsAvailable() {
		report(20, "processing image")
		out, err := vipsTranscodeTimeout(ctx, data, quality)
		if err == nil {
			report(100, "image ready")
			return payload.FromBytes(payload.ReplaceExt(p.Name, ".jpg"), "image/jpeg", out), nil
		}
		if errors.Is(err, ErrDecodeTimeout) {
			return nil, err
		}
		logging.Warn("vips transcode of %s failed, falling back to pure-Go path: %v", p.Name, err)
	}

	report(20, "decoding image")
	img, err := decodeImageTimeout(ctx, data)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	plan := policy.PlanDimensions(bounds.Dx(), bounds.Dy(), quality, policy.MaxImageDimension)

	report(50, "resizing image")
	resized := imaging.Resize(img, plan.Width, plan.Height, imaging.Lanczos)

	report(75, "encoding jpeg")
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(jpegQuality(quality))); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	report(100, "image ready")
	return payload.FromBytes(payload.ReplaceExt(p.Name, ".jpg"), "image/jpeg", buf.Bytes()), nil
}

// vipsTranscode is replaceable in tests.
var vipsTranscode = vipsTranscodeJPEG

// vipsTranscodeTimeout races the vips pipeline against the image decode
// deadline; vips hangs on some malformed sources rather than erroring.
func vipsTranscodeTimeout(ctx context.Context, data []byte, quality float64) ([]byte, error) {
	dctx, cancel := context.WithTimeout(ctx, imageDecodeTimeout)
	defer cancel()

	type result struct {
		out []byte
		err error
	}
	ch := make(chan result, 1)

	go func() {
		out, err := vipsTranscode(data, quality)
		ch <- result{out, err}
	}()

	select {
	case res := <-ch:
		return res.out, res.err
	case <-dctx.Done():
		return nil, ErrDecodeTimeout
	}
}

// decodeImageTimeout decodes image bytes, racing the decode against the
// image decode deadline.
func decodeImageTimeout(ctx context.Context, data []byte) (image.Image, error) {
	dctx, cancel := context.WithTimeout(ctx, imageDecodeTimeout)
	defer cancel()

	type result struct {
		img image.Image
		err error
	}
	ch := make(chan result, 1)

	go func() {
		img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		ch <- result{img, err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, res.err)
		}
		return res.img, nil
	case <-dctx.Done():
		return nil, ErrDecodeTimeout
	}
}

// jpegQuality maps the quality factor to the 1-100 JPEG encoder scale.
func jpegQuality(quality float64) int {
	q := int(quality * 100)
	if q < 1 {
		q = 1
	} else if q > 100 {
		q = 100
	}
	return q
}
