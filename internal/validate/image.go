package validate

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/fenilsonani/bytesweep/internal/classify"
)

// ImageDecoder is the image decoding capability. Decode must fail on any
// structural fault. When full is false only the header needs parsing.
type ImageDecoder interface {
	Decode(r io.ReadSeeker, full bool) (format string, err error)
}

// StdDecoder decodes every format registered with the image package:
// png, jpeg and gif from the standard library, bmp, tiff and webp from
// golang.org/x/image.
type StdDecoder struct {
	// MaxPixels bounds full pixel decoding. Larger images get a header
	// check only, so an oversized but intact image is never condemned.
	MaxPixels int64
}

// Decode implements ImageDecoder
func (d StdDecoder) Decode(r io.ReadSeeker, full bool) (string, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return "", err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return format, fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}

	if d.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > d.MaxPixels {
		full = false
	}
	if !full {
		return format, nil
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return format, err
	}
	if _, _, err := image.Decode(r); err != nil {
		return format, err
	}
	return format, nil
}

// ImageValidator judges image files through an ImageDecoder
type ImageValidator struct {
	Decoder ImageDecoder
	Timeout time.Duration
	// MaxDecodeBytes limits full decoding by file size; 0 means no limit
	MaxDecodeBytes int64
}

type decodeOutcome struct {
	format string
	err    error
}

// Validate decodes path, bounded by the validator timeout
func (v *ImageValidator) Validate(ctx context.Context, path string, size int64) Result {
	f, err := os.Open(path)
	if err != nil {
		return invalid(classify.Image, IOFault, describeIOError(err), err)
	}
	defer f.Close()

	if v.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.Timeout)
		defer cancel()
	}

	full := v.MaxDecodeBytes <= 0 || size <= v.MaxDecodeBytes
	done := make(chan decodeOutcome, 1)
	go func() {
		format, err := v.Decoder.Decode(&ctxReadSeeker{ctx: ctx, rs: f}, full)
		done <- decodeOutcome{format: format, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) {
				return invalid(classify.Image, DecodeFault, fmt.Sprintf("decode timed out after %s", v.Timeout), out.err)
			}
			return invalid(classify.Image, DecodeFault, "image decode failed", out.err)
		}
		return valid(classify.Image)
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return invalid(classify.Image, DecodeFault, fmt.Sprintf("decode timed out after %s", v.Timeout), ctx.Err())
		}
		return invalid(classify.Image, DecodeFault, "decode cancelled", ctx.Err())
	}
}

// ctxReadSeeker fails reads once ctx is done, so an abandoned decode
// stops at its next read.
type ctxReadSeeker struct {
	ctx context.Context
	rs  io.ReadSeeker
}

func (c *ctxReadSeeker) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.rs.Read(p)
}

func (c *ctxReadSeeker) Seek(offset int64, whence int) (int64, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.rs.Seek(offset, whence)
}
