package canvas

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	// Register the WebP decoder alongside the formats imaging already pulls in.
	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels bounds the decoded area when Decode is given no limit.
const DefaultMaxPixels = 50_000_000

// ErrTooManyPixels is wrapped by a *DecodeError when the declared dimensions
// exceed the pixel budget.
var ErrTooManyPixels = errors.New("image dimensions exceed pixel budget")

// DecodeError is returned when fetched bytes are not a decodable image.
type DecodeError struct {
	Size int
	Err  error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode image (%d bytes): %v", e.Size, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode decodes data into an image, applying EXIF orientation.
// Empty and zero-sized images are rejected, as are images whose header
// declares more than maxPixels pixels. maxPixels <= 0 means DefaultMaxPixels.
func Decode(data []byte, maxPixels int64) (image.Image, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Size: 0, Err: fmt.Errorf("empty input")}
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	// Only the header is read here, so oversized images fail before any
	// pixel buffer is allocated.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Size: len(data), Err: err}
	}
	if area := int64(cfg.Width) * int64(cfg.Height); area > maxPixels {
		return nil, &DecodeError{
			Size: len(data),
			Err:  fmt.Errorf("%w: %dx%d > %d", ErrTooManyPixels, cfg.Width, cfg.Height, maxPixels),
		}
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Size: len(data), Err: err}
	}

	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &DecodeError{Size: len(data), Err: fmt.Errorf("zero-sized image %dx%d", b.Dx(), b.Dy())}
	}

	return img, nil
}

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
