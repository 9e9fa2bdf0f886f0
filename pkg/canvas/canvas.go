package canvas

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// ErrInvalidSpec is returned by Spec.Validate for non-positive dimensions.
var ErrInvalidSpec = errors.New("invalid canvas spec")

// Spec is the target canvas size.
type Spec struct {
	Width  int
	Height int
}

// Validate reports whether both dimensions are positive.
func (s Spec) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSpec, s.Width, s.Height)
	}
	return nil
}

// Layout describes where the resized content lands on the canvas.
type Layout struct {
	// Width and Height are the dimensions of the resized content.
	Width  int
	Height int

	// X and Y are the offsets of the content's top-left corner.
	X int
	Y int
}

// Bounds returns the content rectangle in canvas coordinates.
func (l Layout) Bounds() image.Rectangle {
	return image.Rect(l.X, l.Y, l.X+l.Width, l.Y+l.Height)
}

// ComputeLayout scales srcW x srcH by min(target.Width/srcW, target.Height/srcH)
// and centers the result on the target canvas.
// Source dimensions and spec must be positive.
func ComputeLayout(srcW, srcH int, target Spec) Layout {
	ratio := math.Min(
		float64(target.Width)/float64(srcW),
		float64(target.Height)/float64(srcH),
	)

	w := clamp(int(math.Round(float64(srcW)*ratio)), 1, target.Width)
	h := clamp(int(math.Round(float64(srcH)*ratio)), 1, target.Height)

	return Layout{
		Width:  w,
		Height: h,
		X:      (target.Width - w) / 2,
		Y:      (target.Height - h) / 2,
	}
}

// Fit resizes img to fit within target and centers it on a transparent canvas
// of exactly target.Width x target.Height pixels.
// The caller must validate target beforehand.
func Fit(img image.Image, target Spec) *image.RGBA {
	b := img.Bounds()
	layout := ComputeLayout(b.Dx(), b.Dy(), target)

	resized := imaging.Resize(img, layout.Width, layout.Height, imaging.Lanczos)

	// NewRGBA is zeroed: every pixel starts as (0,0,0,0).
	out := image.NewRGBA(image.Rect(0, 0, target.Width, target.Height))
	draw.Draw(out, layout.Bounds(), resized, resized.Bounds().Min, draw.Over)

	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
