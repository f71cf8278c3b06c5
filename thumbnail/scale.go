package thumbnail

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// ErrEmptyResult is returned when scaling would produce a zero-sized image.
var ErrEmptyResult = errors.New("thumbnail: scaled image has no pixels")

// Area is a box kernel. When shrinking, x/image/draw widens the kernel by
// the scale factor, so every output pixel is the mean of the source pixels
// it covers.
var Area = &draw.Kernel{
	Support: 0.5,
	At: func(t float64) float64 {
		return 1
	},
}

// Size returns the scaled dimensions: floor(w*percent/100) by
// floor(h*percent/100).
func Size(w, h, percent int) (int, int) {
	return w * percent / 100, h * percent / 100
}

// Scale resizes src to percent of its size with area interpolation.
func Scale(src image.Image, percent int) (*image.RGBA, error) {
	if percent <= 0 {
		return nil, fmt.Errorf("thumbnail: percent must be positive, got %d", percent)
	}

	b := src.Bounds()
	w, h := Size(b.Dx(), b.Dy(), percent)
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: %dx%d at %d%%", ErrEmptyResult, b.Dx(), b.Dy(), percent)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	Area.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst, nil
}
