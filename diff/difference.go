// Package diff - pixel-by-pixel comparison of two equal-size rasters.
//
// The package is organised as a forward-only pipeline:
//
// ┌────────────────────┐
// │ Normalized Pair    │  images.Normalize
// └──────┬─────────────┘
// ┌────────────────────┐
// │ Difference Array   │  Compute (|A - B| per channel, int16)
// └──────┬─────────────┘
// ┌────────────────────┐
// │ Change Mask        │  BuildMask (threshold -> opening -> smoothing)
// └──────┬─────────────┘
// ┌────────────────────┐
// │ Render / Regions   │  Render, FindRegions, SideBySide
// └────────────────────┘
//
// Every stage is a pure function of its inputs. Comparison bundles the
// immutable inputs of one pair so callers can ask for any number of renders
// or statistics under different parameters.
package diff

import (
	"image"
)

// Channels is the number of color channels compared per pixel.
const Channels = 3

// Array holds the absolute per-channel difference of two rasters, laid out
// row-major as [y][x][channel]. Values are always within [0, 255].
type Array struct {
	Width  int
	Height int
	Pix    []int16
}

// Compute returns |a - b| for every pixel and channel.
//
// Both rasters are widened to int16 before subtracting so the result never
// wraps, and the arithmetic stays in integers so results are bit-exact.
//
// Arguments:
//   - a: The first image.
//   - b: The second image; must have the same size as a.
//
// Returns:
//   - *Array: The difference array.
//   - error: ErrSizeMismatch if the sizes differ.
func Compute(a, b *image.RGBA) (*Array, error) {
	if a.Rect.Size() != b.Rect.Size() {
		return nil, ErrSizeMismatch
	}

	w, h := a.Rect.Dx(), a.Rect.Dy()
	arr := &Array{Width: w, Height: h, Pix: make([]int16, w*h*Channels)}

	i := 0
	for y := 0; y < h; y++ {
		rowA := a.Pix[a.PixOffset(a.Rect.Min.X, a.Rect.Min.Y+y):]
		rowB := b.Pix[b.PixOffset(b.Rect.Min.X, b.Rect.Min.Y+y):]
		for x := 0; x < w; x++ {
			off := x * 4
			for c := 0; c < Channels; c++ {
				d := int16(rowA[off+c]) - int16(rowB[off+c])
				if d < 0 {
					d = -d
				}
				arr.Pix[i] = d
				i++
			}
		}
	}

	return arr, nil
}

// TotalPixels returns Width * Height.
func (a *Array) TotalPixels() int {
	return a.Width * a.Height
}

// At returns the difference of channel c at (x, y).
func (a *Array) At(x, y, c int) int16 {
	return a.Pix[(y*a.Width+x)*Channels+c]
}

// MaxChannel returns the largest channel difference of pixel index i
// (i = y*Width + x).
func (a *Array) MaxChannel(i int) int16 {
	p := a.Pix[i*Channels : i*Channels+Channels]
	m := p[0]
	if p[1] > m {
		m = p[1]
	}
	if p[2] > m {
		m = p[2]
	}
	return m
}

// PixelSum returns the sum of the channel differences of pixel index i.
func (a *Array) PixelSum(i int) int64 {
	p := a.Pix[i*Channels : i*Channels+Channels]
	return int64(p[0]) + int64(p[1]) + int64(p[2])
}

// Image renders the raw array directly: a larger channel difference gives a
// lighter value in that channel.
func (a *Array) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, a.Width, a.Height))
	for i := 0; i < a.TotalPixels(); i++ {
		p := a.Pix[i*Channels:]
		img.Pix[i*4+0] = uint8(p[0])
		img.Pix[i*4+1] = uint8(p[1])
		img.Pix[i*4+2] = uint8(p[2])
		img.Pix[i*4+3] = 0xFF
	}
	return img
}

// Equal reports whether two arrays have the same size and identical values.
// It is exported for callers that cache or compare difference arrays.
func (a *Array) Equal(o *Array) bool {
	if a.Width != o.Width || a.Height != o.Height || len(a.Pix) != len(o.Pix) {
		return false
	}
	for i := range a.Pix {
		if a.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}
