package images

import (
	"image"
)

// Luma returns the ITU-R 601-2 luma of an 8-bit RGB triple using 16-bit fixed
// point arithmetic with rounding.
//
// Arguments:
//   - r, g, b: The channel values.
//
// Returns:
//   - uint8: L = 0.299 R + 0.587 G + 0.114 B, rounded.
func Luma(r, g, b uint8) uint8 {
	return uint8((uint32(r)*19595 + uint32(g)*38470 + uint32(b)*7471 + 0x8000) >> 16)
}

// Grayscale converts an image to grayscale and expands it back to three equal
// channels, so it can serve as a neutral backdrop for colored overlays.
//
// Arguments:
//   - img: The source truecolor image.
//
// Returns:
//   - *image.RGBA: A new opaque image where R == G == B == luma.
//
// @example
// backdrop := Grayscale(pair.A)
func Grayscale(img *image.RGBA) *image.RGBA {
	b := img.Rect
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	for y := 0; y < b.Dy(); y++ {
		src := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < b.Dx(); x++ {
			off := x * 4
			l := Luma(src[off], src[off+1], src[off+2])
			out[off+0] = l
			out[off+1] = l
			out[off+2] = l
			out[off+3] = 0xFF
		}
	}

	return dst
}
