package images

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/pkg/errors"
)

// LoadError reports that a source could not be read or decoded.
type LoadError struct {
	// Source names the input that failed.
	Source string
	// Err is the underlying cause.
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load image %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads and decodes the image at path, returning it as truecolor RGBA.
//
// Arguments:
//   - path: Filesystem path of the encoded image.
//
// Returns:
//   - *image.RGBA: The decoded image with alpha dropped.
//   - error: A *LoadError if the file is missing, unreadable, or corrupt.
func Load(path string) (*image.RGBA, error) {
	return LoadSource(Source{Path: path})
}

// LoadBytes decodes an in-memory encoded image.
func LoadBytes(data []byte) (*image.RGBA, error) {
	return LoadSource(Source{Data: data})
}

// LoadSource decodes the image described by src.
//
// Arguments:
//   - src: The source to read. Data takes precedence over Path.
//
// Returns:
//   - *image.RGBA: The decoded truecolor image.
//   - error: A *LoadError describing the failure.
func LoadSource(src Source) (*image.RGBA, error) {
	data := src.Data
	if data == nil {
		if src.Path == "" {
			return nil, &LoadError{Source: src.String(), Err: errors.New("no path or data given")}
		}
		b, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, &LoadError{Source: src.String(), Err: errors.Wrap(err, "failed to read file")}
		}
		data = b
	}

	img, err := Decode(data, src.Format)
	if err != nil {
		return nil, &LoadError{Source: src.String(), Err: err}
	}

	return ToRGB(img), nil
}

// ToRGB converts any decoded image to an opaque RGBA raster anchored at (0,0).
//
// Alpha is discarded rather than blended: each pixel keeps its straight
// (non-premultiplied) color values and becomes fully opaque. Palette and
// grayscale images are expanded to three channels.
//
// Arguments:
//   - img: The source image in any color model.
//
// Returns:
//   - *image.RGBA: A new opaque image with bounds (0,0)-(w,h).
func ToRGB(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	for y := 0; y < b.Dy(); y++ {
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			off := x * 4
			row[off+0] = c.R
			row[off+1] = c.G
			row[off+2] = c.B
			row[off+3] = 0xFF
		}
	}

	return dst
}
