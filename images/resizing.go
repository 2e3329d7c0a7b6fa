package images

import (
	"image"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// ResizeLanczos resamples img to exactly width x height using a Lanczos3 filter.
//
// Arguments:
//   - img: The image to resize.
//   - width: The target width in pixels.
//   - height: The target height in pixels.
//
// Returns:
//   - *image.RGBA: The resized opaque image.
//   - error: An error if the target dimensions are not positive.
func ResizeLanczos(img image.Image, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid dimensions: width=%d, height=%d", width, height)
	}

	resized := resize.Resize(uint(width), uint(height), img, resize.Lanczos3)

	return ToRGB(resized), nil
}

// Normalize reconciles two decoded images into a Pair of equal-size truecolor
// rasters. When the sizes differ, b is resampled to a's dimensions and
// Pair.Resampled is set so the caller can surface the approximation.
//
// Arguments:
//   - a: The reference image; its size wins.
//   - b: The image to compare against a.
//
// Returns:
//   - Pair: The normalized images and their original sizes.
//   - error: An error if b cannot be resampled (for example, a is empty).
//
// Example:
//
// ```go
//
//	pair, err := images.Normalize(before, after)
//	if pair.Resampled {
//	    log.Printf("resized %v to %v", pair.SizeB, pair.SizeA)
//	}
//
// ```
func Normalize(a, b image.Image) (Pair, error) {
	rgbA := ToRGB(a)
	rgbB := ToRGB(b)

	pair := Pair{
		A:     rgbA,
		B:     rgbB,
		SizeA: rgbA.Rect.Size(),
		SizeB: rgbB.Rect.Size(),
	}
	if pair.SizeA == pair.SizeB {
		return pair, nil
	}

	resized, err := ResizeLanczos(rgbB, pair.SizeA.X, pair.SizeA.Y)
	if err != nil {
		return Pair{}, errors.Wrapf(err, "failed to resample %v image to %v", pair.SizeB, pair.SizeA)
	}
	pair.B = resized
	pair.Resampled = true

	return pair, nil
}
