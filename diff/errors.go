package diff

import (
	"fmt"
	"image"

	"github.com/pkg/errors"
)

// ErrSizeMismatch is returned when two rasters with different bounds reach the
// difference engine without going through normalization first.
var ErrSizeMismatch = errors.New("images must share identical dimensions")

// InvalidModeError reports an unsupported visualization mode string.
type InvalidModeError struct {
	Mode string
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("unsupported visualization mode %q (want one of %v)", e.Mode, Modes)
}

// DimensionMismatchWarning is the non-fatal notice emitted when the second
// image had to be resampled to the first image's size. Statistics computed
// after a resample are approximate near edges and fine detail.
type DimensionMismatchWarning struct {
	// SizeA is the size of the reference image.
	SizeA image.Point
	// SizeB is the original size of the resampled image.
	SizeB image.Point
}

func (w DimensionMismatchWarning) Error() string {
	return fmt.Sprintf("image size mismatch: %dx%d vs %dx%d, second image resized to %dx%d",
		w.SizeA.X, w.SizeA.Y, w.SizeB.X, w.SizeB.Y, w.SizeA.X, w.SizeA.Y)
}
