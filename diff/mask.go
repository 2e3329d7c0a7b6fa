package diff

import (
	"github.com/pkg/errors"
)

// MaskParams selects how a change mask is built. A mask, processed
// statistics, or region list is only meaningful together with the params
// that produced it.
type MaskParams struct {
	// Threshold is the per-channel difference a pixel must exceed on any
	// channel to count as changed.
	Threshold int `json:"threshold" mapstructure:"threshold"`
	// MorphKernelSize enables morphological opening with an elliptical
	// kernel of this size when > 0.
	MorphKernelSize int `json:"morphology_kernel" mapstructure:"morphology_kernel_size"`
	// BlurKernelSize enables Gaussian smoothing and re-binarization when > 0.
	// Even sizes are bumped to the next odd size.
	BlurKernelSize int `json:"blur_kernel" mapstructure:"blur_kernel_size"`
}

// Validate rejects negative parameters.
func (p MaskParams) Validate() error {
	if p.Threshold < 0 {
		return errors.Errorf("threshold must be >= 0, got %d", p.Threshold)
	}
	if p.MorphKernelSize < 0 {
		return errors.Errorf("morphology kernel size must be >= 0, got %d", p.MorphKernelSize)
	}
	if p.BlurKernelSize < 0 {
		return errors.Errorf("blur kernel size must be >= 0, got %d", p.BlurKernelSize)
	}
	return nil
}

// Mask is a width x height boolean grid, row-major. True marks a changed pixel.
type Mask struct {
	Width  int
	Height int
	Pix    []bool
}

// NewMask allocates an all-false mask.
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Pix: make([]bool, width*height)}
}

// At reports whether (x, y) is set.
func (m *Mask) At(x, y int) bool {
	return m.Pix[y*m.Width+x]
}

// Count returns the number of set cells.
func (m *Mask) Count() int {
	n := 0
	for _, on := range m.Pix {
		if on {
			n++
		}
	}
	return n
}

// Empty reports whether the grid has zero cells.
func (m *Mask) Empty() bool {
	return m.Width == 0 || m.Height == 0
}

// ThresholdMask marks every pixel whose largest channel difference exceeds
// threshold.
//
// Arguments:
//   - arr: The difference array.
//   - threshold: The strict lower bound on the per-channel difference.
//
// Returns:
//   - *Mask: The base mask, before any post-processing.
func ThresholdMask(arr *Array, threshold int) *Mask {
	m := NewMask(arr.Width, arr.Height)
	for i := range m.Pix {
		m.Pix[i] = int(arr.MaxChannel(i)) > threshold
	}
	return m
}

// BuildMask runs the full mask pipeline: threshold, optional opening,
// optional Gaussian smoothing.
//
// Arguments:
//   - arr: The difference array.
//   - params: Threshold and kernel sizes.
//
// Returns:
//   - *Mask: The final change mask.
//   - error: An error if params are invalid or an OpenCV call fails.
//
// Example:
//
// ```go
//
//	mask, err := diff.BuildMask(arr, diff.MaskParams{Threshold: 20, MorphKernelSize: 3})
//	fmt.Printf("changed pixels: %d\n", mask.Count())
//
// ```
func BuildMask(arr *Array, params MaskParams) (*Mask, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	mask := ThresholdMask(arr, params.Threshold)
	if mask.Empty() {
		return mask, nil
	}

	proc := NewMaskProcessor()
	defer proc.Close()

	if err := proc.Set(mask); err != nil {
		return nil, err
	}
	if params.MorphKernelSize > 0 {
		if err := proc.Open(params.MorphKernelSize); err != nil {
			return nil, err
		}
	}
	if params.BlurKernelSize > 0 {
		if err := proc.Smooth(params.BlurKernelSize); err != nil {
			return nil, err
		}
	}

	return proc.Mask()
}
