package diff

import (
	"github.com/nvr-ai/go-imgdiff/common"
	"github.com/pkg/errors"
)

// FindRegions extracts the connected changed regions of arr.
//
// The mask is thresholded and optionally opened, but never smoothed: blur only
// affects how regions look, not how they connect. Components are labelled with
// 8-connectivity, so diagonal neighbours belong to the same region.
//
// Arguments:
//   - arr: The difference array.
//   - threshold: Per-channel difference a pixel must exceed.
//   - minArea: Components with fewer foreground pixels are dropped.
//   - morphKernelSize: Opening kernel size, 0 to disable.
//
// Returns:
//   - []common.Region: Regions ordered top to bottom, then left to right.
//   - error: An error if parameters are invalid or an OpenCV call fails.
func FindRegions(arr *Array, threshold, minArea, morphKernelSize int) ([]common.Region, error) {
	if err := (MaskParams{Threshold: threshold, MorphKernelSize: morphKernelSize}).Validate(); err != nil {
		return nil, err
	}
	if minArea < 0 {
		return nil, errors.Errorf("min area must be >= 0, got %d", minArea)
	}

	mask := ThresholdMask(arr, threshold)
	if mask.Empty() || mask.Count() == 0 {
		return []common.Region{}, nil
	}

	proc := NewMaskProcessor()
	defer proc.Close()

	if err := proc.Set(mask); err != nil {
		return nil, err
	}
	if morphKernelSize > 0 {
		if err := proc.Open(morphKernelSize); err != nil {
			return nil, err
		}
	}

	return proc.Components(minArea), nil
}
