// OpenCV-backed post-processing of change masks.
//
// The MaskProcessor wraps the native side of the mask pipeline:
//
// ┌──────────────────────────┐
// │ Threshold mask (0/1 u8)  │
// └──────┬───────────────────┘
// ┌──────────────────────────┐
// │ Opening (erode, dilate)  │  MorphEllipse kernel
// └──────┬───────────────────┘
// ┌──────────────────────────┐
// │ Gaussian smoothing (f32) │  re-binarized at > 0.5
// └──────┬───────────────────┘
// ┌──────────────────────────┐
// │ Connected components     │  8-connectivity
// └──────────────────────────┘
//
// Note: You must call Close() when finished to release native resources.

package diff

import (
	"cmp"
	"image"
	"slices"

	"github.com/nvr-ai/go-imgdiff/common"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// MaskProcessor holds a binary mask as an OpenCV matrix so several native
// operations can run on it without round-tripping through Go memory.
//
// A MaskProcessor is not safe for concurrent use; create one per goroutine.
type MaskProcessor struct {
	// Binary is the current mask, CV_8UC1 with values 0 or 1.
	Binary gocv.Mat
	// data backs Binary when it was created from Go memory.
	data []byte
}

// NewMaskProcessor constructs an empty MaskProcessor.
//
// Always call Close() to release memory.
func NewMaskProcessor() *MaskProcessor {
	return &MaskProcessor{Binary: gocv.NewMat()}
}

// Set loads a Go mask into the processor, replacing any previous matrix.
//
// Arguments:
//   - m: The mask to load. Must be non-empty.
//
// Returns:
//   - error: An error if the mask is empty or the matrix cannot be created.
func (p *MaskProcessor) Set(m *Mask) error {
	if m.Empty() {
		return errors.New("cannot load an empty mask")
	}

	buf := make([]byte, len(m.Pix))
	for i, on := range m.Pix {
		if on {
			buf[i] = 1
		}
	}

	mat, err := gocv.NewMatFromBytes(m.Height, m.Width, gocv.MatTypeCV8UC1, buf)
	if err != nil {
		return errors.Wrap(err, "failed to create mask matrix")
	}
	p.replace(mat)
	p.data = buf

	return nil
}

// Open applies morphological opening (erosion followed by dilation) with an
// elliptical structuring element. Opening never grows a region; it only
// removes specks and thin strands narrower than the kernel.
//
// Arguments:
//   - size: Kernel width and height in pixels; must be > 0.
func (p *MaskProcessor) Open(size int) error {
	if size <= 0 {
		return errors.Errorf("morphology kernel size must be > 0, got %d", size)
	}

	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(size, size))
	defer kernel.Close()

	opened := gocv.NewMat()
	if err := gocv.MorphologyEx(p.Binary, &opened, gocv.MorphOpen, kernel); err != nil {
		opened.Close()
		return errors.Wrap(err, "morphological opening failed")
	}
	p.replace(opened)

	return nil
}

// Smooth blurs the mask as a 0/1 float field with a Gaussian kernel and
// re-binarizes it at intensity > 0.5. Even kernel sizes are bumped to the
// next odd size.
//
// Arguments:
//   - size: Kernel width and height in pixels; must be > 0.
func (p *MaskProcessor) Smooth(size int) error {
	if size <= 0 {
		return errors.Errorf("blur kernel size must be > 0, got %d", size)
	}
	if size%2 == 0 {
		size++
	}

	field := gocv.NewMat()
	defer field.Close()
	if err := p.Binary.ConvertTo(&field, gocv.MatTypeCV32F); err != nil {
		return errors.Wrap(err, "failed to convert mask to float")
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	if err := gocv.GaussianBlur(field, &blurred, image.Pt(size, size), 0, 0, gocv.BorderDefault); err != nil {
		return errors.Wrap(err, "gaussian blur failed")
	}

	thresholded := gocv.NewMat()
	defer thresholded.Close()
	gocv.Threshold(blurred, &thresholded, 0.5, 1, gocv.ThresholdBinary)

	binary := gocv.NewMat()
	if err := thresholded.ConvertTo(&binary, gocv.MatTypeCV8U); err != nil {
		binary.Close()
		return errors.Wrap(err, "failed to convert smoothed mask to binary")
	}
	p.replace(binary)

	return nil
}

// Mask copies the current matrix back into a Go mask.
func (p *MaskProcessor) Mask() (*Mask, error) {
	if p.Binary.Empty() {
		return nil, errors.New("mask processor holds no mask")
	}

	data, err := p.Binary.DataPtrUint8()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read mask data")
	}

	m := NewMask(p.Binary.Cols(), p.Binary.Rows())
	for i := range m.Pix {
		m.Pix[i] = data[i] != 0
	}

	return m, nil
}

// Components labels the 8-connected components of the current mask and
// returns those with at least minArea pixels, ordered by the top edge of
// each bounding box and then by its left edge. OpenCV label ids depend on its
// block scan, so they are not used for ordering.
//
// Arguments:
//   - minArea: Components with fewer pixels are discarded.
//
// Returns:
//   - []common.Region: Bounding boxes and true pixel areas.
func (p *MaskProcessor) Components(minArea int) []common.Region {
	labels := gocv.NewMat()
	defer labels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()

	n := gocv.ConnectedComponentsWithStats(p.Binary, &labels, &stats, &centroids)

	regions := make([]common.Region, 0, n)
	// Label 0 is the background.
	for label := 1; label < n; label++ {
		area := int(stats.GetIntAt(label, int(gocv.CCStatArea)))
		if area < minArea {
			continue
		}
		regions = append(regions, common.Region{
			X:      int(stats.GetIntAt(label, int(gocv.CCStatLeft))),
			Y:      int(stats.GetIntAt(label, int(gocv.CCStatTop))),
			Width:  int(stats.GetIntAt(label, int(gocv.CCStatWidth))),
			Height: int(stats.GetIntAt(label, int(gocv.CCStatHeight))),
			Area:   area,
		})
	}

	slices.SortStableFunc(regions, func(a, b common.Region) int {
		if a.Y != b.Y {
			return cmp.Compare(a.Y, b.Y)
		}
		return cmp.Compare(a.X, b.X)
	})

	return regions
}

func (p *MaskProcessor) replace(mat gocv.Mat) {
	p.Binary.Close()
	p.Binary = mat
	p.data = nil
}

// Close releases all OpenCV native resources used by the processor.
func (p *MaskProcessor) Close() {
	p.Binary.Close()
	p.data = nil
}
