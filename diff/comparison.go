package diff

import (
	"image"
	"log"

	"github.com/nvr-ai/go-imgdiff/common"
	"github.com/nvr-ai/go-imgdiff/images"
)

const (
	// DefaultStatsThreshold is the threshold used by the plain raw statistics call.
	DefaultStatsThreshold = 10
	// DefaultThreshold is the threshold used by renders, regions and processed
	// statistics when the caller gives none.
	DefaultThreshold = 20
	// DefaultMinArea is the smallest region kept by default, in pixels.
	DefaultMinArea = 100
)

// DefaultMaskParams returns threshold 20 with opening and smoothing disabled.
func DefaultMaskParams() MaskParams {
	return MaskParams{Threshold: DefaultThreshold}
}

// Option configures a Comparison.
type Option func(*Comparison)

// WithLogger sets the logger the resampling notice is written to.
func WithLogger(logger *log.Logger) Option {
	return func(c *Comparison) {
		c.logger = logger
	}
}

// WithWarningHandler registers a callback that receives the resampling notice.
func WithWarningHandler(fn func(DimensionMismatchWarning)) Option {
	return func(c *Comparison) {
		c.onWarning = fn
	}
}

// Comparison holds one normalized image pair and its difference array. All
// fields are fixed at construction, so a Comparison can be shared by
// concurrent readers; every method derives its output on demand.
type Comparison struct {
	a, b      *image.RGBA
	arr       *Array
	warning   *DimensionMismatchWarning
	logger    *log.Logger
	onWarning func(DimensionMismatchWarning)
}

// Result bundles both statistics variants of a comparison.
type Result struct {
	// Raw uses a plain threshold mask at DefaultStatsThreshold.
	Raw Statistics `json:"raw"`
	// Processed uses DefaultMaskParams and matches the default highlight render.
	Processed ProcessedStatistics `json:"processed"`
}

// Open loads two image files and compares them.
//
// Arguments:
//   - pathA: The reference image.
//   - pathB: The image compared against the reference.
//   - opts: Optional logger and warning handler.
//
// Returns:
//   - *Comparison: The ready comparison.
//   - error: A *images.LoadError when either file cannot be loaded.
//
// Example:
//
// ```go
//
//	cmp, err := diff.Open("before.png", "after.png", diff.WithLogger(log.Default()))
//	if err != nil {
//	    return err
//	}
//	res := cmp.Compare()
//	fmt.Printf("changed: %.2f%%\n", res.Processed.ChangedPercentage)
//
// ```
func Open(pathA, pathB string, opts ...Option) (*Comparison, error) {
	return FromSources(images.Source{Path: pathA}, images.Source{Path: pathB}, opts...)
}

// FromSources loads two sources (paths or in-memory bytes) and compares them.
func FromSources(srcA, srcB images.Source, opts ...Option) (*Comparison, error) {
	a, err := images.LoadSource(srcA)
	if err != nil {
		return nil, err
	}
	b, err := images.LoadSource(srcB)
	if err != nil {
		return nil, err
	}
	return FromImages(a, b, opts...)
}

// FromImages compares two already decoded images. When their sizes differ
// b is resampled to a's size and a DimensionMismatchWarning is emitted through
// the configured logger and handler.
//
// Arguments:
//   - a: The reference image.
//   - b: The image compared against a.
//   - opts: Optional logger and warning handler.
//
// Returns:
//   - *Comparison: The ready comparison.
//   - error: An error if b cannot be resampled.
func FromImages(a, b image.Image, opts ...Option) (*Comparison, error) {
	c := &Comparison{}
	for _, opt := range opts {
		opt(c)
	}

	pair, err := images.Normalize(a, b)
	if err != nil {
		return nil, err
	}
	if pair.Resampled {
		w := DimensionMismatchWarning{SizeA: pair.SizeA, SizeB: pair.SizeB}
		c.warning = &w
		if c.logger != nil {
			c.logger.Printf("⚠️  %v", w)
		}
		if c.onWarning != nil {
			c.onWarning(w)
		}
	}

	arr, err := Compute(pair.A, pair.B)
	if err != nil {
		return nil, err
	}

	c.a, c.b, c.arr = pair.A, pair.B, arr

	return c, nil
}

// ImageA returns the normalized reference image. Callers must not modify it.
func (c *Comparison) ImageA() *image.RGBA { return c.a }

// ImageB returns the normalized, possibly resampled, second image. Callers
// must not modify it.
func (c *Comparison) ImageB() *image.RGBA { return c.b }

// Difference returns the shared difference array. Callers must not modify it.
func (c *Comparison) Difference() *Array { return c.arr }

// Size returns the normalized pixel size of both images.
func (c *Comparison) Size() image.Point { return image.Pt(c.arr.Width, c.arr.Height) }

// Resampled reports whether image B had to be resized.
func (c *Comparison) Resampled() bool { return c.warning != nil }

// Warning returns the resampling notice, or nil when none was needed.
func (c *Comparison) Warning() *DimensionMismatchWarning { return c.warning }

// Statistics returns the raw statistics at threshold.
func (c *Comparison) Statistics(threshold int) Statistics {
	return ComputeStatistics(c.arr, threshold)
}

// ProcessedStatistics builds the final mask for params and derives statistics
// from it.
func (c *Comparison) ProcessedStatistics(params MaskParams) (ProcessedStatistics, error) {
	mask, err := BuildMask(c.arr, params)
	if err != nil {
		return ProcessedStatistics{}, err
	}
	return ComputeProcessedStatistics(c.arr, mask, params), nil
}

// Compare returns raw statistics at DefaultStatsThreshold and processed
// statistics at DefaultMaskParams. The default mask needs no OpenCV step, so
// this call cannot fail.
func (c *Comparison) Compare() Result {
	params := DefaultMaskParams()
	return Result{
		Raw:       c.Statistics(DefaultStatsThreshold),
		Processed: ComputeProcessedStatistics(c.arr, ThresholdMask(c.arr, params.Threshold), params),
	}
}

// Render draws one visualization mode.
func (c *Comparison) Render(mode Mode, params MaskParams) (*image.RGBA, error) {
	return Render(mode, c.a, c.arr, params)
}

// Regions extracts connected changed regions.
func (c *Comparison) Regions(threshold, minArea, morphKernelSize int) ([]common.Region, error) {
	return FindRegions(c.arr, threshold, minArea, morphKernelSize)
}

// SideBySide composes both inputs with the difference and highlight renders.
func (c *Comparison) SideBySide(params MaskParams) (*image.RGBA, error) {
	return SideBySide(c.a, c.b, c.arr, params)
}

// RegionOverlay outlines regions on a copy of image A.
func (c *Comparison) RegionOverlay(regions []common.Region) *image.RGBA {
	return DrawRegions(c.a, regions)
}
