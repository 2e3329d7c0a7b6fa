package report

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/nvr-ai/go-imgdiff/diff"
	"github.com/nvr-ai/go-imgdiff/images"
	"github.com/pkg/errors"
)

// Artifact file names written by SaveComparison and SavePair.
const (
	DifferenceFile = "difference.png"
	HighlightFile  = "highlight.png"
	HeatmapFile    = "heatmap.png"
	RegionsFile    = "regions.png"
	SideBySideFile = "side_by_side.png"
	ReportFile     = "report.txt"
	PairDiffFile   = "diff_highlight.png"
	QuickDiffFile  = "quick_diff.png"
)

// Options controls the parameters artifacts are rendered with.
type Options struct {
	// Params drive the highlight render, processed statistics, and the
	// highlight panel of the side-by-side image.
	Params diff.MaskParams
	// StatsThreshold is the raw statistics threshold.
	StatsThreshold int
	// MinArea is the smallest region kept.
	MinArea int
	// SourceA and SourceB label the inputs in the text report.
	SourceA string
	SourceB string
}

// DefaultOptions returns the stock parameters: raw threshold 10, mask
// threshold 20 with no morphology or blur, and minimum region area 100.
func DefaultOptions() Options {
	return Options{
		Params:         diff.DefaultMaskParams(),
		StatsThreshold: diff.DefaultStatsThreshold,
		MinArea:        diff.DefaultMinArea,
	}
}

// Analyze computes statistics and regions of cmp without writing anything.
func Analyze(cmp *diff.Comparison, opts Options) (Info, error) {
	processed, err := cmp.ProcessedStatistics(opts.Params)
	if err != nil {
		return Info{}, err
	}
	regions, err := cmp.Regions(opts.Params.Threshold, opts.MinArea, opts.Params.MorphKernelSize)
	if err != nil {
		return Info{}, err
	}

	return Info{
		SourceA:   opts.SourceA,
		SourceB:   opts.SourceB,
		Size:      cmp.Size(),
		Resampled: cmp.Resampled(),
		ChecksumA: images.ComputeChecksum(cmp.ImageA()),
		ChecksumB: images.ComputeChecksum(cmp.ImageB()),
		Stats:     cmp.Statistics(opts.StatsThreshold),
		Processed: &processed,
		Regions:   regions,
	}, nil
}

// SaveComparison writes the full artifact set of one comparison into dir:
// the three render modes, the region overlay, the side-by-side panel image
// and the text report.
//
// Arguments:
//   - cmp: The comparison to save.
//   - dir: The output directory; created if missing.
//   - opts: Render and statistics parameters.
//
// Returns:
//   - Info: The statistics and regions that were written.
//   - error: An error if rendering or writing any artifact fails.
//
// Example:
//
// ```go
//
//	opts := report.DefaultOptions()
//	opts.SourceA, opts.SourceB = pathA, pathB
//	info, err := report.SaveComparison(cmp, "comparison_results", opts)
//	fmt.Printf("regions: %d\n", len(info.Regions))
//
// ```
func SaveComparison(cmp *diff.Comparison, dir string, opts Options) (Info, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Info{}, errors.Wrapf(err, "failed to create output directory %s", dir)
	}

	for _, m := range []struct {
		mode diff.Mode
		file string
	}{
		{diff.ModeDifference, DifferenceFile},
		{diff.ModeHighlight, HighlightFile},
		{diff.ModeHeatmap, HeatmapFile},
	} {
		img, err := cmp.Render(m.mode, opts.Params)
		if err != nil {
			return Info{}, err
		}
		if err := diff.SavePNG(filepath.Join(dir, m.file), img); err != nil {
			return Info{}, err
		}
	}

	info, err := Analyze(cmp, opts)
	if err != nil {
		return Info{}, err
	}

	if err := diff.SavePNG(filepath.Join(dir, RegionsFile), cmp.RegionOverlay(info.Regions)); err != nil {
		return Info{}, err
	}

	sbs, err := cmp.SideBySide(opts.Params)
	if err != nil {
		return Info{}, err
	}
	if err := diff.SavePNG(filepath.Join(dir, SideBySideFile), sbs); err != nil {
		return Info{}, err
	}

	var buf bytes.Buffer
	if err := WriteText(&buf, info); err != nil {
		return Info{}, err
	}
	if err := os.WriteFile(filepath.Join(dir, ReportFile), buf.Bytes(), 0o644); err != nil {
		return Info{}, errors.Wrap(err, "failed to write text report")
	}

	return info, nil
}

// SaveQuick writes only the highlight render to path and returns the raw
// statistics at diff.DefaultStatsThreshold.
func SaveQuick(cmp *diff.Comparison, path string, params diff.MaskParams) (diff.Statistics, error) {
	img, err := cmp.Render(diff.ModeHighlight, params)
	if err != nil {
		return diff.Statistics{}, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return diff.Statistics{}, errors.Wrapf(err, "failed to create output directory %s", dir)
		}
	}
	if err := diff.SavePNG(path, img); err != nil {
		return diff.Statistics{}, err
	}
	return cmp.Statistics(diff.DefaultStatsThreshold), nil
}

// SavePair writes the per-row artifacts of a batch pair into dir and fills
// the statistics fields of res.
func SavePair(cmp *diff.Comparison, dir string, opts Options, res *PairResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create output directory %s", dir)
	}

	info, err := Analyze(cmp, opts)
	if err != nil {
		return err
	}
	res.Fill(info)
	res.OutputDir = dir

	highlight, err := cmp.Render(diff.ModeHighlight, opts.Params)
	if err != nil {
		return err
	}
	if err := diff.SavePNG(filepath.Join(dir, PairDiffFile), highlight); err != nil {
		return err
	}

	sbs, err := cmp.SideBySide(opts.Params)
	if err != nil {
		return err
	}
	if err := diff.SavePNG(filepath.Join(dir, SideBySideFile), sbs); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := PairText(&buf, *res); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, ReportFile), buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(err, "failed to write pair report")
	}

	return nil
}

// Fill copies the statistics of info into the result row.
func (r *PairResult) Fill(info Info) {
	r.DiffPercentage = info.Stats.DiffPercentage
	r.ChangedPixels = info.Stats.ChangedPixels
	r.ChangedPercentage = info.Stats.ChangedPercentage
	r.MeanDiffR = info.Stats.MeanDiff.R
	r.MeanDiffG = info.Stats.MeanDiff.G
	r.MeanDiffB = info.Stats.MeanDiff.B
	r.ImageWidth = info.Size.X
	r.ImageHeight = info.Size.Y
	r.Resampled = info.Resampled
	r.RegionCount = len(info.Regions)
	r.Identical = info.Identical()
}
