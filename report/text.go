// Package report - Human and machine readable output for image comparisons.
//
// A single comparison produces a plain-text report plus a directory of
// rendered PNGs; a batch produces JSON, CSV and HTML summaries over the
// per-pair results.
package report

import (
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/nvr-ai/go-imgdiff/common"
	"github.com/nvr-ai/go-imgdiff/diff"
	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Info is everything the text report prints about one comparison.
type Info struct {
	// SourceA and SourceB name the compared inputs.
	SourceA string
	SourceB string
	// Size is the normalized image size.
	Size image.Point
	// Resampled notes that SourceB was resized to Size.
	Resampled bool
	// ChecksumA and ChecksumB are content checksums of the normalized images.
	ChecksumA string
	ChecksumB string
	// Stats are the raw statistics.
	Stats diff.Statistics
	// Processed optionally carries the mask-consistent statistics.
	Processed *diff.ProcessedStatistics
	// Regions are the extracted change regions.
	Regions []common.Region
}

// Identical reports whether both normalized images hold the same pixels.
func (i Info) Identical() bool {
	return i.ChecksumA != "" && i.ChecksumA == i.ChecksumB
}

const rule = "====================================="
const subRule = "-------------------------------------"

// WriteText writes the plain-text comparison report.
//
// Arguments:
//   - w: The destination.
//   - info: The comparison to describe.
//
// Returns:
//   - error: An error if writing fails.
func WriteText(w io.Writer, info Info) error {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	p.Fprintf(&b, "Image comparison report\n%s\n", rule)
	p.Fprintf(&b, "Image 1: %s\n", info.SourceA)
	p.Fprintf(&b, "Image 2: %s\n", info.SourceB)
	fmt.Fprintf(&b, "Image size: %dx%d\n", info.Size.X, info.Size.Y)
	if info.Resampled {
		b.WriteString("Note: image 2 was resized to match image 1; statistics are approximate\n")
	}
	if info.Identical() {
		b.WriteString("Pixel data: identical\n")
	}

	s := info.Stats
	p.Fprintf(&b, "\nStatistics\n%s\n", subRule)
	p.Fprintf(&b, "Total pixels: %d\n", s.TotalPixels)
	p.Fprintf(&b, "Changed pixels: %d (%.2f%%)\n", s.ChangedPixels, s.ChangedPercentage)
	p.Fprintf(&b, "Overall difference: %.2f%%\n", s.DiffPercentage)
	p.Fprintf(&b, "Verdict: %s\n", Verdict(s.DiffPercentage))

	if ps := info.Processed; ps != nil {
		p.Fprintf(&b, "\nProcessed statistics (threshold %d, morphology %d, blur %d)\n%s\n",
			ps.Params.Threshold, ps.Params.MorphKernelSize, ps.Params.BlurKernelSize, subRule)
		p.Fprintf(&b, "Changed pixels: %d (%.2f%%)\n", ps.ChangedPixels, ps.ChangedPercentage)
		p.Fprintf(&b, "Difference within mask: %.2f%%\n", ps.DiffPercentage)
	}

	p.Fprintf(&b, "\nMean difference per channel\n%s\n", subRule)
	p.Fprintf(&b, "Red:   %.2f\nGreen: %.2f\nBlue:  %.2f\n", s.MeanDiff.R, s.MeanDiff.G, s.MeanDiff.B)

	p.Fprintf(&b, "\nMax difference per channel\n%s\n", subRule)
	p.Fprintf(&b, "Red:   %d\nGreen: %d\nBlue:  %d\n", s.MaxDiff.R, s.MaxDiff.G, s.MaxDiff.B)

	p.Fprintf(&b, "\nChanged regions\n%s\n", subRule)
	p.Fprintf(&b, "Regions found: %d\n", len(info.Regions))
	for i, r := range info.Regions {
		p.Fprintf(&b, "\nRegion %d:\n", i+1)
		fmt.Fprintf(&b, "  Position: (%d, %d)\n", r.X, r.Y)
		fmt.Fprintf(&b, "  Size: %d x %d\n", r.Width, r.Height)
		p.Fprintf(&b, "  Area: %d pixels\n", r.Area)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.Wrap(err, "failed to write report")
	}
	return nil
}

// PairText is the short report written next to each batch pair's artifacts.
func PairText(w io.Writer, res PairResult) error {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	p.Fprintf(&b, "Comparison report\n%s\n", strings.Repeat("=", 50))
	p.Fprintf(&b, "Name: %s\n", res.Name)
	p.Fprintf(&b, "Description: %s\n", res.Description)
	p.Fprintf(&b, "Image 1: %s\n", res.Image1)
	p.Fprintf(&b, "Image 2: %s\n", res.Image2)
	p.Fprintf(&b, "Difference: %.2f%%\n", res.DiffPercentage)
	p.Fprintf(&b, "Changed pixels: %.2f%%\n", res.ChangedPercentage)
	p.Fprintf(&b, "Regions: %d\n", res.RegionCount)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.Wrap(err, "failed to write pair report")
	}
	return nil
}
