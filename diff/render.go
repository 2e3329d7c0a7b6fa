package diff

import (
	"image"
	"image/color"
	"strings"

	"github.com/nvr-ai/go-imgdiff/images"
)

// Mode selects a visualization.
type Mode string

const (
	// ModeDifference renders the raw per-channel difference.
	ModeDifference Mode = "difference"
	// ModeHighlight paints changed pixels red over a grayscale copy of image A.
	ModeHighlight Mode = "highlight"
	// ModeHeatmap maps mean channel difference to a blue-to-red gradient.
	ModeHeatmap Mode = "heatmap"
)

// Modes lists every supported visualization.
var Modes = []Mode{ModeDifference, ModeHighlight, ModeHeatmap}

// HighlightColor is the color painted over changed pixels.
var HighlightColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}

// ParseMode converts a mode string into a Mode.
//
// Returns:
//   - Mode: The parsed mode.
//   - error: *InvalidModeError for anything outside Modes.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", &InvalidModeError{Mode: s}
}

// Render draws one visualization of arr.
//
// Arguments:
//   - mode: Which visualization to draw.
//   - base: Image A; used as the grayscale backdrop by ModeHighlight.
//   - arr: The difference array.
//   - params: Mask parameters, used by ModeHighlight only.
//
// Returns:
//   - *image.RGBA: The rendered image, same size as arr.
//   - error: *InvalidModeError for an unknown mode, ErrSizeMismatch when base
//     and arr disagree, or a mask building error.
func Render(mode Mode, base *image.RGBA, arr *Array, params MaskParams) (*image.RGBA, error) {
	switch mode {
	case ModeDifference:
		return arr.Image(), nil
	case ModeHighlight:
		if base.Rect.Size() != image.Pt(arr.Width, arr.Height) {
			return nil, ErrSizeMismatch
		}
		mask, err := BuildMask(arr, params)
		if err != nil {
			return nil, err
		}
		return RenderHighlight(base, mask), nil
	case ModeHeatmap:
		return RenderHeatmap(arr), nil
	default:
		return nil, &InvalidModeError{Mode: string(mode)}
	}
}

// RenderHighlight converts base to grayscale and paints every masked pixel
// with HighlightColor.
func RenderHighlight(base *image.RGBA, mask *Mask) *image.RGBA {
	out := images.Grayscale(base)
	for i, on := range mask.Pix {
		if !on {
			continue
		}
		off := i * 4
		out.Pix[off+0] = HighlightColor.R
		out.Pix[off+1] = HighlightColor.G
		out.Pix[off+2] = HighlightColor.B
	}
	return out
}

// RenderHeatmap maps each pixel's mean channel difference, scaled so the
// largest observed mean becomes 255, onto red (high) and blue (low). When
// every difference is zero no scaling happens and the output is pure blue.
func RenderHeatmap(arr *Array) *image.RGBA {
	total := arr.TotalPixels()
	intensity := make([]float64, total)
	peak := 0.0
	for i := range intensity {
		v := float64(arr.PixelSum(i)) / Channels
		intensity[i] = v
		if v > peak {
			peak = v
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, arr.Width, arr.Height))
	for i, v := range intensity {
		if peak > 0 {
			v = v * 255 / peak
		}
		off := i * 4
		out.Pix[off+0] = uint8(v)
		out.Pix[off+1] = 0
		out.Pix[off+2] = uint8(255 - v)
		out.Pix[off+3] = 0xFF
	}

	return out
}
