package diff

import (
	"image"

	"github.com/fogleman/gg"
	"github.com/nvr-ai/go-imgdiff/common"
	"github.com/pkg/errors"
)

const (
	// panelPadding is the gap around and between panels, in pixels.
	panelPadding = 10
	// captionHeight is the band above each panel reserved for its caption.
	captionHeight = 24
	// regionStrokeWidth is the outline width used by DrawRegions.
	regionStrokeWidth = 2
)

// Panel is one captioned tile of a composed comparison image.
type Panel struct {
	Caption string
	Image   image.Image
}

// TilePanels lays panels out left to right on a white canvas, each under its
// caption. Panels may differ in size; the canvas fits the tallest one.
//
// Arguments:
//   - panels: The tiles in display order.
//
// Returns:
//   - *image.RGBA: The composed image.
//   - error: An error if no panels are given.
func TilePanels(panels []Panel) (*image.RGBA, error) {
	if len(panels) == 0 {
		return nil, errors.New("no panels to compose")
	}

	width, maxHeight := panelPadding, 0
	for _, p := range panels {
		size := p.Image.Bounds().Size()
		width += size.X + panelPadding
		if size.Y > maxHeight {
			maxHeight = size.Y
		}
	}
	height := panelPadding + captionHeight + maxHeight + panelPadding

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)

	x := panelPadding
	for _, p := range panels {
		size := p.Image.Bounds().Size()
		dc.DrawStringAnchored(p.Caption, float64(x)+float64(size.X)/2, panelPadding+captionHeight/2, 0.5, 0.5)
		dc.DrawImage(p.Image, x, panelPadding+captionHeight)
		x += size.X + panelPadding
	}

	return toRGBA(dc.Image()), nil
}

// SideBySide composes image A, image B, the raw difference, and the highlight
// render for params into one horizontally tiled, captioned image.
func SideBySide(a, b *image.RGBA, arr *Array, params MaskParams) (*image.RGBA, error) {
	highlight, err := Render(ModeHighlight, a, arr, params)
	if err != nil {
		return nil, err
	}

	return TilePanels([]Panel{
		{Caption: "Image 1", Image: a},
		{Caption: "Image 2", Image: b},
		{Caption: "Pixel difference", Image: arr.Image()},
		{Caption: "Changed regions", Image: highlight},
	})
}

// DrawRegions returns a copy of base with a red outline around every region.
func DrawRegions(base image.Image, regions []common.Region) *image.RGBA {
	b := base.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.DrawImage(base, -b.Min.X, -b.Min.Y)

	dc.SetRGB(1, 0, 0)
	dc.SetLineWidth(regionStrokeWidth)
	for _, r := range regions {
		rect := r.ToRect()
		dc.DrawRectangle(float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()))
		dc.Stroke()
	}

	return toRGBA(dc.Image())
}

// SavePNG encodes img as PNG at path.
func SavePNG(path string, img image.Image) error {
	if err := gg.SavePNG(path, img); err != nil {
		return errors.Wrapf(err, "failed to save %s", path)
	}
	return nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}
