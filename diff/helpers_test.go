package diff

import (
	"image"
	"image/color"
	"image/draw"
)

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	red   = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	black = color.RGBA{A: 255}
)

// solid returns a w x h image filled with c.
func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

// withRects returns a copy of img with every rect filled with c.
func withRects(img *image.RGBA, c color.RGBA, rects ...image.Rectangle) *image.RGBA {
	out := image.NewRGBA(img.Rect)
	copy(out.Pix, img.Pix)
	for _, r := range rects {
		draw.Draw(out, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
	}
	return out
}

// withCircle returns a copy of img with a filled circle of radius r at (cx, cy).
func withCircle(img *image.RGBA, cx, cy, r int, c color.RGBA) *image.RGBA {
	out := withRects(img, c)
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				out.SetRGBA(x, y, c)
			}
		}
	}
	return out
}

// noisy returns a copy of img where every pixel index divisible by step is
// set to c, producing isolated specks.
func noisy(img *image.RGBA, step int, c color.RGBA) *image.RGBA {
	out := withRects(img, c)
	w := img.Rect.Dx()
	for i := 0; i < w*img.Rect.Dy(); i += step {
		out.SetRGBA(i%w, i/w, c)
	}
	return out
}

func mustCompute(a, b *image.RGBA) *Array {
	arr, err := Compute(a, b)
	if err != nil {
		panic(err)
	}
	return arr
}
