// Package common - value types shared between the diff engine and its callers.
package common

import (
	"fmt"
	"image"
)

// Region is one connected component of a change mask.
type Region struct {
	// X is the left-most column of the component.
	X int `json:"x"`
	// Y is the top-most row of the component.
	Y int `json:"y"`
	// Width is the inclusive bounding-box width in pixels.
	Width int `json:"width"`
	// Height is the inclusive bounding-box height in pixels.
	Height int `json:"height"`
	// Area is the number of foreground pixels in the component, not the box.
	Area int `json:"area"`
}

func (r Region) String() string {
	return fmt.Sprintf("Region (%d, %d) %dx%d area=%d", r.X, r.Y, r.Width, r.Height, r.Area)
}

// ToRect converts the region's bounding box to an image.Rectangle.
//
// Returns:
// - An image.Rectangle whose Max corner is exclusive.
//
// @example
// r := Region{X: 10, Y: 20, Width: 5, Height: 3}
// rect := r.ToRect() // (10,20)-(15,23)
func (r Region) ToRect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// BoxArea returns the pixel area of the bounding box, which is never smaller
// than Area.
func (r Region) BoxArea() int {
	return r.Width * r.Height
}
