package common

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegionToRect(t *testing.T) {
	r := Region{X: 10, Y: 20, Width: 5, Height: 3, Area: 12}
	assert.Equal(t, image.Rect(10, 20, 15, 23), r.ToRect())
	assert.Equal(t, 15, r.BoxArea())
}

func TestRegionString(t *testing.T) {
	r := Region{X: 1, Y: 2, Width: 3, Height: 4, Area: 5}
	assert.Equal(t, "Region (1, 2) 3x4 area=5", r.String())
}
