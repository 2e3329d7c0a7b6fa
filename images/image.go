// Package images - Loading and normalization of the two rasters being compared.
package images

import "image"

// Source describes where an image comes from. Exactly one of Path or Data is
// expected to be set; when both are present Data wins.
type Source struct {
	// Path is a filesystem path to an encoded image.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	// Data holds the encoded image bytes.
	Data []byte `json:"-" yaml:"-"`
	// Format optionally declares the encoding. FormatUnknown sniffs the bytes.
	Format ImageFormat `json:"format,omitempty" yaml:"format,omitempty"`
}

// String returns a human readable name for the source, used in errors and reports.
func (s Source) String() string {
	if s.Path != "" {
		return s.Path
	}
	return "<memory>"
}

// Pair holds two images that share identical bounds after normalization.
type Pair struct {
	// A is the first (reference) image, converted to truecolor.
	A *image.RGBA
	// B is the second image, converted to truecolor and resampled to A's size
	// when the original sizes differed.
	B *image.RGBA
	// SizeA is the original pixel size of A.
	SizeA image.Point
	// SizeB is the original pixel size of B, before any resampling.
	SizeB image.Point
	// Resampled reports whether B had to be resized to match A.
	Resampled bool
}
