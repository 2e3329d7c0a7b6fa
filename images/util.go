package images

import (
	"crypto/md5"
	"fmt"
	"image"
)

// ComputeChecksum generates a deterministic checksum of an image's RGB content,
// so batch reports can show whether two inputs are byte-identical rasters.
//
// Arguments:
// - img: The image to compute checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string, or "empty" for a zero-size image.
//
// Example:
//
// ```go
//
//	checksum := ComputeChecksum(pair.A)
//	fmt.Printf("Image checksum: %s\n", checksum)
//
// ```
func ComputeChecksum(img *image.RGBA) string {
	if img == nil || img.Rect.Empty() {
		return "empty"
	}

	hash := md5.New()
	w := img.Rect.Dx()
	for y := 0; y < img.Rect.Dy(); y++ {
		off := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		row := img.Pix[off : off+w*4]
		hash.Write(row)
	}
	return fmt.Sprintf("%x", hash.Sum(nil))
}
