package images

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ImageFormat represents supported image formats
type ImageFormat string

const (
	FormatUnknown ImageFormat = ""
	FormatJPEG    ImageFormat = "jpeg"
	FormatWebP    ImageFormat = "webp"
	FormatPNG     ImageFormat = "png"
	FormatGIF     ImageFormat = "gif"
	FormatBMP     ImageFormat = "bmp"
	FormatTIFF    ImageFormat = "tiff"
)

// SupportedExtensions lists the file extensions the loader understands.
var SupportedExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// DetectFormat sniffs the magic bytes at the start of data.
//
// Arguments:
//   - data: The encoded image bytes.
//
// Returns:
//   - ImageFormat: The detected format, or FormatUnknown.
func DetectFormat(data []byte) ImageFormat {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return FormatPNG
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return FormatJPEG
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return FormatGIF
	case bytes.HasPrefix(data, []byte("BM")):
		return FormatBMP
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return FormatTIFF
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return FormatWebP
	default:
		return FormatUnknown
	}
}

// Decode decodes data using the given format. When format is FormatUnknown the
// format is sniffed from the bytes.
//
// Arguments:
//   - data: The encoded image bytes.
//   - format: The declared format, or FormatUnknown.
//
// Returns:
//   - image.Image: The decoded image in its native color model.
//   - error: An error if the format is unsupported or decoding fails.
func Decode(data []byte, format ImageFormat) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image data")
	}
	if format == FormatUnknown {
		format = DetectFormat(data)
	}

	var r io.Reader = bytes.NewReader(data)
	var (
		img image.Image
		err error
	)
	switch format {
	case FormatPNG:
		img, err = png.Decode(r)
	case FormatJPEG:
		img, err = jpeg.Decode(r)
	case FormatGIF:
		img, err = gif.Decode(r)
	case FormatBMP:
		img, err = bmp.Decode(r)
	case FormatTIFF:
		img, err = tiff.Decode(r)
	case FormatWebP:
		img, err = webp.Decode(r)
	default:
		return nil, errors.Errorf("unsupported image format: %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s image", format)
	}

	return img, nil
}
