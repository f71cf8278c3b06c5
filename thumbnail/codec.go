package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	sferrors "github.com/randalmurphal/storyflow/errors"
)

// JPEGQuality is used when re-encoding JPEG thumbnails.
const JPEGQuality = 90

// Decode reads an image and reports its format name.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if err == image.ErrFormat {
			return nil, "", sferrors.ErrUnsupportedFormat
		}
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// Encode writes img in format.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case "png":
		return png.Encode(w, img)
	case "gif":
		return gif.Encode(w, img, nil)
	case "bmp":
		return bmp.Encode(w, img)
	case "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %s", sferrors.ErrUnsupportedFormat, format)
	}
}

// ContentType returns the MIME type for a format name.
func ContentType(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "tiff":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

// Transform decodes data, scales it to percent and re-encodes it in the
// source format.
func Transform(data []byte, percent int) ([]byte, string, error) {
	img, format, err := Decode(data)
	if err != nil {
		return nil, "", err
	}

	scaled, err := Scale(img, percent)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, scaled, format); err != nil {
		return nil, "", fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), format, nil
}
