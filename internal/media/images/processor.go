package images

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
)

const (
	// maxImageDim caps the longest edge of stored photos.
	// Phone cameras produce 4000px+ images; nothing in the UI needs that.
	maxImageDim = 1600

	// jpegQuality for re-encoded images.
	jpegQuality = 85
)

// Normalize prepares an uploaded photo for storage: oversized images are
// downscaled to maxImageDim on the longest edge and everything is
// re-encoded as JPEG. Images already within bounds are re-encoded but not
// resized, which also strips metadata.
func Normalize(imgData []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imgData))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > maxImageDim || height > maxImageDim {
		var dstWidth, dstHeight int
		if width > height {
			dstWidth = maxImageDim
			dstHeight = (height * maxImageDim) / width
		} else {
			dstHeight = maxImageDim
			dstWidth = (width * maxImageDim) / height
		}
		if dstWidth < 1 {
			dstWidth = 1
		}
		if dstHeight < 1 {
			dstHeight = 1
		}

		dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}
