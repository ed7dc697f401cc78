package handler

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

const (
	maxImageBytes    = 20 * 1024 * 1024
	modelMaxDim      = 250 // longest edge sent to the model
	modelJPEGQuality = 75
)

// detectImageType sniffs the MIME type from magic bytes, defaulting to JPEG.
func detectImageType(data []byte) string {
	switch {
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return "image/jpeg"
	case bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return "image/png"
	case bytes.HasPrefix(data, []byte("RIFF")) && len(data) > 12 && bytes.Equal(data[8:12], []byte("WEBP")):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// prepareForModel downscales an inbound image to a small JPEG suitable for a
// multimodal completion request. Images already within bounds are only
// re-encoded when they are not JPEG.
func prepareForModel(data []byte) ([]byte, error) {
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image too large: %d bytes, max %d", len(data), maxImageBytes)
	}

	var (
		img image.Image
		err error
	)
	switch detectImageType(data) {
	case "image/png":
		img, err = png.Decode(bytes.NewReader(data))
	case "image/webp":
		img, err = webp.Decode(bytes.NewReader(data))
	default:
		img, err = jpeg.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img = downscale(img, modelMaxDim)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: modelJPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// downscale shrinks img so its longest edge is at most maxDim, preserving
// the aspect ratio. Smaller images are returned as-is.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxDim {
		return img
	}

	scale := float64(maxDim) / float64(longest)
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
