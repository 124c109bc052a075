package importer

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

// Image upload limits for OCR and storage scans.
var (
	ErrImageTooLarge    = fmt.Errorf("image exceeds 10MB limit")
	ErrUnsupportedImage = fmt.Errorf("unsupported image type, use JPEG, PNG or WebP")
)

const maxImageBytes = 10 << 20
const maxImageWidth = 1600

// validateImage checks size and content type and returns the short format
// name used when handing the image to the model.
func validateImage(data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty image upload")
	}
	if len(data) > maxImageBytes {
		return "", ErrImageTooLarge
	}
	switch contentType {
	case "image/jpeg", "image/jpg":
		return "jpeg", nil
	case "image/png":
		return "png", nil
	case "image/webp":
		return "webp", nil
	}
	return "", ErrUnsupportedImage
}

// downscale resizes wide photos before sending them to the model. Images that
// cannot be decoded (WebP among them) pass through unchanged.
func downscale(data []byte, format string) ([]byte, string) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, format
	}
	if img.Bounds().Dx() <= maxImageWidth {
		return data, format
	}

	resized := resize.Resize(maxImageWidth, 0, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return data, format
	}
	return buf.Bytes(), "jpeg"
}
