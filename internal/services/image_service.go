package services

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
)

const (
	receiptMaxEdge     = 1600
	receiptJPEGQuality = 85
)

// ErrUnsupportedImage is returned when receipt bytes are not a decodable image.
var ErrUnsupportedImage = errors.New("unsupported image format")

// ImageService normalizes receipt photos before they are stored and sent
// to the assistant.
type ImageService struct {
	maxEdge int
}

func NewImageService() *ImageService {
	return &ImageService{maxEdge: receiptMaxEdge}
}

// PrepareReceipt decodes a photo, applies its EXIF orientation, shrinks it
// so the longest edge fits maxEdge and re-encodes it as JPEG.
func (s *ImageService) PrepareReceipt(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	b := img.Bounds()
	if b.Dx() > s.maxEdge || b.Dy() > s.maxEdge {
		img = imaging.Fit(img, s.maxEdge, s.maxEdge, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(receiptJPEGQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode receipt: %w", err)
	}
	return buf.Bytes(), nil
}

// receiptMIMEType is the type of every image PrepareReceipt returns.
const receiptMIMEType = "image/jpeg"
