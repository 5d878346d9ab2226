package processor

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	FallbackWidth  = 1024
	FallbackHeight = 1024
)

// DecodedImage is a decoded source together with the dimensions used for
// layout. Width and Height fall back to 1024x1024 when the decoder reports an
// empty canvas.
type DecodedImage struct {
	Image  image.Image
	Width  int
	Height int
	Format string
}

func decodeImage(data []byte) (*DecodedImage, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		width, height = FallbackWidth, FallbackHeight
	}

	return &DecodedImage{
		Image:  img,
		Width:  width,
		Height: height,
		Format: format,
	}, nil
}
