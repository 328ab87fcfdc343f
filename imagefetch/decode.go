package imagefetch

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Dimensions is the pixel size of an image.
type Dimensions struct {
	Width  int
	Height int
	Format string
}

// AspectRatio returns height / width.
func (d Dimensions) AspectRatio() float64 {
	if d.Width == 0 {
		return 0
	}
	return float64(d.Height) / float64(d.Width)
}

// DecodeDimensions reads only the image header.
func DecodeDimensions(data []byte) (Dimensions, error) {
	if len(data) == 0 {
		return Dimensions{}, fmt.Errorf("imagefetch: empty image data")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Dimensions{}, fmt.Errorf("imagefetch: decode header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Dimensions{}, fmt.Errorf("imagefetch: invalid image size %dx%d", cfg.Width, cfg.Height)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}
