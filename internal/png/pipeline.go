package png

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type PngImage struct {
	Img    image.Image
	Bounds image.Rectangle
	// Format is the name of the decoder that produced Img, e.g. "png" or "webp".
	Format string
}

type PipelineStage interface {
	Process(img *PngImage) error
}

// NewPngFromReader decodes any registered image format. Animated GIFs yield
// their first frame only.
func NewPngFromReader(r io.Reader) (*PngImage, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return NewPng(img, format), nil
}

func NewPng(img image.Image, format string) *PngImage {
	return &PngImage{
		Img:    img,
		Bounds: img.Bounds(),
		Format: format,
	}
}

// Write always encodes as PNG, whatever the source format was.
func (p *PngImage) Write(w io.Writer) error {
	return png.Encode(w, p.Img)
}

func (p *PngImage) Pipeline(stages ...PipelineStage) error {
	for i, stage := range stages {
		if err := stage.Process(p); err != nil {
			return fmt.Errorf("stage %d (%T) failed: %w", i, stage, err)
		}
	}
	return nil
}
