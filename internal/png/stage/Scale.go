package stage

import (
	"errors"
	"image"

	"github.com/rm-hull/recursive-gaussian-blur/internal/png"
	"golang.org/x/image/draw"
)

type ScaleStage struct {
	Width  int
	Height int
}

// Process resamples the image with Catmull-Rom to Width x Height. When only
// one dimension is set, the other follows the source aspect ratio. When
// neither is set the image is passed through untouched
func (s *ScaleStage) Process(p *png.PngImage) error {
	if s.Width < 0 || s.Height < 0 {
		return errors.New("scale dimensions must not be negative")
	}
	if s.Width == 0 && s.Height == 0 {
		return nil
	}

	width, height := s.Width, s.Height
	srcW, srcH := p.Bounds.Dx(), p.Bounds.Dy()
	if width == 0 {
		width = max(1, srcW*height/srcH)
	}
	if height == 0 {
		height = max(1, srcH*width/srcW)
	}

	scaled := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), p.Img, p.Bounds, draw.Src, nil)
	p.Img = scaled
	p.Bounds = scaled.Bounds()
	return nil
}
