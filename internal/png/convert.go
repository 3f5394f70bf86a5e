package png

import (
	"fmt"
	"image"

	"github.com/rm-hull/recursive-gaussian-blur/internal/blur"
	"golang.org/x/image/draw"
)

// ToBuffer converts img to a 4-channel, non-premultiplied RGBA buffer whose
// origin is the top-left corner of img's bounds.
func ToBuffer(img image.Image) *blur.Image {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) || nrgba.Stride != 4*b.Dx() {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}

	buf := blur.NewImage(b.Dx(), b.Dy(), 4)
	copy(buf.Pix, nrgba.Pix)
	return buf
}

// FromBuffer wraps buf as an image.Image: *image.NRGBA for 4 channels and
// *image.Gray for a single channel.
func FromBuffer(buf *blur.Image) (image.Image, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	rect := image.Rect(0, 0, buf.Width, buf.Height)
	switch buf.Channels {
	case 4:
		out := image.NewNRGBA(rect)
		copy(out.Pix, buf.Pix)
		return out, nil
	case 1:
		out := image.NewGray(rect)
		copy(out.Pix, buf.Pix)
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported channel count: %d", buf.Channels)
	}
}
