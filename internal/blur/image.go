package blur

import (
	"fmt"
	"math"
)

// Image is a row-major, channel-interleaved 8-bit pixel buffer.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

func NewImage(width, height, channels int) *Image {
	return &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
}

// Validate checks the shape invariant len(Pix) == Width*Height*Channels.
func (img *Image) Validate() error {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return ErrEmptyImage
	}
	if img.Channels < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidChannels, img.Channels)
	}
	if img.Width > math.MaxInt/img.Height/img.Channels {
		return fmt.Errorf("%w: %dx%dx%d overflows", ErrBufferSize, img.Width, img.Height, img.Channels)
	}
	if want := img.Width * img.Height * img.Channels; len(img.Pix) != want {
		return fmt.Errorf("%w: got %d bytes, want %d for %dx%dx%d",
			ErrBufferSize, len(img.Pix), want, img.Width, img.Height, img.Channels)
	}
	return nil
}

// At returns the value of channel c at (x, y).
func (img *Image) At(x, y, c int) uint8 {
	return img.Pix[(y*img.Width+x)*img.Channels+c]
}

func (img *Image) Set(x, y, c int, v uint8) {
	img.Pix[(y*img.Width+x)*img.Channels+c] = v
}

func (img *Image) Clone() *Image {
	pix := make([]uint8, len(img.Pix))
	copy(pix, img.Pix)
	return &Image{
		Width:    img.Width,
		Height:   img.Height,
		Channels: img.Channels,
		Pix:      pix,
	}
}
