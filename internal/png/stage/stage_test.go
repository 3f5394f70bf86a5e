package stage

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/rm-hull/recursive-gaussian-blur/internal"
	"github.com/rm-hull/recursive-gaussian-blur/internal/blur"
	"github.com/rm-hull/recursive-gaussian-blur/internal/png"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(size, lo, hi int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			c := color.NRGBA{A: 255}
			if x >= lo && x < hi && y >= lo && y < hi {
				c = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestRecursiveBlurStage(t *testing.T) {
	t.Run("blurs and keeps bounds", func(t *testing.T) {
		p := png.NewPng(square(16, 6, 10), "png")
		err := p.Pipeline(&RecursiveBlurStage{Params: blur.DefaultParams(2, 2)})
		require.NoError(t, err)

		assert.Equal(t, image.Rect(0, 0, 16, 16), p.Bounds)
		r, _, _, _ := p.Img.At(4, 8).RGBA()
		assert.Greater(t, r, uint32(0))
	})

	t.Run("rejects invalid parameters", func(t *testing.T) {
		p := png.NewPng(square(4, 1, 2), "png")
		err := p.Pipeline(&RecursiveBlurStage{Params: blur.DefaultParams(-1, 0)})
		assert.ErrorIs(t, err, blur.ErrNegativeSigma)
	})

	t.Run("honours cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		p := png.NewPng(square(4, 1, 2), "png")
		err := p.Pipeline(&RecursiveBlurStage{Params: blur.DefaultParams(1, 1), Ctx: ctx})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRecursiveBlurApproximatesConvolution(t *testing.T) {
	src := square(64, 24, 40)

	recursive := png.NewPng(src, "png")
	require.NoError(t, recursive.Pipeline(&RecursiveBlurStage{Params: blur.DefaultParams(2, 2)}))

	reference := png.NewPng(src, "png")
	require.NoError(t, reference.Pipeline(&GaussianConvolutionStage{SigmaX: 2, SigmaY: 2}))

	cmp, err := internal.Compare(png.ToBuffer(recursive.Img), png.ToBuffer(reference.Img), 12)
	require.NoError(t, err)
	for c := range 3 {
		assert.Less(t, cmp.Channels[c].Mean, 4.0, "channel %d", c)
	}
	assert.LessOrEqual(t, cmp.Channels[3].Max, uint8(1))
}

func TestGaussianConvolutionStage_ZeroSigmaIsIdentity(t *testing.T) {
	src := square(8, 2, 5)
	p := png.NewPng(src, "png")
	require.NoError(t, p.Pipeline(&GaussianConvolutionStage{}))
	assert.Equal(t, png.ToBuffer(src).Pix, png.ToBuffer(p.Img).Pix)
}

func TestScaleStage(t *testing.T) {
	tests := []struct {
		name          string
		stage         ScaleStage
		width, height int
	}{
		{"both dimensions", ScaleStage{Width: 8, Height: 4}, 8, 4},
		{"width keeps aspect", ScaleStage{Width: 10}, 10, 5},
		{"height keeps aspect", ScaleStage{Height: 10}, 20, 10},
		{"unset passes through", ScaleStage{}, 40, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := png.NewPng(image.NewNRGBA(image.Rect(0, 0, 40, 20)), "png")
			require.NoError(t, p.Pipeline(&tt.stage))
			assert.Equal(t, tt.width, p.Bounds.Dx())
			assert.Equal(t, tt.height, p.Bounds.Dy())
			assert.Equal(t, p.Bounds, p.Img.Bounds())
		})
	}

	t.Run("negative size", func(t *testing.T) {
		p := png.NewPng(image.NewNRGBA(image.Rect(0, 0, 4, 4)), "png")
		assert.Error(t, p.Pipeline(&ScaleStage{Width: -1}))
	})
}
