package blur

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniform(width, height, channels int, v uint8) *Image {
	img := NewImage(width, height, channels)
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func impulse(width, height, channels, x, y int) *Image {
	img := NewImage(width, height, channels)
	for c := range channels {
		img.Set(x, y, c, 255)
	}
	return img
}

func nonZero(img *Image, c int) int {
	n := 0
	for y := range img.Height {
		for x := range img.Width {
			if img.At(x, y, c) > 0 {
				n++
			}
		}
	}
	return n
}

func TestBlur_Identity(t *testing.T) {
	src := NewImage(7, 5, 4)
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 37)
	}

	out, err := Blur(0, 0, src)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, out.Pix)
	assert.NotSame(t, &src.Pix[0], &out.Pix[0])
}

func TestBlur_DimensionsPreserved(t *testing.T) {
	tests := []struct {
		name                    string
		width, height, channels int
		sigmaX, sigmaY          float64
	}{
		{"square rgba", 16, 16, 4, 2, 2},
		{"wide grey", 33, 3, 1, 1.5, 0},
		{"tall rgb", 2, 40, 3, 0, 4},
		{"single pixel", 1, 1, 4, 8, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Blur(tt.sigmaX, tt.sigmaY, uniform(tt.width, tt.height, tt.channels, 90))
			require.NoError(t, err)
			assert.Equal(t, tt.width, out.Width)
			assert.Equal(t, tt.height, out.Height)
			assert.Equal(t, tt.channels, out.Channels)
			assert.Len(t, out.Pix, tt.width*tt.height*tt.channels)
		})
	}
}

func TestBlur_DoesNotMutateInput(t *testing.T) {
	src := impulse(9, 9, 4, 4, 4)
	before := src.Clone()

	_, err := Blur(2, 2, src)
	require.NoError(t, err)
	assert.Equal(t, before.Pix, src.Pix)
}

func TestBlur_AxisIndependence(t *testing.T) {
	t.Run("single row ignores disabled vertical axis", func(t *testing.T) {
		src := impulse(15, 1, 1, 7, 0)
		out, err := Blur(2, 0, src)
		require.NoError(t, err)
		assert.Greater(t, out.At(6, 0, 0), uint8(0))
		assert.Greater(t, out.At(8, 0, 0), uint8(0))
	})

	t.Run("single column ignores disabled horizontal axis", func(t *testing.T) {
		src := impulse(1, 15, 1, 0, 7)
		out, err := Blur(0, 2, src)
		require.NoError(t, err)
		assert.Greater(t, out.At(0, 6, 0), uint8(0))
		assert.Greater(t, out.At(0, 8, 0), uint8(0))
	})

	t.Run("horizontal blur stays within the row", func(t *testing.T) {
		src := impulse(11, 11, 1, 5, 5)
		out, err := Blur(2, 0, src)
		require.NoError(t, err)
		for y := range out.Height {
			for x := range out.Width {
				if y != 5 {
					assert.Zero(t, out.At(x, y, 0), "pixel (%d,%d)", x, y)
				}
			}
		}
		assert.Greater(t, out.At(3, 5, 0), uint8(0))
	})

	t.Run("vertical blur stays within the column", func(t *testing.T) {
		src := impulse(11, 11, 1, 5, 5)
		out, err := Blur(0, 2, src)
		require.NoError(t, err)
		for y := range out.Height {
			for x := range out.Width {
				if x != 5 {
					assert.Zero(t, out.At(x, y, 0), "pixel (%d,%d)", x, y)
				}
			}
		}
		assert.Greater(t, out.At(5, 3, 0), uint8(0))
	})
}

func TestBlur_UniformInteriorIsStable(t *testing.T) {
	tests := []struct {
		name           string
		value          uint8
		sigmaX, sigmaY float64
	}{
		{"symmetric", 200, 2, 2},
		{"asymmetric", 128, 4, 0.5},
		{"vertical only", 128, 0, 3},
		{"white", 255, 2, 2},
		{"dim", 17, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Blur(tt.sigmaX, tt.sigmaY, uniform(48, 40, 4, tt.value))
			require.NoError(t, err)
			for y := 15; y < 25; y++ {
				for x := 18; x < 30; x++ {
					for c := range 4 {
						assert.InDelta(t, float64(tt.value), float64(out.At(x, y, c)), 1)
					}
				}
			}
		})
	}
}

func TestBlur_EdgesDarken(t *testing.T) {
	out, err := Blur(2, 2, uniform(32, 32, 1, 200))
	require.NoError(t, err)
	assert.Less(t, out.At(0, 0, 0), out.At(0, 16, 0))
	assert.Less(t, out.At(0, 16, 0), out.At(16, 16, 0))
}

func TestBlur_MonotonicSmoothing(t *testing.T) {
	prev := 1
	for _, sigma := range []float64{0.5, 1, 2, 4} {
		out, err := Blur(sigma, sigma, impulse(21, 21, 4, 10, 10))
		require.NoError(t, err)
		n := nonZero(out, 0)
		assert.GreaterOrEqual(t, n, prev, "sigma=%v", sigma)
		prev = n
	}
	assert.Greater(t, prev, 1)
}

func TestBlur_Deterministic(t *testing.T) {
	src := NewImage(23, 17, 4)
	for i := range src.Pix {
		src.Pix[i] = uint8((i * 7919) % 251)
	}

	first, err := Apply(context.Background(), Params{SigmaX: 3, SigmaY: 1.5, Steps: 4}, src)
	require.NoError(t, err)

	for _, parallelism := range []int{0, 1, 2, 8} {
		out, err := Apply(context.Background(), Params{SigmaX: 3, SigmaY: 1.5, Steps: 4, Parallelism: parallelism}, src)
		require.NoError(t, err)
		assert.Equal(t, first.Pix, out.Pix, "parallelism=%d", parallelism)
	}
}

func TestBlur_ChannelsAreIndependent(t *testing.T) {
	src := NewImage(9, 9, 4)
	src.Set(4, 4, 3, 255)

	out, err := Blur(1, 1, src)
	require.NoError(t, err)
	assert.Zero(t, nonZero(out, 0))
	assert.Zero(t, nonZero(out, 1))
	assert.Zero(t, nonZero(out, 2))
	assert.Greater(t, nonZero(out, 3), 1)
}

func TestBlur_ImpulseScenario(t *testing.T) {
	out, err := Apply(context.Background(), Params{SigmaX: 1, SigmaY: 1, Steps: 4}, impulse(4, 4, 4, 2, 2))
	require.NoError(t, err)

	for c := range 4 {
		peak := out.At(2, 2, c)
		sum := 0
		for y := range 4 {
			for x := range 4 {
				v := out.At(x, y, c)
				assert.LessOrEqual(t, v, peak)
				sum += int(v)
			}
		}
		assert.LessOrEqual(t, sum, 255)
		assert.Zero(t, out.At(0, 0, c))

		assert.InDelta(t, float64(out.At(1, 2, c)), float64(out.At(3, 2, c)), 1)
		assert.InDelta(t, float64(out.At(2, 1, c)), float64(out.At(2, 3, c)), 1)
		assert.InDelta(t, float64(out.At(1, 1, c)), float64(out.At(3, 3, c)), 1)
		assert.Equal(t, out.At(1, 2, c), out.At(2, 1, c))
	}

	assert.Equal(t, []uint8{0, 2, 5, 2}, row(out, 0, 0))
	assert.Equal(t, []uint8{5, 24, 63, 23}, row(out, 2, 0))
}

func row(img *Image, y, c int) []uint8 {
	out := make([]uint8, img.Width)
	for x := range img.Width {
		out[x] = img.At(x, y, c)
	}
	return out
}

func TestBlur_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		img    *Image
		params Params
		want   error
	}{
		{"nil image", nil, DefaultParams(1, 1), ErrEmptyImage},
		{"zero width", &Image{Width: 0, Height: 3, Channels: 4}, DefaultParams(1, 1), ErrEmptyImage},
		{"zero height", &Image{Width: 3, Height: 0, Channels: 4}, DefaultParams(1, 1), ErrEmptyImage},
		{"no channels", &Image{Width: 3, Height: 3}, DefaultParams(1, 1), ErrInvalidChannels},
		{"short buffer", &Image{Width: 3, Height: 3, Channels: 4, Pix: make([]uint8, 35)}, DefaultParams(1, 1), ErrBufferSize},
		{"negative sigma x", NewImage(3, 3, 4), DefaultParams(-1, 1), ErrNegativeSigma},
		{"negative sigma y", NewImage(3, 3, 4), DefaultParams(1, -0.1), ErrNegativeSigma},
		{"zero steps", NewImage(3, 3, 4), Params{SigmaX: 1, SigmaY: 1}, ErrInvalidSteps},
		{"too many steps", NewImage(3, 3, 4), Params{SigmaX: 1, SigmaY: 1, Steps: MaxSteps + 1}, ErrInvalidSteps},
		{"overflowing shape", &Image{Width: 1 << 32, Height: 1 << 32, Channels: 1}, DefaultParams(1, 1), ErrBufferSize},
		{"overflowing channels", &Image{Width: 1 << 20, Height: 1 << 20, Channels: 1 << 30}, DefaultParams(1, 1), ErrBufferSize},
		{"NaN sigma", NewImage(3, 3, 4), DefaultParams(math.NaN(), 1), ErrNegativeSigma},
		{"infinite sigma", NewImage(3, 3, 4), DefaultParams(1, math.Inf(1)), ErrNegativeSigma},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Apply(context.Background(), tt.params, tt.img)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, out)
		})
	}
}

func TestApply_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := Apply(ctx, DefaultParams(2, 2), uniform(8, 8, 4, 10))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, out)

	out, err = Apply(ctx, DefaultParams(0, 0), uniform(8, 8, 4, 10))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, out)
}

func TestBlur_MoreStepsStillNormalized(t *testing.T) {
	for _, steps := range []int{1, 2, 4, 8} {
		out, err := Apply(context.Background(), Params{SigmaX: 2, SigmaY: 2, Steps: steps}, uniform(40, 40, 1, 150))
		require.NoError(t, err)
		assert.InDelta(t, 150, float64(out.At(20, 20, 0)), 1, "steps=%d", steps)
	}
}
