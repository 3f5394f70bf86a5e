package stage

import (
	"math"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/convolution"
	"github.com/rm-hull/recursive-gaussian-blur/internal/png"
)

// GaussianConvolutionStage is a true, finite-kernel Gaussian blur. It is much
// slower than RecursiveBlurStage for large sigma and serves as the reference
// the recursive approximation is measured against.
type GaussianConvolutionStage struct {
	SigmaX float64
	SigmaY float64
}

// Process convolves rows then columns with normalized 1D kernels of radius
// ceil(4 * sigma). Edge pixels are extended rather than wrapped.
func (s *GaussianConvolutionStage) Process(p *png.PngImage) error {
	options := convolution.Options{Bias: 0, Wrap: false, KeepAlpha: false}

	result := clone.AsRGBA(p.Img)
	if s.SigmaX > 0 {
		result = convolution.Convolve(result, kernel1D(s.SigmaX).Normalized(), &options)
	}
	if s.SigmaY > 0 {
		result = convolution.Convolve(result, kernel1D(s.SigmaY).Normalized().Transposed(), &options)
	}

	p.Img = result
	p.Bounds = result.Bounds()
	return nil
}

func kernel1D(sigma float64) *convolution.Kernel {
	sfactor := -0.5 / (sigma * sigma)
	radius := math.Ceil(4 * sigma)
	length := 2*int(radius) + 1

	k := convolution.NewKernel(length, 1)
	for i, x := 0, -radius; i < length; i, x = i+1, x+1 {
		k.Matrix[i] = math.Exp(sfactor * (x * x))
	}
	return k
}
