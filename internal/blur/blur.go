package blur

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultSteps = 4
	// MaxSteps keeps 2*Steps, the gain correction exponent, well inside int.
	MaxSteps = 1 << 16
)

// Params controls a single blur invocation.
type Params struct {
	SigmaX float64
	SigmaY float64
	// Steps is the number of forward/backward sweep pairs per axis.
	Steps int
	// Parallelism bounds how many channels are filtered concurrently.
	// Zero means one goroutine per channel.
	Parallelism int
}

func DefaultParams(sigmaX, sigmaY float64) Params {
	return Params{
		SigmaX: sigmaX,
		SigmaY: sigmaY,
		Steps:  DefaultSteps,
	}
}

func (p Params) Validate() error {
	if !validSigma(p.SigmaX) {
		return fmt.Errorf("%w: sigma_x=%v", ErrNegativeSigma, p.SigmaX)
	}
	if !validSigma(p.SigmaY) {
		return fmt.Errorf("%w: sigma_y=%v", ErrNegativeSigma, p.SigmaY)
	}
	if p.Steps < 1 || p.Steps > MaxSteps {
		return fmt.Errorf("%w: %d", ErrInvalidSteps, p.Steps)
	}
	return nil
}

func validSigma(s float64) bool {
	return s >= 0 && !math.IsInf(s, 1)
}

// Blur smooths every channel of src with the default number of steps.
func Blur(sigmaX, sigmaY float64, src *Image) (*Image, error) {
	return Apply(context.Background(), DefaultParams(sigmaX, sigmaY), src)
}

// Apply runs the recursive Gaussian approximation over every channel of src
// and returns a new image of the same shape. src is never modified.
//
// The context is checked before each channel starts; a cancelled context
// discards any partial result.
func Apply(ctx context.Context, p Params, src *Image) (*Image, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if p.SigmaX == 0 && p.SigmaY == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return src.Clone(), nil
	}

	dst := NewImage(src.Width, src.Height, src.Channels)
	f := newFilter(p, src.Width, src.Height)

	g, ctx := errgroup.WithContext(ctx)
	limit := p.Parallelism
	if limit <= 0 {
		limit = src.Channels
	}
	g.SetLimit(limit)

	for c := range src.Channels {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f.channel(src, dst, c, make([]float64, src.Width*src.Height))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dst, nil
}

// filter holds the per-call constants shared by every channel worker.
type filter struct {
	width     int
	height    int
	steps     int
	filterX   bool
	filterY   bool
	dnuX      float64
	dnuY      float64
	postScale float64
}

func newFilter(p Params, width, height int) *filter {
	lambdaX, dnuX := Coefficients(p.SigmaX, p.Steps)
	lambdaY, dnuY := Coefficients(p.SigmaY, p.Steps)
	return &filter{
		width:     width,
		height:    height,
		steps:     p.Steps,
		filterX:   p.SigmaX > 0,
		filterY:   p.SigmaY > 0,
		dnuX:      dnuX,
		dnuY:      dnuY,
		postScale: math.Pow(math.Sqrt(dnuX*dnuY)/math.Sqrt(lambdaX*lambdaY), float64(2*p.Steps)),
	}
}

// channel filters channel c of src into dst using buf as scratch space.
// Workers for different channels touch disjoint bytes of dst.
func (f *filter) channel(src, dst *Image, c int, buf []float64) {
	stride := src.Channels
	for i := range buf {
		buf[i] = float64(src.Pix[i*stride+c]) / 255.0
	}

	if f.filterX {
		f.rows(buf)
	}
	if f.filterY {
		f.columns(buf)
	}

	for i, v := range buf {
		dst.Pix[i*stride+c] = quantize(v * f.postScale)
	}
}

// rows sweeps each row rightwards then leftwards, steps times.
// The first sample of each sweep has no predecessor, which darkens the borders.
func (f *filter) rows(buf []float64) {
	dnu := f.dnuX
	for y := range f.height {
		row := buf[y*f.width : (y+1)*f.width]
		for range f.steps {
			for x := 1; x < len(row); x++ {
				row[x] += dnu * row[x-1]
			}
			for x := len(row) - 1; x > 0; x-- {
				row[x-1] += dnu * row[x]
			}
		}
	}
}

// columns sweeps each column downwards then upwards, steps times.
func (f *filter) columns(buf []float64) {
	dnu := f.dnuY
	w := f.width
	for x := range w {
		for range f.steps {
			for i := x + w; i < len(buf); i += w {
				buf[i] += dnu * buf[i-w]
			}
			for i := x + (f.height-1)*w; i > x; i -= w {
				buf[i-w] += dnu * buf[i]
			}
		}
	}
}

func quantize(v float64) uint8 {
	v *= 255
	switch {
	case v >= 255:
		return 255
	case v <= 0 || math.IsNaN(v):
		return 0
	}
	return uint8(v)
}
