package stage

import (
	"context"

	"github.com/rm-hull/recursive-gaussian-blur/internal/blur"
	"github.com/rm-hull/recursive-gaussian-blur/internal/png"
)

type RecursiveBlurStage struct {
	Params blur.Params
	// Ctx is optional; when set, cancelling it aborts the blur between channels.
	Ctx context.Context
}

// Process blurs every RGBA channel, alpha included, with the recursive
// Gaussian approximation
func (s *RecursiveBlurStage) Process(p *png.PngImage) error {
	ctx := s.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	out, err := blur.Apply(ctx, s.Params, png.ToBuffer(p.Img))
	if err != nil {
		return err
	}

	img, err := png.FromBuffer(out)
	if err != nil {
		return err
	}
	p.Img = img
	p.Bounds = img.Bounds()
	return nil
}
