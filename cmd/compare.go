package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rm-hull/recursive-gaussian-blur/internal"
	"github.com/rm-hull/recursive-gaussian-blur/internal/blur"
	"github.com/rm-hull/recursive-gaussian-blur/internal/png"
	"github.com/rm-hull/recursive-gaussian-blur/internal/png/stage"
)

// Compare blurs source with both the recursive engine and a true Gaussian
// convolution and writes the difference report to w.
func Compare(ctx context.Context, w io.Writer, source string, margin int, opts BlurOptions) error {
	img, err := loadImage(source)
	if err != nil {
		return err
	}
	if err := img.Pipeline(&stage.ScaleStage{Width: opts.Width, Height: opts.Height}); err != nil {
		return fmt.Errorf("failed to scale %s: %w", source, err)
	}

	p := opts.Params
	recursive := png.NewPng(img.Img, img.Format)
	start := time.Now()
	if err := recursive.Pipeline(&stage.RecursiveBlurStage{Params: p, Ctx: ctx}); err != nil {
		return fmt.Errorf("recursive blur failed: %w", err)
	}
	recursiveTime := time.Since(start)

	reference := png.NewPng(img.Img, img.Format)
	start = time.Now()
	if err := reference.Pipeline(&stage.GaussianConvolutionStage{SigmaX: p.SigmaX, SigmaY: p.SigmaY}); err != nil {
		return fmt.Errorf("convolution blur failed: %w", err)
	}
	referenceTime := time.Since(start)

	cmp, err := internal.Compare(png.ToBuffer(recursive.Img), png.ToBuffer(reference.Img), margin)
	if err != nil {
		return err
	}

	lambdaX, dnuX := blur.Coefficients(p.SigmaX, p.Steps)
	lambdaY, dnuY := blur.Coefficients(p.SigmaY, p.Steps)
	_, err = fmt.Fprintf(w,
		"steps=%d\nx: sigma=%v lambda=%.6f dnu=%.6f\ny: sigma=%v lambda=%.6f dnu=%.6f\npost_scale=%.6f\n"+
			"recursive=%s convolution=%s\n%s\n",
		p.Steps,
		p.SigmaX, lambdaX, dnuX,
		p.SigmaY, lambdaY, dnuY,
		blur.PostScale(p.SigmaX, p.SigmaY, p.Steps),
		recursiveTime, referenceTime, cmp)
	return err
}
