package cmd

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"

	"github.com/rm-hull/recursive-gaussian-blur/internal/blur"
	"github.com/rm-hull/recursive-gaussian-blur/internal/png"
	"github.com/rm-hull/recursive-gaussian-blur/internal/png/stage"
)

// SigmaSweep blurs src with both sigmas rising linearly from 0 to those of
// final over the given number of frames. Steps and Parallelism are used as
// given. The first frame is always the unblurred image.
func SigmaSweep(ctx context.Context, src image.Image, frames int, final blur.Params) ([]image.Image, error) {
	if frames < 2 {
		return nil, errors.New("at least two frames are required")
	}
	if err := final.Validate(); err != nil {
		return nil, err
	}

	out := make([]image.Image, frames)
	for i := range frames {
		t := float64(i) / float64(frames-1)
		p := final
		p.SigmaX, p.SigmaY = final.SigmaX*t, final.SigmaY*t

		frame := png.NewPng(src, "png")
		err := frame.Pipeline(&stage.RecursiveBlurStage{Params: p, Ctx: ctx})
		if err != nil {
			return nil, fmt.Errorf("failed to render frame %d (sigma=%.2f,%.2f): %w", i, p.SigmaX, p.SigmaY, err)
		}
		out[i] = frame.Img
	}
	return out, nil
}

// Animate sweeps from the unblurred source up to opts.Params and writes the
// frames as an APNG, each shown for delay seconds.
func Animate(ctx context.Context, source, dest string, frames int, delay float64, opts BlurOptions) error {
	if _, err := png.FrameDelayMillis(delay); err != nil {
		return err
	}

	img, err := loadImage(source)
	if err != nil {
		return err
	}
	if err := img.Pipeline(&stage.ScaleStage{Width: opts.Width, Height: opts.Height}); err != nil {
		return fmt.Errorf("failed to scale %s: %w", source, err)
	}

	sweep, err := SigmaSweep(ctx, img.Img, frames, opts.Params)
	if err != nil {
		return err
	}

	data, err := png.Animate(sweep, delay)
	if err != nil {
		return fmt.Errorf("failed to encode animation: %w", err)
	}

	log.Printf("Writing %d frame animation (sigma 0 to %.2f,%.2f) to %s", frames, opts.Params.SigmaX, opts.Params.SigmaY, dest)
	return writeAtomic(dest, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
