package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/rm-hull/recursive-gaussian-blur/internal"
	"github.com/rm-hull/recursive-gaussian-blur/internal/blur"
	"github.com/rm-hull/recursive-gaussian-blur/internal/png"
	"github.com/rm-hull/recursive-gaussian-blur/internal/png/stage"
)

// BannerSigma is the spread the launcher applies to instance banners.
const BannerSigma = 8.0

type BlurOptions struct {
	Params blur.Params
	Width  int
	Height int
}

func (o BlurOptions) stages(ctx context.Context) []png.PipelineStage {
	return []png.PipelineStage{
		&stage.ScaleStage{Width: o.Width, Height: o.Height},
		&stage.RecursiveBlurStage{Params: o.Params, Ctx: ctx},
	}
}

func Blur(ctx context.Context, source, dest string, opts BlurOptions) error {
	img, err := loadImage(source)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := img.Pipeline(opts.stages(ctx)...); err != nil {
		return fmt.Errorf("failed to blur %s: %w", source, err)
	}
	log.Printf("Blurred %s (%dx%d, sigma_x=%v, sigma_y=%v, steps=%d) in %s",
		source, img.Bounds.Dx(), img.Bounds.Dy(),
		opts.Params.SigmaX, opts.Params.SigmaY, opts.Params.Steps, time.Since(start))

	return writeAtomic(dest, img.Write)
}

func loadImage(source string) (*png.PngImage, error) {
	if internal.IsRemote(source) {
		body, err := internal.NewImageClient("").Get(source)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = body.Close()
		}()
		img, err := png.NewPngFromReader(body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", source, err)
		}
		return img, nil
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer func() {
		_ = f.Close()
	}()

	img, err := png.NewPngFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", source, err)
	}
	return img, nil
}

// writeAtomic writes through a temporary file in the destination directory
// and renames it into place once fully written.
func writeAtomic(dest string, write func(w io.Writer) error) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(dest), "blur-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	cleanupTemp := true
	defer func() {
		_ = tmpFile.Close()
		if cleanupTemp {
			_ = os.Remove(tmpFile.Name())
		}
	}()

	if err := write(tmpFile); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file before rename: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), dest); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	cleanupTemp = false
	return nil
}
