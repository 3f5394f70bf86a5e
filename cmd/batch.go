package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/rm-hull/recursive-gaussian-blur/internal"
)

func Batch(ctx context.Context, srcDir, dstDir string, workers, limit int, opts BlurOptions) error {
	internal.ShowVersion()
	internal.EnvironmentVars("BLUR_")

	p, err := internal.NewBatch(srcDir, dstDir, workers, opts.stages(ctx)...)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	p.Limit(limit)
	p.StartWorkers()
	p.DispatchJobs()
	errs := p.Wait()
	for _, err := range errs {
		log.Printf("  %v", err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of the images failed: %w", len(errs), errors.Join(errs...))
	}
	return nil
}
