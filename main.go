package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/rm-hull/recursive-gaussian-blur/cmd"
	"github.com/rm-hull/recursive-gaussian-blur/internal"
	"github.com/rm-hull/recursive-gaussian-blur/internal/blur"
	"github.com/rm-hull/recursive-gaussian-blur/internal/png"
	"github.com/spf13/cobra"
)

type blurFlags struct {
	sigma       float64
	sigmaX      float64
	sigmaY      float64
	steps       int
	parallelism int
	width       int
	height      int
	banner      bool
}

func (f *blurFlags) register(c *cobra.Command, defaultSteps int) {
	c.Flags().Float64Var(&f.sigma, "sigma", 0, "Blur spread for both axes")
	c.Flags().Float64Var(&f.sigmaX, "sigma-x", 0, "Horizontal blur spread (overrides --sigma)")
	c.Flags().Float64Var(&f.sigmaY, "sigma-y", 0, "Vertical blur spread (overrides --sigma)")
	c.Flags().IntVar(&f.steps, "steps", defaultSteps, "Forward/backward sweep pairs per axis")
	c.Flags().IntVar(&f.parallelism, "parallelism", 0, "Channels blurred concurrently (0 = one per channel)")
	c.Flags().IntVar(&f.width, "width", 0, "Resize to this width before blurring")
	c.Flags().IntVar(&f.height, "height", 0, "Resize to this height before blurring")
}

func (f *blurFlags) options(c *cobra.Command) cmd.BlurOptions {
	sigmaX, sigmaY := f.sigma, f.sigma
	if f.banner && !c.Flags().Changed("sigma") {
		sigmaX, sigmaY = cmd.BannerSigma, cmd.BannerSigma
	}
	if c.Flags().Changed("sigma-x") {
		sigmaX = f.sigmaX
	}
	if c.Flags().Changed("sigma-y") {
		sigmaY = f.sigmaY
	}

	return cmd.BlurOptions{
		Params: blur.Params{
			SigmaX:      sigmaX,
			SigmaY:      sigmaY,
			Steps:       f.steps,
			Parallelism: f.parallelism,
		},
		Width:  f.width,
		Height: f.height,
	}
}

func main() {
	var port int
	var debug bool
	var workers int
	var limit int
	var frames int
	var delay float64
	var margin int

	internal.LoadEnv()

	defaultSteps, err := internal.EnvInt("BLUR_STEPS", blur.DefaultSteps)
	if err != nil {
		log.Fatal(err)
	}
	maxUpload, err := internal.EnvInt("BLUR_MAX_UPLOAD_BYTES", cmd.DefaultMaxUploadBytes)
	if err != nil {
		log.Fatal(err)
	}
	maxSteps, err := internal.EnvInt("BLUR_MAX_STEPS", cmd.DefaultMaxSteps)
	if err != nil {
		log.Fatal(err)
	}
	maxPixels, err := internal.EnvInt("BLUR_MAX_PIXELS", cmd.DefaultMaxPixels)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := &cobra.Command{
		Use:  "recursive-blur",
		Long: `Recursive (IIR) Gaussian blur for images`,
	}

	var blurOpts blurFlags
	blurCmd := &cobra.Command{
		Use:   "blur <source> <dest.png> [--sigma <s>] [--sigma-x <sx>] [--sigma-y <sy>] [--steps <n>] [--banner]",
		Short: "Blur a single image file or URL",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Blur(ctx, args[0], args[1], blurOpts.options(c))
		},
	}
	blurOpts.register(blurCmd, defaultSteps)
	blurCmd.Flags().BoolVar(&blurOpts.banner, "banner", false, fmt.Sprintf("Use the banner preset (sigma %.0f on both axes)", cmd.BannerSigma))

	var batchOpts blurFlags
	batchCmd := &cobra.Command{
		Use:   "batch <src-dir> <dest-dir> [--workers <n>] [--limit <n>]",
		Short: "Blur every image in a directory tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Batch(ctx, args[0], args[1], workers, limit, batchOpts.options(c))
		},
	}
	batchOpts.register(batchCmd, defaultSteps)
	batchCmd.Flags().IntVar(&workers, "workers", 4, "Number of images processed concurrently")
	batchCmd.Flags().IntVar(&limit, "limit", 0, "Only process the first n images (0 = all)")

	var animateOpts blurFlags
	animateCmd := &cobra.Command{
		Use:   "animate <source> <dest.png> --sigma <max> [--sigma-x <sx>] [--sigma-y <sy>] [--frames <n>] [--delay <seconds>]",
		Short: "Render an animated PNG sweeping both sigmas up from 0",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Animate(ctx, args[0], args[1], frames, delay, animateOpts.options(c))
		},
	}
	animateOpts.register(animateCmd, defaultSteps)
	animateCmd.Flags().IntVar(&frames, "frames", 10, "Number of frames")
	animateCmd.Flags().Float64Var(&delay, "delay", 0.2, fmt.Sprintf("Seconds per frame (0.001 to %.3f)", png.MaxFrameDelay))

	var compareOpts blurFlags
	compareCmd := &cobra.Command{
		Use:   "compare <source> [--sigma <s>] [--margin <px>]",
		Short: "Compare the recursive blur against a true Gaussian convolution",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Compare(ctx, os.Stdout, args[0], margin, compareOpts.options(c))
		},
	}
	compareOpts.register(compareCmd, defaultSteps)
	compareCmd.Flags().IntVar(&margin, "margin", 0, "Border pixels excluded from the comparison")

	apiServerCmd := &cobra.Command{
		Use:   "api-server [--port <port>] [--debug]",
		Short: "Start HTTP API server",
		Run: func(_ *cobra.Command, _ []string) {
			cmd.ApiServer(cmd.ServerConfig{
				Port:           port,
				Debug:          debug,
				Steps:          defaultSteps,
				MaxUploadBytes: int64(maxUpload),
				MaxSteps:       maxSteps,
				MaxPixels:      maxPixels,
			})
		},
	}
	apiServerCmd.Flags().IntVar(&port, "port", 8080, "Port to run HTTP server on")
	apiServerCmd.Flags().BoolVar(&debug, "debug", false, "Enable debugging (pprof) - WARNING: do not enable in production")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(internal.Version())
		},
	}

	rootCmd.AddCommand(blurCmd, batchCmd, animateCmd, compareCmd, apiServerCmd, versionCmd)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}
