package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/Depado/ginprom"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/rm-hull/recursive-gaussian-blur/internal"
	"github.com/rm-hull/recursive-gaussian-blur/internal/blur"
	"github.com/rm-hull/recursive-gaussian-blur/internal/png"
	"github.com/rm-hull/recursive-gaussian-blur/internal/png/stage"
	healthcheck "github.com/tavsec/gin-healthcheck"
	"github.com/tavsec/gin-healthcheck/checks"
	hc_config "github.com/tavsec/gin-healthcheck/config"
)

const (
	DefaultMaxUploadBytes = 16 << 20
	DefaultMaxSteps       = 16
	DefaultMaxPixels      = 40_000_000
)

type ServerConfig struct {
	Port           int
	Debug          bool
	Steps          int
	MaxUploadBytes int64
	// MaxSteps bounds the steps query argument.
	MaxSteps int
	// MaxPixels bounds width*height of the decoded upload. The compressed
	// size limit alone does not stop a small file expanding into a huge canvas.
	MaxPixels int
}

func (cfg ServerConfig) withDefaults() ServerConfig {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	if cfg.MaxPixels <= 0 {
		cfg.MaxPixels = DefaultMaxPixels
	}
	return cfg
}

func ApiServer(cfg ServerConfig) {
	internal.ShowVersion()
	internal.EnvironmentVars("BLUR_")

	r := gin.New()

	prometheus := ginprom.New(
		ginprom.Engine(r),
		ginprom.Path("/metrics"),
		ginprom.Ignore("/healthz"),
	)

	r.Use(
		gin.Recovery(),
		gin.LoggerWithWriter(gin.DefaultWriter, "/healthz", "/metrics"),
		prometheus.Instrument(),
	)

	if cfg.Debug {
		log.Println("WARNING: pprof endpoints are enabled and exposed. Do not run with this flag in production.")
		pprof.Register(r)
	}

	err := healthcheck.New(r, hc_config.DefaultConfig(), []checks.Check{})
	if err != nil {
		log.Fatalf("failed to initialize healthcheck: %v", err)
	}

	RegisterRoutes(r, cfg)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Starting HTTP API Server on port %d...", cfg.Port)
	if err := r.Run(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("HTTP API Server failed to start on port %d: %v", cfg.Port, err)
	}
}

func RegisterRoutes(r gin.IRoutes, cfg ServerConfig) {
	r.POST("/v1/blur", blurHandler(cfg))
}

// blurHandler expects the source image as the request body and the blur
// parameters as query arguments: sigma (both axes), sigma_x, sigma_y, steps.
func blurHandler(cfg ServerConfig) gin.HandlerFunc {
	cfg = cfg.withDefaults()
	maxBytes := cfg.MaxUploadBytes

	return func(c *gin.Context) {
		params, err := parseBlurParams(c, cfg.Steps, cfg.MaxSteps)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes))
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("image exceeds %d bytes", maxBytes)})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		conf, _, err := image.DecodeConfig(bytes.NewReader(body))
		if err != nil {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": fmt.Sprintf("failed to decode image: %v", err)})
			return
		}
		if conf.Width > cfg.MaxPixels/max(conf.Height, 1) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("image is %dx%d, exceeds %d pixels", conf.Width, conf.Height, cfg.MaxPixels),
			})
			return
		}

		img, err := png.NewPngFromReader(bytes.NewReader(body))
		if err != nil {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": fmt.Sprintf("failed to decode image: %v", err)})
			return
		}

		err = img.Pipeline(&stage.RecursiveBlurStage{Params: params, Ctx: c.Request.Context()})
		if err != nil {
			status := http.StatusInternalServerError
			if isContractViolation(err) {
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		var buf bytes.Buffer
		if err := img.Write(&buf); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to encode image: %v", err)})
			return
		}
		c.Data(http.StatusOK, "image/png", buf.Bytes())
	}
}

func parseBlurParams(c *gin.Context, defaultSteps, maxSteps int) (blur.Params, error) {
	p := blur.DefaultParams(0, 0)
	if defaultSteps > 0 {
		p.Steps = defaultSteps
	}

	floatArg := func(name string, dst *float64) error {
		raw, ok := c.GetQuery(name)
		if !ok {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %q", name, raw)
		}
		*dst = v
		return nil
	}

	var sigma float64
	if err := floatArg("sigma", &sigma); err != nil {
		return p, err
	}
	p.SigmaX, p.SigmaY = sigma, sigma
	if err := floatArg("sigma_x", &p.SigmaX); err != nil {
		return p, err
	}
	if err := floatArg("sigma_y", &p.SigmaY); err != nil {
		return p, err
	}

	if raw, ok := c.GetQuery("steps"); ok {
		steps, err := strconv.Atoi(raw)
		if err != nil {
			return p, fmt.Errorf("invalid steps: %q", raw)
		}
		p.Steps = steps
	}

	return p, p.Validate()
}

func isContractViolation(err error) bool {
	for _, target := range []error{
		blur.ErrEmptyImage,
		blur.ErrNegativeSigma,
		blur.ErrInvalidSteps,
		blur.ErrInvalidChannels,
		blur.ErrBufferSize,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
