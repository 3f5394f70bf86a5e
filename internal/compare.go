package internal

import (
	"fmt"

	"github.com/rm-hull/recursive-gaussian-blur/internal/blur"
)

type ChannelDiff struct {
	Mean float64
	Max  uint8
}

type Comparison struct {
	Width    int
	Height   int
	Channels []ChannelDiff
}

// Compare reports the absolute per-channel difference between two images of
// the same shape. A non-zero margin excludes that many pixels along every
// border, which is where the recursive filter diverges most.
func Compare(a, b *blur.Image, margin int) (*Comparison, error) {
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("invalid first image: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid second image: %w", err)
	}
	if a.Width != b.Width || a.Height != b.Height || a.Channels != b.Channels {
		return nil, fmt.Errorf("shape mismatch: %dx%dx%d vs %dx%dx%d",
			a.Width, a.Height, a.Channels, b.Width, b.Height, b.Channels)
	}
	if margin < 0 || 2*margin >= a.Width || 2*margin >= a.Height {
		return nil, fmt.Errorf("margin %d leaves no pixels to compare in %dx%d", margin, a.Width, a.Height)
	}

	cmp := &Comparison{
		Width:    a.Width - 2*margin,
		Height:   a.Height - 2*margin,
		Channels: make([]ChannelDiff, a.Channels),
	}
	n := float64(cmp.Width * cmp.Height)

	for c := range a.Channels {
		var sum float64
		var peak uint8
		for y := margin; y < a.Height-margin; y++ {
			for x := margin; x < a.Width-margin; x++ {
				va, vb := a.At(x, y, c), b.At(x, y, c)
				d := va - vb
				if vb > va {
					d = vb - va
				}
				sum += float64(d)
				peak = max(peak, d)
			}
		}
		cmp.Channels[c] = ChannelDiff{Mean: sum / n, Max: peak}
	}
	return cmp, nil
}

func (c *Comparison) String() string {
	s := fmt.Sprintf("compared %dx%d pixels", c.Width, c.Height)
	for i, ch := range c.Channels {
		s += fmt.Sprintf("\n  channel %d: mean=%.3f max=%d", i, ch.Mean, ch.Max)
	}
	return s
}
