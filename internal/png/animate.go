package png

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/kettek/apng"
)

// MaxFrameDelay is the longest per-frame delay, in seconds, that fits the
// millisecond numerator of an APNG frame control chunk.
const MaxFrameDelay = math.MaxUint16 / 1000.0

// FrameDelayMillis converts seconds to whole milliseconds, rejecting delays
// that round to zero or do not fit in a uint16.
func FrameDelayMillis(seconds float64) (uint16, error) {
	ms := math.Round(seconds * 1000)
	if math.IsNaN(ms) || ms < 1 || ms > math.MaxUint16 {
		return 0, fmt.Errorf("frame delay must be between 0.001 and %.3f seconds, got %v", MaxFrameDelay, seconds)
	}
	return uint16(ms), nil
}

// Animate encodes frames as a looping APNG, showing each frame for
// frameDelay seconds.
func Animate(frames []image.Image, frameDelay float64) ([]byte, error) {
	if len(frames) == 0 {
		return nil, errors.New("no frames to animate")
	}
	delay, err := FrameDelayMillis(frameDelay)
	if err != nil {
		return nil, err
	}

	a := apng.APNG{
		Frames:    make([]apng.Frame, len(frames)),
		LoopCount: 0,
	}

	for i, img := range frames {
		a.Frames[i] = apng.Frame{
			Image:            img,
			DelayNumerator:   delay,
			DelayDenominator: 1000,
		}
	}

	var buf bytes.Buffer
	if err := apng.Encode(&buf, a); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
