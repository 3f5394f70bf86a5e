package blur

import "errors"

var (
	ErrEmptyImage      = errors.New("image must have non-zero width and height")
	ErrNegativeSigma   = errors.New("sigma must be a finite value >= 0")
	ErrInvalidSteps    = errors.New("steps must be between 1 and 65536")
	ErrInvalidChannels = errors.New("image must have at least one channel")
	ErrBufferSize      = errors.New("pixel buffer does not match image dimensions")
)
