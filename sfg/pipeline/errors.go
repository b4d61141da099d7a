package pipeline

import "errors"

// Errors returned by pipeline stages.
var (
	ErrNoFrames                 = errors.New("pipeline: trace has no frames")
	ErrFrameLength              = errors.New("pipeline: frame wavelength and intensity lengths differ")
	ErrFrameAxisMismatch        = errors.New("pipeline: frames disagree on wavelength axis")
	ErrMissingTrace             = errors.New("pipeline: no trace for catalog entry")
	ErrInvalidVisibleWavelength = errors.New("pipeline: visible wavelength must be finite and positive")
)
