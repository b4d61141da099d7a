package pipeline

import (
	"fmt"

	"github.com/cwbudde/algo-sfg/dsp/core"
)

// Frame is one acquisition of a file: intensity sampled on a wavelength axis.
type Frame struct {
	Number     int // as recorded in the file, 1-based
	Wavelength []float64
	Intensity  []float64
}

// Trace is the ordered set of frames of one file.
type Trace struct {
	Frames []Frame
}

// Frame returns the frame with the given number.
func (t Trace) Frame(number int) (Frame, bool) {
	for _, f := range t.Frames {
		if f.Number == number {
			return f, true
		}
	}
	return Frame{}, false
}

// FrameNumbers returns the frame numbers in file order.
func (t Trace) FrameNumbers() []int {
	out := make([]int, len(t.Frames))
	for i, f := range t.Frames {
		out[i] = f.Number
	}
	return out
}

func (t Trace) validate() error {
	if len(t.Frames) == 0 {
		return ErrNoFrames
	}
	for _, f := range t.Frames {
		if len(f.Wavelength) != len(f.Intensity) {
			return fmt.Errorf("%w: frame %d has %d wavelengths and %d intensities",
				ErrFrameLength, f.Number, len(f.Wavelength), len(f.Intensity))
		}
	}
	return nil
}

// Curve is a single intensity trace on a wavelength axis.
type Curve struct {
	Wavelength []float64
	Intensity  []float64
}

// Len returns the number of samples.
func (c Curve) Len() int {
	return len(c.Wavelength)
}

// SameAxis reports whether c and o share a wavelength axis within the
// relative tolerance axisTolerance.
func (c Curve) SameAxis(o Curve) bool {
	return core.SlicesNearlyEqual(c.Wavelength, o.Wavelength, axisTolerance)
}

const axisTolerance = 1e-9

// Loader reads the raw trace of a measurement file.
type Loader interface {
	Load(filename string) (Trace, error)
}

// LoaderFunc adapts a function to [Loader].
type LoaderFunc func(filename string) (Trace, error)

// Load calls f(filename).
func (f LoaderFunc) Load(filename string) (Trace, error) {
	return f(filename)
}

// MapLoader serves traces from memory, keyed by filename.
type MapLoader map[string]Trace

// Load returns the trace stored for filename.
func (m MapLoader) Load(filename string) (Trace, error) {
	t, ok := m[filename]
	if !ok {
		return Trace{}, fmt.Errorf("%w: %s", ErrMissingTrace, filename)
	}
	return t, nil
}
