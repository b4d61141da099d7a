package cosmic

import (
	"math"

	"github.com/cwbudde/algo-sfg/dsp/interp"
	"github.com/cwbudde/algo-sfg/stats/robust"
)

// Range is an inclusive wavelength interval in nm.
type Range struct {
	Min float64
	Max float64
}

// Normalized returns r with Min <= Max.
func (r Range) Normalized() Range {
	if r.Min > r.Max {
		return Range{Min: r.Max, Max: r.Min}
	}
	return r
}

// Contains reports whether wl lies inside r.
func (r Range) Contains(wl float64) bool {
	n := r.Normalized()
	return wl >= n.Min && wl <= n.Max
}

// Override requests removal of every sample of one frame of one file inside
// a wavelength range.
type Override struct {
	Filename string
	Frame    int
	Range    Range
}

// Point is a removed sample with its original intensity.
type Point struct {
	Frame      int
	Wavelength float64
	Intensity  float64
}

// Result is the outcome of cleaning one frame.
type Result struct {
	Intensity []float64 // cleaned copy of the input intensity
	Removed   []Point   // original values of replaced samples, in axis order
}

// Detector flags cosmic-ray spikes.
type Detector struct {
	cfg Config
}

// NewDetector creates a detector with the given options applied to
// [DefaultConfig].
func NewDetector(opts ...Option) *Detector {
	return &Detector{cfg: ApplyOptions(opts...)}
}

// Config returns the detector settings.
func (d *Detector) Config() Config {
	return d.cfg
}

// Detect returns a mask marking spikes in intensity. NaN samples are never
// flagged.
func (d *Detector) Detect(intensity []float64) []bool {
	n := len(intensity)
	mask := make([]bool, n)
	half := d.cfg.Window / 2

	var (
		est robust.Estimator
		buf = make([]float64, 0, d.cfg.Window)
	)

	for i, x := range intensity {
		if math.IsNaN(x) {
			continue
		}

		lo := max(0, i-half)
		hi := min(n, i+half+1)
		buf = append(buf[:0], intensity[lo:i]...)
		buf = append(buf, intensity[i+1:hi]...)

		med, mad := est.MedianMAD(buf)
		if math.IsNaN(med) {
			continue
		}

		sigma := math.Max(robust.MADScale*mad, d.cfg.MinSigma+d.cfg.RelativeFloor*math.Abs(med))
		if x-med > d.cfg.Threshold*sigma {
			mask[i] = true
		}
	}

	return mask
}

// Clean removes spikes from one frame. When automatic is false only the
// manual ranges are applied. wavelength and intensity must have equal length;
// neither is modified.
func (d *Detector) Clean(frame int, wavelength, intensity []float64, automatic bool, manual []Range) Result {
	var mask []bool
	if automatic {
		mask = d.Detect(intensity)
	} else {
		mask = make([]bool, len(intensity))
	}

	for _, r := range manual {
		for i, wl := range wavelength {
			if r.Contains(wl) {
				mask[i] = true
			}
		}
	}

	res := Result{Intensity: Repair(wavelength, intensity, mask)}
	for i, flagged := range mask {
		if flagged {
			res.Removed = append(res.Removed, Point{
				Frame:      frame,
				Wavelength: wavelength[i],
				Intensity:  intensity[i],
			})
		}
	}

	return res
}

// Repair returns a copy of intensity with every masked sample replaced by
// linear interpolation between the nearest unmasked neighbours. Samples with
// an unmasked neighbour on one side only take that neighbour's value; if no
// sample is unmasked the masked samples become NaN.
func Repair(wavelength, intensity []float64, mask []bool) []float64 {
	out := make([]float64, len(intensity))
	copy(out, intensity)

	n := len(intensity)
	for i := 0; i < n; {
		if !mask[i] {
			i++
			continue
		}

		// [i, j) is a run of masked samples.
		j := i
		for j < n && mask[j] {
			j++
		}

		left, right := i-1, j
		for k := i; k < j; k++ {
			switch {
			case left >= 0 && right < n:
				out[k] = interp.Between(wavelength[left], intensity[left], wavelength[right], intensity[right], wavelength[k])
			case left >= 0:
				out[k] = intensity[left]
			case right < n:
				out[k] = intensity[right]
			default:
				out[k] = math.NaN()
			}
		}
		i = j
	}

	return out
}

// Selects reports whether r contains at least one sample of wavelength.
func Selects(r Range, wavelength []float64) bool {
	for _, wl := range wavelength {
		if r.Contains(wl) {
			return true
		}
	}
	return false
}
