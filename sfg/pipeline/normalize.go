package pipeline

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-sfg/dsp/core"
	"github.com/cwbudde/algo-sfg/dsp/interp"
	"github.com/cwbudde/algo-sfg/sfg/catalog"
	"github.com/cwbudde/algo-sfg/sfg/cosmic"
)

// nmToCm converts 1/nm to 1/cm.
const nmToCm = 1e7

// Wavenumber returns the infrared wavenumber in cm⁻¹ probed at SFG
// wavelength wl, both wavelengths in nm.
func Wavenumber(w1, wl float64) float64 {
	return (1/wl - 1/w1) * nmToCm
}

// Spectrum is a processed, wavenumber-indexed spectrum. It is read-only once
// returned by [Subtracted.Normalize].
type Spectrum struct {
	Filename     string
	Role         catalog.Role
	Name         string
	Polarization string
	Index        string

	Wavelength []float64
	Wavenumber []float64
	Intensity  []float64

	// Flagged lists sample indices whose value could not be computed and
	// were set to NaN.
	Flagged []int
	// Removed holds the cosmic-ray points removed from the entry's raw frames.
	Removed []cosmic.Point
}

// Label returns "name pol index".
func (s *Spectrum) Label() string {
	return fmt.Sprintf("%s %s %s", s.Name, s.Polarization, s.Index)
}

// Result is the output of a complete run.
type Result struct {
	W1      float64
	final   *Subtracted
	spectra map[catalog.Role][]*Spectrum
}

// Normalize converts every signal entry to the wavenumber axis defined by
// the visible wavelength w1 (nm). Samples are divided by their reference,
// both background-subtracted, with the reference interpolated onto the
// sample axis when needed. References and calibrations keep their
// background-subtracted intensity. Non-finite points become NaN and are
// recorded in [Spectrum.Flagged].
func (s *Subtracted) Normalize(w1 float64) (*Result, error) {
	if !core.IsFinite(w1) || w1 <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVisibleWavelength, w1)
	}

	loaded := s.averaged.cleaned.loaded
	cfg, cat := loaded.cfg, loaded.cat

	var signals []*catalog.Entry
	for _, e := range cat.All() {
		if e.IsSignal() {
			signals = append(signals, e)
		}
	}
	spectra := make([]*Spectrum, len(signals))

	err := forEach(cfg.Workers, len(signals), func(i int) error {
		e := signals[i]
		curve := s.curves[e.Filename]

		intensity := curve.Intensity
		if e.Role == catalog.RoleSample {
			ref, ok := cat.Reference(e)
			if !ok {
				return fmt.Errorf("%w for %q", catalog.ErrUnmatchedReference, e.Filename)
			}
			intensity = ratio(curve, s.curves[ref.Filename])
		}

		spectra[i] = finalize(e, w1, curve.Wavelength, intensity, s.averaged.cleaned.removed[e.Filename])
		return nil
	})
	if err != nil {
		return nil, err
	}

	r := &Result{W1: w1, final: s, spectra: make(map[catalog.Role][]*Spectrum)}
	flagged := 0
	for _, sp := range spectra {
		r.spectra[sp.Role] = append(r.spectra[sp.Role], sp)
		if n := len(sp.Flagged); n > 0 {
			flagged += n
			cfg.Logger.Warn("non-finite points flagged", "file", sp.Filename, "points", n)
		}
	}

	cfg.Logger.Info("normalized", "spectra", len(spectra), "w1_nm", w1, "flagged", flagged)
	return r, nil
}

// ratio divides sig by ref pointwise on sig's axis.
func ratio(sig, ref Curve) []float64 {
	refOnAxis := ref.Intensity
	if !sig.SameAxis(ref) {
		refOnAxis = interp.Resample(ref.Wavelength, ref.Intensity, sig.Wavelength)
	}

	inv := make([]float64, len(refOnAxis))
	for i, v := range refOnAxis {
		inv[i] = 1 / v
	}

	out := make([]float64, sig.Len())
	vecmath.MulBlock(out, sig.Intensity, inv)
	return out
}

func finalize(e *catalog.Entry, w1 float64, wavelength, intensity []float64, removed []cosmic.Point) *Spectrum {
	sp := &Spectrum{
		Filename:     e.Filename,
		Role:         e.Role,
		Name:         e.Name,
		Polarization: e.Polarization,
		Index:        e.Index,
		Wavelength:   append([]float64(nil), wavelength...),
		Wavenumber:   make([]float64, len(wavelength)),
		Intensity:    make([]float64, len(intensity)),
		Removed:      removed,
	}

	for i, wl := range wavelength {
		nu := Wavenumber(w1, wl)
		v := intensity[i]
		if !core.IsFinite(nu) || !core.IsFinite(v) {
			sp.Flagged = append(sp.Flagged, i)
			v = math.NaN()
			if !core.IsFinite(nu) {
				nu = math.NaN()
			}
		}
		sp.Wavenumber[i] = nu
		sp.Intensity[i] = v
	}

	return sp
}

// Spectra returns the processed spectra of role in catalog order.
// Backgrounds have no processed spectra.
func (r *Result) Spectra(role catalog.Role) []*Spectrum {
	return r.spectra[role]
}

// Catalog returns the catalog the run processed.
func (r *Result) Catalog() *catalog.Catalog {
	return r.final.averaged.cleaned.loaded.cat
}

// Raw returns the raw trace of filename.
func (r *Result) Raw(filename string) (Trace, bool) {
	return r.final.averaged.cleaned.loaded.Raw(filename)
}

// Removed returns the cosmic-ray points removed from filename.
func (r *Result) Removed(filename string) []cosmic.Point {
	return r.final.averaged.cleaned.Removed(filename)
}

// Mean returns the cleaned, frame-averaged curve of filename, backgrounds
// included.
func (r *Result) Mean(filename string) (Curve, bool) {
	return r.final.averaged.Mean(filename)
}

// FlaggedCount returns the number of flagged points across all spectra.
func (r *Result) FlaggedCount() int {
	n := 0
	for _, list := range r.spectra {
		for _, sp := range list {
			n += len(sp.Flagged)
		}
	}
	return n
}
