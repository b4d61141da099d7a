package pipeline

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-sfg/dsp/core"
	"github.com/cwbudde/algo-sfg/dsp/interp"
	"github.com/cwbudde/algo-sfg/sfg/catalog"
	"github.com/cwbudde/algo-sfg/sfg/cosmic"
)

// Loaded holds the raw trace of every catalog entry.
type Loaded struct {
	cfg Config
	cat *catalog.Catalog
	raw map[string]Trace
}

// Load reads the trace of every catalog entry. The catalog must be fully
// built. Load fails on the first entry that cannot be read or has no frames.
func Load(cat *catalog.Catalog, loader Loader, opts ...Option) (*Loaded, error) {
	cfg := ApplyOptions(opts...)
	entries := cat.All()
	traces := make([]Trace, len(entries))

	err := forEach(cfg.Workers, len(entries), func(i int) error {
		name := entries[i].Filename
		t, err := loader.Load(name)
		if err != nil {
			return fmt.Errorf("pipeline: load %s: %w", name, err)
		}
		if err := t.validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		traces[i] = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	raw := make(map[string]Trace, len(entries))
	for i, e := range entries {
		raw[e.Filename] = traces[i]
	}

	cfg.Logger.Debug("loaded traces", "files", len(raw))
	return &Loaded{cfg: cfg, cat: cat, raw: raw}, nil
}

// Catalog returns the catalog the traces were loaded for.
func (l *Loaded) Catalog() *catalog.Catalog {
	return l.cat
}

// Raw returns the raw trace of filename.
func (l *Loaded) Raw(filename string) (Trace, bool) {
	t, ok := l.raw[filename]
	return t, ok
}

// Cleaned holds cosmic-ray cleaned traces and the removed points per file.
type Cleaned struct {
	loaded  *Loaded
	traces  map[string]Trace
	removed map[string][]cosmic.Point
}

// RemoveCosmicRays cleans every frame of every entry, backgrounds included.
// With automatic set the spike detector runs on every frame; overrides are
// applied regardless. An override naming an unknown file or frame, or a
// range that selects no sample, fails with [cosmic.ErrInvalidCleaningTarget]
// before any frame is cleaned.
func (l *Loaded) RemoveCosmicRays(automatic bool, overrides []cosmic.Override, opts ...cosmic.Option) (*Cleaned, error) {
	manual, err := l.resolveOverrides(overrides)
	if err != nil {
		return nil, err
	}

	det := cosmic.NewDetector(opts...)
	entries := l.cat.All()
	traces := make([]Trace, len(entries))
	removed := make([][]cosmic.Point, len(entries))

	err = forEach(l.cfg.Workers, len(entries), func(i int) error {
		name := entries[i].Filename
		raw := l.raw[name]
		frames := make([]Frame, len(raw.Frames))

		for k, f := range raw.Frames {
			res := det.Clean(f.Number, f.Wavelength, f.Intensity, automatic, manual[name][f.Number])
			frames[k] = Frame{Number: f.Number, Wavelength: f.Wavelength, Intensity: res.Intensity}
			removed[i] = append(removed[i], res.Removed...)
		}

		traces[i] = Trace{Frames: frames}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c := &Cleaned{
		loaded:  l,
		traces:  make(map[string]Trace, len(entries)),
		removed: make(map[string][]cosmic.Point),
	}
	total := 0
	for i, e := range entries {
		c.traces[e.Filename] = traces[i]
		if len(removed[i]) > 0 {
			c.removed[e.Filename] = removed[i]
			total += len(removed[i])
			l.cfg.Logger.Debug("removed cosmic rays", "file", e.Filename, "points", len(removed[i]))
		}
	}

	l.cfg.Logger.Info("cosmic rays removed", "points", total, "files", len(c.removed), "automatic", automatic, "overrides", len(overrides))
	return c, nil
}

// resolveOverrides groups overrides by filename and frame number.
func (l *Loaded) resolveOverrides(overrides []cosmic.Override) (map[string]map[int][]cosmic.Range, error) {
	out := make(map[string]map[int][]cosmic.Range)

	for _, o := range overrides {
		raw, ok := l.raw[o.Filename]
		if !ok {
			return nil, fmt.Errorf("%w: unknown file %q", cosmic.ErrInvalidCleaningTarget, o.Filename)
		}
		f, ok := raw.Frame(o.Frame)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no frame %d (frames %v)",
				cosmic.ErrInvalidCleaningTarget, o.Filename, o.Frame, raw.FrameNumbers())
		}
		r := o.Range.Normalized()
		if !cosmic.Selects(r, f.Wavelength) {
			return nil, fmt.Errorf("%w: %s frame %d: range [%g, %g] nm selects no sample",
				cosmic.ErrInvalidCleaningTarget, o.Filename, o.Frame, r.Min, r.Max)
		}

		if out[o.Filename] == nil {
			out[o.Filename] = make(map[int][]cosmic.Range)
		}
		out[o.Filename][o.Frame] = append(out[o.Filename][o.Frame], r)
	}

	return out, nil
}

// CleanedTrace returns the cleaned trace of filename.
func (c *Cleaned) CleanedTrace(filename string) (Trace, bool) {
	t, ok := c.traces[filename]
	return t, ok
}

// Removed returns the points removed from filename, in frame then axis order.
func (c *Cleaned) Removed(filename string) []cosmic.Point {
	return c.removed[filename]
}

// Averaged holds one frame-averaged curve per file.
type Averaged struct {
	cleaned *Cleaned
	curves  map[string]Curve
}

// AverageFrames collapses the frames of every file into their pointwise
// mean. All frames of a file must share one wavelength axis.
func (c *Cleaned) AverageFrames() (*Averaged, error) {
	cfg, entries := c.loaded.cfg, c.loaded.cat.All()
	curves := make([]Curve, len(entries))

	err := forEach(cfg.Workers, len(entries), func(i int) error {
		name := entries[i].Filename
		avg, err := averageFrames(c.traces[name])
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		curves[i] = avg
		return nil
	})
	if err != nil {
		return nil, err
	}

	a := &Averaged{cleaned: c, curves: make(map[string]Curve, len(entries))}
	for i, e := range entries {
		a.curves[e.Filename] = curves[i]
	}
	return a, nil
}

func averageFrames(t Trace) (Curve, error) {
	if len(t.Frames) == 0 {
		return Curve{}, ErrNoFrames
	}

	first := t.Frames[0]
	axis := make([]float64, len(first.Wavelength))
	copy(axis, first.Wavelength)
	sum := make([]float64, len(first.Intensity))
	copy(sum, first.Intensity)

	for _, f := range t.Frames[1:] {
		if !core.SlicesNearlyEqual(axis, f.Wavelength, axisTolerance) {
			return Curve{}, fmt.Errorf("%w: frame %d differs from frame %d",
				ErrFrameAxisMismatch, f.Number, first.Number)
		}
		vecmath.AddBlockInPlace(sum, f.Intensity)
	}
	vecmath.ScaleBlockInPlace(sum, 1/float64(len(t.Frames)))

	return Curve{Wavelength: axis, Intensity: sum}, nil
}

// Mean returns the frame-averaged curve of filename.
func (a *Averaged) Mean(filename string) (Curve, bool) {
	c, ok := a.curves[filename]
	return c, ok
}

// Subtracted holds background-subtracted curves of every signal entry.
type Subtracted struct {
	averaged *Averaged
	curves   map[string]Curve
}

// SubtractBackground subtracts the averaged background linked to every
// sample, reference and calibration entry. A background on a different axis
// is linearly interpolated onto the entry's axis; points outside the
// background's span become NaN. Negative results are kept.
func (a *Averaged) SubtractBackground() (*Subtracted, error) {
	cfg, cat := a.cleaned.loaded.cfg, a.cleaned.loaded.cat

	var signals []*catalog.Entry
	for _, e := range cat.All() {
		if e.IsSignal() {
			signals = append(signals, e)
		}
	}
	curves := make([]Curve, len(signals))

	err := forEach(cfg.Workers, len(signals), func(i int) error {
		e := signals[i]
		bgEntry, ok := cat.Background(e)
		if !ok {
			return fmt.Errorf("%w for %q", catalog.ErrUnmatchedBackground, e.Filename)
		}
		curves[i] = subtract(a.curves[e.Filename], a.curves[bgEntry.Filename])
		return nil
	})
	if err != nil {
		return nil, err
	}

	s := &Subtracted{averaged: a, curves: make(map[string]Curve, len(signals))}
	for i, e := range signals {
		s.curves[e.Filename] = curves[i]
	}
	return s, nil
}

// subtract returns sig - bg on sig's axis.
func subtract(sig, bg Curve) Curve {
	bgOnAxis := bg.Intensity
	if !sig.SameAxis(bg) {
		bgOnAxis = interp.Resample(bg.Wavelength, bg.Intensity, sig.Wavelength)
	}

	out := make([]float64, sig.Len())
	vecmath.ScaleBlock(out, bgOnAxis, -1)
	vecmath.AddBlockInPlace(out, sig.Intensity)

	return Curve{Wavelength: sig.Wavelength, Intensity: out}
}

// BackgroundSubtracted returns the background-subtracted curve of filename.
func (s *Subtracted) BackgroundSubtracted(filename string) (Curve, bool) {
	c, ok := s.curves[filename]
	return c, ok
}
