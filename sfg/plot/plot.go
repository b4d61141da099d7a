package plot

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/cwbudde/algo-sfg/dsp/core"
	"github.com/cwbudde/algo-sfg/sfg/catalog"
	"github.com/cwbudde/algo-sfg/sfg/cosmic"
	"github.com/cwbudde/algo-sfg/sfg/pipeline"
)

// ErrNothingToPlot is returned for a figure without any data.
var ErrNothingToPlot = errors.New("plot: nothing to plot")

var removedColor = color.RGBA{R: 220, A: 255}

const (
	wavelengthLabel = "Wavelength (nm)"
	wavenumberLabel = "Wavenumber (cm⁻¹)"
	countsLabel     = "Intensity (counts)"
	ratioLabel      = "Normalized intensity"
)

// Renderer builds and saves figures.
type Renderer struct {
	cfg Config
}

// New creates a renderer with opts applied to [DefaultConfig].
func New(opts ...Option) *Renderer {
	return &Renderer{cfg: ApplyOptions(opts...)}
}

// Raw draws every raw frame of every file of role with removed points
// marked.
func (r *Renderer) Raw(res *pipeline.Result, role catalog.Role) (*gplot.Plot, error) {
	entries := res.Catalog().Entries(role)
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no %s files", ErrNothingToPlot, role)
	}

	p := gplot.New()
	p.Title.Text = "Raw " + role.String() + " spectra"
	p.X.Label.Text = wavelengthLabel
	p.Y.Label.Text = countsLabel

	for i, e := range entries {
		tr, ok := res.Raw(e.Filename)
		if !ok {
			continue
		}
		c := plotutil.Color(i)
		for k, f := range tr.Frames {
			label := ""
			if k == 0 {
				label = e.Filename
			}
			if err := addLine(p, f.Wavelength, f.Intensity, c, label); err != nil {
				return nil, err
			}
		}

		if removed := res.Removed(e.Filename); len(removed) > 0 {
			if err := addRemoved(p, removed); err != nil {
				return nil, err
			}
		}
	}

	p.Legend.Top = true
	return p, nil
}

// Processed overlays spectra on the wavenumber axis.
func (r *Renderer) Processed(spectra []*pipeline.Spectrum) (*gplot.Plot, error) {
	if len(spectra) == 0 {
		return nil, fmt.Errorf("%w: no processed spectra", ErrNothingToPlot)
	}

	p := gplot.New()
	p.Title.Text = "Processed spectra"
	r.decorate(p)

	for i, sp := range spectra {
		if err := addLine(p, sp.Wavenumber, sp.Intensity, plotutil.Color(i), sp.Label()); err != nil {
			return nil, err
		}
	}

	p.Legend.Top = true
	return p, nil
}

// Spectrum draws one processed spectrum.
func (r *Renderer) Spectrum(sp *pipeline.Spectrum) (*gplot.Plot, error) {
	p := gplot.New()
	p.Title.Text = sp.Label()
	r.decorate(p)
	if err := addLine(p, sp.Wavenumber, sp.Intensity, plotutil.Color(0), ""); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Renderer) decorate(p *gplot.Plot) {
	p.X.Label.Text = wavenumberLabel
	p.Y.Label.Text = ratioLabel
	p.Add(plotter.NewGrid())
	if r.cfg.Wavenumber.valid() {
		p.X.Min, p.X.Max = r.cfg.Wavenumber.Min, r.cfg.Wavenumber.Max
	}
	if r.cfg.Intensity.valid() {
		p.Y.Min, p.Y.Max = r.cfg.Intensity.Min, r.cfg.Intensity.Max
	}
}

// Save writes p as a PNG at path.
func (r *Renderer) Save(p *gplot.Plot, path string) error {
	if err := p.Save(r.cfg.Width, r.cfg.Height, path); err != nil {
		return fmt.Errorf("plot: save %s: %w", path, err)
	}
	return nil
}

// WriteAll saves the raw overview of every populated role, the processed
// samples overlay and one figure per sample into dir. It returns the written
// paths.
func (r *Renderer) WriteAll(dir string, res *pipeline.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("plot: %w", err)
	}

	var paths []string
	save := func(p *gplot.Plot, name string) error {
		path := filepath.Join(dir, name)
		if err := r.Save(p, path); err != nil {
			return err
		}
		paths = append(paths, path)
		return nil
	}

	for _, role := range catalog.Roles {
		if len(res.Catalog().Entries(role)) == 0 {
			continue
		}
		p, err := r.Raw(res, role)
		if err != nil {
			return paths, err
		}
		if err := save(p, "raw_"+role.String()+".png"); err != nil {
			return paths, err
		}
	}

	samples := res.Spectra(catalog.RoleSample)
	if len(samples) == 0 {
		return paths, nil
	}
	p, err := r.Processed(samples)
	if err != nil {
		return paths, err
	}
	if err := save(p, "processed_samples.png"); err != nil {
		return paths, err
	}

	for _, sp := range samples {
		p, err := r.Spectrum(sp)
		if err != nil {
			return paths, err
		}
		stem := strings.TrimSuffix(sp.Filename, filepath.Ext(sp.Filename))
		if err := save(p, stem+".png"); err != nil {
			return paths, err
		}
	}

	return paths, nil
}

// addLine adds one polyline per finite run of (xs, ys). Only the first
// segment carries the legend entry.
func addLine(p *gplot.Plot, xs, ys []float64, c color.Color, label string) error {
	for k, seg := range segments(xs, ys) {
		l, err := plotter.NewLine(seg)
		if err != nil {
			return fmt.Errorf("plot: %w", err)
		}
		l.LineStyle.Color = c
		l.LineStyle.Width = vg.Points(1)
		p.Add(l)
		if k == 0 && label != "" {
			p.Legend.Add(label, l)
		}
	}
	return nil
}

func addRemoved(p *gplot.Plot, removed []cosmic.Point) error {
	pts := make(plotter.XYs, 0, len(removed))
	for _, pt := range removed {
		if core.IsFinite(pt.Wavelength) && core.IsFinite(pt.Intensity) {
			pts = append(pts, plotter.XY{X: pt.Wavelength, Y: pt.Intensity})
		}
	}
	if len(pts) == 0 {
		return nil
	}

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	s.GlyphStyle.Shape = draw.CrossGlyph{}
	s.GlyphStyle.Color = removedColor
	s.GlyphStyle.Radius = vg.Points(3)
	p.Add(s)
	return nil
}

// segments splits (xs, ys) at non-finite points.
func segments(xs, ys []float64) []plotter.XYs {
	var (
		out []plotter.XYs
		cur plotter.XYs
	)
	for i := range min(len(xs), len(ys)) {
		if !core.IsFinite(xs[i]) || !core.IsFinite(ys[i]) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: xs[i], Y: ys[i]})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}
