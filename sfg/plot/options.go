package plot

import "gonum.org/v1/plot/vg"

// Range is a closed axis interval.
type Range struct {
	Min float64
	Max float64
}

func (r Range) valid() bool {
	return r.Max > r.Min
}

// Config defines figure settings.
type Config struct {
	Width  vg.Length
	Height vg.Length
	// Wavenumber and Intensity crop processed figures; an empty range
	// leaves the axis on autoscale.
	Wavenumber Range
	Intensity  Range
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns 8x5 inch figures cropped to the C-H/O-H stretch
// region.
func DefaultConfig() Config {
	return Config{
		Width:      8 * vg.Inch,
		Height:     5 * vg.Inch,
		Wavenumber: Range{Min: 2800, Max: 3800},
		Intensity:  Range{Min: -0.02, Max: 0.1},
	}
}

// WithSize sets the figure size.
func WithSize(w, h vg.Length) Option {
	return func(cfg *Config) {
		if w > 0 && h > 0 {
			cfg.Width, cfg.Height = w, h
		}
	}
}

// WithWavenumberRange crops processed figures on the x axis (cm⁻¹).
func WithWavenumberRange(min, max float64) Option {
	return func(cfg *Config) {
		cfg.Wavenumber = Range{Min: min, Max: max}
	}
}

// WithIntensityRange crops processed figures on the y axis.
func WithIntensityRange(min, max float64) Option {
	return func(cfg *Config) {
		cfg.Intensity = Range{Min: min, Max: max}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
