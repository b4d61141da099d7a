package cosmic

// Config defines spike detection settings.
type Config struct {
	// Window is the odd number of samples in the sliding neighbourhood,
	// including the tested sample.
	Window int
	// Threshold is the spike excess in robust standard deviations.
	Threshold float64
	// MinSigma is an absolute floor on the robust standard deviation.
	MinSigma float64
	// RelativeFloor adds RelativeFloor*|median| to the sigma floor so that
	// perfectly flat regions do not flag rounding noise.
	RelativeFloor float64
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns defaults suited to CCD spectra with spectral
// features much wider than one pixel.
func DefaultConfig() Config {
	return Config{
		Window:        9,
		Threshold:     6,
		MinSigma:      1e-9,
		RelativeFloor: 0.01,
	}
}

// WithWindow sets the neighbourhood size. Even sizes are rounded up to the
// next odd size; sizes below 3 are ignored.
func WithWindow(size int) Option {
	return func(cfg *Config) {
		if size < 3 {
			return
		}
		if size%2 == 0 {
			size++
		}
		cfg.Window = size
	}
}

// WithThreshold sets the spike threshold in robust standard deviations.
func WithThreshold(k float64) Option {
	return func(cfg *Config) {
		if k > 0 {
			cfg.Threshold = k
		}
	}
}

// WithMinSigma sets the absolute sigma floor.
func WithMinSigma(sigma float64) Option {
	return func(cfg *Config) {
		if sigma >= 0 {
			cfg.MinSigma = sigma
		}
	}
}

// WithRelativeFloor sets the sigma floor relative to the local median.
func WithRelativeFloor(r float64) Option {
	return func(cfg *Config) {
		if r >= 0 {
			cfg.RelativeFloor = r
		}
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
