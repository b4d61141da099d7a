package pipeline

import "log/slog"

// Config defines execution settings shared by all stages of one run.
type Config struct {
	// Workers bounds how many entries a stage processes concurrently.
	// 1 processes entries serially in catalog order.
	Workers int
	Logger  *slog.Logger
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns a serial configuration that discards log output.
func DefaultConfig() Config {
	return Config{
		Workers: 1,
		Logger:  slog.New(slog.DiscardHandler),
	}
}

// WithWorkers sets the number of entries processed concurrently per stage.
func WithWorkers(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.Workers = n
		}
	}
}

// WithLogger sets the logger used for stage diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *Config) {
		if l != nil {
			cfg.Logger = l
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
