package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/cwbudde/algo-sfg/sfg/cosmic"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SFG"

// ErrInvalid is returned when the merged configuration fails validation.
var ErrInvalid = errors.New("config: invalid configuration")

// Config holds all settings of one processing run.
type Config struct {
	W1Wavelength float64 `yaml:"w1_wavelength" envconfig:"W1_WAVELENGTH" validate:"gt=0"`
	DataDir      string  `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	OutputDir    string  `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	Export       bool    `yaml:"export" envconfig:"EXPORT"`
	ExportXLSX   bool    `yaml:"export_xlsx" envconfig:"EXPORT_XLSX"`
	Plot         bool    `yaml:"plot" envconfig:"PLOT"`
	PlotDir      string  `yaml:"plot_dir" envconfig:"PLOT_DIR" validate:"required"`
	Workers      int     `yaml:"workers" envconfig:"WORKERS" validate:"gte=1"`

	WavenumberRange Range            `yaml:"wavenumber_range" envconfig:"WAVENUMBER_RANGE"`
	IntensityRange  Range            `yaml:"intensity_range" envconfig:"INTENSITY_RANGE"`
	Cleaning        CleaningConfig   `yaml:"cleaning" envconfig:"CLEANING"`
	ManualCleaning  []ManualCleaning `yaml:"manual_cleaning" ignored:"true" validate:"dive"`
	Logging         LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
}

// Range is a closed plotting interval.
type Range struct {
	Min float64 `yaml:"min" envconfig:"MIN"`
	Max float64 `yaml:"max" envconfig:"MAX" validate:"gtfield=Min"`
}

// CleaningConfig controls automatic cosmic-ray removal.
type CleaningConfig struct {
	Automatic bool    `yaml:"automatic" envconfig:"AUTOMATIC"`
	Window    int     `yaml:"window" envconfig:"WINDOW" validate:"gte=3"`
	Threshold float64 `yaml:"threshold" envconfig:"THRESHOLD" validate:"gt=0"`
}

// ManualCleaning removes a wavelength range from one frame of one file.
type ManualCleaning struct {
	Filename string    `yaml:"filename" validate:"required"`
	Frame    int       `yaml:"frame" validate:"gte=1"`
	Range    []float64 `yaml:"range" validate:"len=2"`
}

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=text json"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		W1Wavelength:    793.27,
		DataDir:         "example data",
		OutputDir:       "processed_data",
		PlotDir:         "plots",
		Workers:         1,
		WavenumberRange: Range{Min: 2800, Max: 3800},
		IntensityRange:  Range{Min: -0.02, Max: 0.1},
		Cleaning: CleaningConfig{
			Automatic: true,
			Window:    9,
			Threshold: 6,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped
// when path is empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile overlays the YAML document at path; keys it omits keep their
// current value.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}
	return nil
}

// Validate checks every field constraint.
func (c *Config) Validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Overrides converts the manual cleaning list.
func (c *Config) Overrides() []cosmic.Override {
	out := make([]cosmic.Override, len(c.ManualCleaning))
	for i, m := range c.ManualCleaning {
		out[i] = cosmic.Override{
			Filename: m.Filename,
			Frame:    m.Frame,
			Range:    cosmic.Range{Min: m.Range[0], Max: m.Range[1]},
		}
	}
	return out
}

// DetectorOptions returns the automatic detector settings.
func (c *Config) DetectorOptions() []cosmic.Option {
	return []cosmic.Option{
		cosmic.WithWindow(c.Cleaning.Window),
		cosmic.WithThreshold(c.Cleaning.Threshold),
	}
}
