// Command sfgproc processes a directory of SFG measurement files.
//
// Usage:
//
//	sfgproc [flags]
//
// Files are classified by name, paired with their backgrounds and reference,
// cleaned of cosmic rays, averaged, background-subtracted and normalized. A
// summary of every processed sample is printed to stdout.
//
// Examples:
//
//	sfgproc -dir "example data"
//	sfgproc -config sfg.yaml -export -plot
//	sfgproc -w1 800 -workers 4
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/cwbudde/algo-sfg/internal/config"
	"github.com/cwbudde/algo-sfg/internal/logging"
	"github.com/cwbudde/algo-sfg/sfg/catalog"
	"github.com/cwbudde/algo-sfg/sfg/datafile"
	"github.com/cwbudde/algo-sfg/sfg/export"
	"github.com/cwbudde/algo-sfg/sfg/pipeline"
	"github.com/cwbudde/algo-sfg/sfg/plot"
	"github.com/cwbudde/algo-sfg/stats/robust"
)

const scriptName = "sfgproc"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet(scriptName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML configuration file")
	dir := fs.String("dir", "", "directory holding the measurement files")
	w1 := fs.Float64("w1", 0, "visible wavelength in nm")
	doExport := fs.Bool("export", false, "write processed CSV files")
	doPlot := fs.Bool("plot", false, "write PNG figures")
	workers := fs.Int("workers", 0, "files processed concurrently per stage")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: sfgproc [flags]\n\n")
		fmt.Fprintf(stderr, "Processes SFG spectra found in a directory.\n")
		fmt.Fprintf(stderr, "Flags override the configuration file and SFG_* environment variables.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dir":
			cfg.DataDir = *dir
		case "w1":
			cfg.W1Wavelength = *w1
		case "export":
			cfg.Export = *doExport
		case "plot":
			cfg.Plot = *doPlot
		case "workers":
			cfg.Workers = *workers
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(stderr, cfg.Logging)
	if err != nil {
		return err
	}

	names, err := catalog.Discover(cfg.DataDir)
	if err != nil {
		return err
	}
	cat, err := catalog.Build(names)
	if err != nil {
		return err
	}
	log.Info("catalog built", "dir", cfg.DataDir,
		"samples", len(cat.Entries(catalog.RoleSample)),
		"refs", len(cat.Entries(catalog.RoleReference)),
		"calibrations", len(cat.Entries(catalog.RoleCalibration)),
		"backgrounds", len(cat.Entries(catalog.RoleBackground)))

	runner := pipeline.NewRunner(pipeline.WithWorkers(cfg.Workers), pipeline.WithLogger(log))
	res, err := runner.Run(cat, datafile.NewReader(cfg.DataDir), pipeline.Params{
		W1:        cfg.W1Wavelength,
		Automatic: cfg.Cleaning.Automatic,
		Overrides: cfg.Overrides(),
		Detector:  cfg.DetectorOptions(),
	})
	if err != nil {
		return err
	}

	if cfg.Export || cfg.ExportXLSX {
		if err := writeExports(cfg, res); err != nil {
			return err
		}
		log.Info("exported", "dir", cfg.OutputDir)
	}

	if cfg.Plot {
		r := plot.New(
			plot.WithWavenumberRange(cfg.WavenumberRange.Min, cfg.WavenumberRange.Max),
			plot.WithIntensityRange(cfg.IntensityRange.Min, cfg.IntensityRange.Max),
		)
		paths, err := r.WriteAll(cfg.PlotDir, res)
		if err != nil {
			return err
		}
		log.Info("plots written", "dir", cfg.PlotDir, "files", len(paths))
	}

	return printSummary(stdout, res)
}

func writeExports(cfg *config.Config, res *pipeline.Result) error {
	prov := export.NewProvenance(scriptName, res.W1)

	if cfg.Export {
		var spectra []*pipeline.Spectrum
		for _, role := range catalog.Roles {
			spectra = append(spectra, res.Spectra(role)...)
		}
		if _, err := export.WriteCSVFiles(cfg.OutputDir, spectra, prov); err != nil {
			return err
		}
	}

	if cfg.ExportXLSX {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return err
		}
		path := filepath.Join(cfg.OutputDir, "samples.xlsx")
		if err := export.WriteWorkbook(path, res.Spectra(catalog.RoleSample), prov); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(w io.Writer, res *pipeline.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Sample\tPol\tPoints\tFlagged\tRemoved\tMean\tPeak\tPeak [cm-1]\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tw, "------\t---\t------\t-------\t-------\t----\t----\t-----------\n"); err != nil {
		return err
	}

	for _, sp := range res.Spectra(catalog.RoleSample) {
		s := robust.Summarize(sp.Intensity)
		peakAt := "-"
		if s.MaxPos >= 0 {
			peakAt = fmt.Sprintf("%.1f", sp.Wavenumber[s.MaxPos])
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%.4g\t%.4g\t%s\n",
			sp.Name+" "+sp.Index,
			sp.Polarization,
			s.Length,
			len(sp.Flagged),
			len(sp.Removed),
			s.Mean,
			s.Max,
			peakAt,
		); err != nil {
			return err
		}
	}
	return tw.Flush()
}
