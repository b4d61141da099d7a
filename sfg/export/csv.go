package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-sfg/sfg/pipeline"
)

// Suffix is appended to the stem of exported files.
const Suffix = "_processed"

// ErrNoSpectra is returned when there is nothing to export.
var ErrNoSpectra = errors.New("export: no spectra")

var header = []string{"Wavenumber", "Wavelength", "Intensity"}

// FileName returns the export name for a source file, for example
// "water_ssp_600s_01.csv" becomes "water_ssp_600s_01_processed.csv".
func FileName(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base)) + Suffix + ".csv"
}

// WriteCSV writes sp with its provenance header to w.
func WriteCSV(w io.Writer, sp *pipeline.Spectrum, p Provenance) error {
	for _, kv := range p.fields(sp.Filename) {
		if _, err := fmt.Fprintf(w, "# %s: %s\n", kv[0], kv[1]); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	row := make([]string, len(header))
	for i := range sp.Intensity {
		row[0] = formatFloat(sp.Wavenumber[i])
		row[1] = formatFloat(sp.Wavelength[i])
		row[2] = formatFloat(sp.Intensity[i])
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// WriteCSVFiles writes one CSV per spectrum into dir, creating it when
// needed, and returns the written paths in input order.
func WriteCSVFiles(dir string, spectra []*pipeline.Spectrum, p Provenance) ([]string, error) {
	if len(spectra) == 0 {
		return nil, ErrNoSpectra
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	paths := make([]string, 0, len(spectra))
	for _, sp := range spectra {
		path := filepath.Join(dir, FileName(sp.Filename))
		if err := writeFile(path, sp, p); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, sp *pipeline.Spectrum, p Provenance) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("export: %w", cerr)
		}
	}()
	return WriteCSV(f, sp, p)
}

// formatFloat renders v in the shortest exact form; NaN becomes "NaN".
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
