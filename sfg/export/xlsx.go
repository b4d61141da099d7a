package export

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/cwbudde/algo-sfg/sfg/pipeline"
)

const (
	provenanceSheet = "provenance"
	maxSheetName    = 31
)

var sheetReplacer = strings.NewReplacer(
	"[", "_", "]", "_", ":", "_", "*", "_",
	"?", "_", "/", "_", "\\", "_",
)

// WriteWorkbook saves spectra to an XLSX workbook at path: one sheet per
// spectrum holding the same table as the CSV export, plus a provenance sheet
// listing every source file.
func WriteWorkbook(path string, spectra []*pipeline.Spectrum, p Provenance) error {
	if len(spectra) == 0 {
		return ErrNoSpectra
	}

	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool)
	for _, sp := range spectra {
		name := sheetName(sp.Filename, used)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("export: sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, sp); err != nil {
			return err
		}
	}

	if err := writeProvenance(f, spectra, p); err != nil {
		return err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, sp *pipeline.Spectrum) error {
	if err := f.SetSheetRow(sheet, "A1", &[]any{header[0], header[1], header[2]}); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	for i := range sp.Intensity {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		row := []any{cellValue(sp.Wavenumber[i]), cellValue(sp.Wavelength[i]), cellValue(sp.Intensity[i])}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	return nil
}

func writeProvenance(f *excelize.File, spectra []*pipeline.Spectrum, p Provenance) error {
	if _, err := f.NewSheet(provenanceSheet); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	rows := [][]any{{"key", "value"}}
	for _, kv := range p.fields("")[1:] {
		rows = append(rows, []any{kv[0], kv[1]})
	}
	for _, sp := range spectra {
		rows = append(rows, []any{"source", sp.Filename})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if err := f.SetSheetRow(provenanceSheet, cell, &row); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	return nil
}

// cellValue keeps finite numbers numeric; spreadsheets have no NaN.
func cellValue(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return formatFloat(v)
	}
	return v
}

// sheetName derives a unique, valid sheet name from a source filename.
func sheetName(source string, used map[string]bool) string {
	base := filepath.Base(source)
	stem := sheetReplacer.Replace(strings.TrimSuffix(base, filepath.Ext(base)))
	if len(stem) > maxSheetName {
		stem = stem[:maxSheetName]
	}

	name := stem
	for n := 2; used[strings.ToLower(name)] || strings.EqualFold(name, provenanceSheet); n++ {
		suffix := fmt.Sprintf("~%d", n)
		name = stem[:min(len(stem), maxSheetName-len(suffix))] + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}
