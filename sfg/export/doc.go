// Package export writes processed spectra to disk.
//
// Each spectrum becomes a CSV file named after its source file with a
// "_processed" suffix. The file starts with '#' provenance lines followed by
// a Wavenumber,Wavelength,Intensity table; missing values are written as
// NaN. [WriteWorkbook] collects every sample into one XLSX workbook.
package export
