// Package datafile reads spectrometer exports into pipeline traces.
//
// A data file is delimited text (comma, tab or semicolon, detected from the
// header line) with a header row. Columns are located by name, ignoring case
// and any unit suffix such as "Wavelength (nm)":
//
//	Frame,Wavelength,Intensity
//	1,620.0,1012
//	1,620.2,1008
//	2,620.0,1010
//
// The Frame column is optional; without it the file holds one frame numbered 1.
// Rows are grouped by frame in order of first appearance. Lines starting
// with '#' are skipped.
package datafile

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-sfg/sfg/pipeline"
)

// Errors returned while reading data files.
var (
	ErrMissingColumn = errors.New("datafile: required column missing")
	ErrBadRecord     = errors.New("datafile: malformed record")
	ErrEmpty         = errors.New("datafile: no data rows")
)

// peekSize bounds the header line used for delimiter detection.
const peekSize = 64 << 10

const (
	colFrame      = "frame"
	colWavelength = "wavelength"
	colIntensity  = "intensity"
)

// Reader loads data files from a directory. It implements [pipeline.Loader].
type Reader struct {
	Dir string
}

// NewReader creates a reader rooted at dir.
func NewReader(dir string) *Reader {
	return &Reader{Dir: dir}
}

// Load reads filename relative to the reader's directory.
func (r *Reader) Load(filename string) (pipeline.Trace, error) {
	path := filepath.Join(r.Dir, filename)
	f, err := os.Open(path)
	if err != nil {
		return pipeline.Trace{}, fmt.Errorf("datafile: %w", err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return pipeline.Trace{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse reads a trace from rd.
func Parse(rd io.Reader) (pipeline.Trace, error) {
	br := bufio.NewReaderSize(rd, peekSize)
	sep, err := sniffDelimiter(br)
	if err != nil {
		return pipeline.Trace{}, err
	}

	cr := csv.NewReader(br)
	cr.Comma = sep
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = sep != '\t'

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return pipeline.Trace{}, ErrEmpty
		}
		return pipeline.Trace{}, fmt.Errorf("%w: header: %v", ErrBadRecord, err)
	}
	cols, err := locateColumns(header)
	if err != nil {
		return pipeline.Trace{}, err
	}

	var (
		frames []pipeline.Frame
		index  = make(map[int]int)
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return pipeline.Trace{}, fmt.Errorf("%w: %v", ErrBadRecord, err)
		}
		if blank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)

		number := 1
		if cols.frame >= 0 {
			v, err := field(rec, cols.frame)
			if err != nil || v != math.Trunc(v) {
				return pipeline.Trace{}, fmt.Errorf("%w: line %d: frame %q", ErrBadRecord, line, cell(rec, cols.frame))
			}
			number = int(v)
		}
		wl, err := field(rec, cols.wavelength)
		if err != nil {
			return pipeline.Trace{}, fmt.Errorf("%w: line %d: wavelength: %v", ErrBadRecord, line, err)
		}
		in, err := field(rec, cols.intensity)
		if err != nil {
			return pipeline.Trace{}, fmt.Errorf("%w: line %d: intensity: %v", ErrBadRecord, line, err)
		}

		k, ok := index[number]
		if !ok {
			k = len(frames)
			index[number] = k
			frames = append(frames, pipeline.Frame{Number: number})
		}
		frames[k].Wavelength = append(frames[k].Wavelength, wl)
		frames[k].Intensity = append(frames[k].Intensity, in)
	}

	if len(frames) == 0 {
		return pipeline.Trace{}, ErrEmpty
	}
	return pipeline.Trace{Frames: frames}, nil
}

type columns struct {
	frame, wavelength, intensity int
}

func locateColumns(header []string) (columns, error) {
	cols := columns{frame: -1, wavelength: -1, intensity: -1}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		switch {
		case strings.HasPrefix(name, colFrame) && cols.frame < 0:
			cols.frame = i
		case strings.HasPrefix(name, colWavelength) && cols.wavelength < 0:
			cols.wavelength = i
		case strings.HasPrefix(name, colIntensity) && cols.intensity < 0:
			cols.intensity = i
		}
	}

	if cols.wavelength < 0 {
		return cols, fmt.Errorf("%w: %s", ErrMissingColumn, colWavelength)
	}
	if cols.intensity < 0 {
		return cols, fmt.Errorf("%w: %s", ErrMissingColumn, colIntensity)
	}
	return cols, nil
}

// sniffDelimiter picks the most frequent of ',', '\t' and ';' in the first
// non-comment line without consuming input. Comma is the fallback.
func sniffDelimiter(br *bufio.Reader) (rune, error) {
	peek, err := br.Peek(br.Size())
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return 0, fmt.Errorf("datafile: %w", err)
	}

	for _, line := range strings.Split(string(peek), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		best, bestN := ',', 0
		for _, sep := range []rune{',', '\t', ';'} {
			if n := strings.Count(line, string(sep)); n > bestN {
				best, bestN = sep, n
			}
		}
		return best, nil
	}

	return ',', nil
}

func field(rec []string, i int) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(cell(rec, i)), 64)
}

func cell(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
