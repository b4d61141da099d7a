package robust

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// MADScale converts a median absolute deviation into a standard deviation
// estimate for normally distributed data.
const MADScale = 1.4826

// Median returns the median of the finite values in x.
// Returns NaN when x holds no finite value. x is not modified.
func Median(x []float64) float64 {
	buf := finiteCopy(nil, x)
	sort.Float64s(buf)
	return MedianSorted(buf)
}

// MedianSorted returns the median of an ascending slice without NaNs.
// Even-length input yields the mean of the two middle values.
func MedianSorted(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n%2 == 1 {
		return stat.Quantile(0.5, stat.Empirical, sorted, nil)
	}
	return 0.5 * (sorted[n/2-1] + sorted[n/2])
}

// MAD returns the median absolute deviation of the finite values in x
// around center.
func MAD(x []float64, center float64) float64 {
	buf := finiteCopy(nil, x)
	for i, v := range buf {
		buf[i] = math.Abs(v - center)
	}
	sort.Float64s(buf)
	return MedianSorted(buf)
}

// Estimator computes median and MAD over many short windows, reusing its
// scratch buffer between calls. It is not safe for concurrent use.
type Estimator struct {
	scratch []float64
}

// MedianMAD returns the median of the finite values in window and their
// median absolute deviation around it. Both are NaN for an all-NaN window.
func (e *Estimator) MedianMAD(window []float64) (median, mad float64) {
	e.scratch = finiteCopy(e.scratch[:0], window)
	if len(e.scratch) == 0 {
		return math.NaN(), math.NaN()
	}

	sort.Float64s(e.scratch)
	median = MedianSorted(e.scratch)

	for i, v := range e.scratch {
		e.scratch[i] = math.Abs(v - median)
	}
	sort.Float64s(e.scratch)

	return median, MedianSorted(e.scratch)
}

func finiteCopy(dst, x []float64) []float64 {
	for _, v := range x {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			dst = append(dst, v)
		}
	}
	return dst
}
