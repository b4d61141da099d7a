package interp

import (
	"math"
	"sort"
)

// Linear2 interpolates from x0 to x1 at fraction t in [0,1].
func Linear2(t, x0, x1 float64) float64 {
	return x0 + t*(x1-x0)
}

// Between interpolates the line through (xa, ya) and (xb, yb) at x.
// If xa == xb the mean of ya and yb is returned.
func Between(xa, ya, xb, yb, x float64) float64 {
	if xb == xa {
		return 0.5 * (ya + yb)
	}
	return Linear2((x-xa)/(xb-xa), ya, yb)
}

// LinearAt interpolates ys sampled at the monotonic axis xs at position x.
// xs may be ascending or descending. NaN is returned when x lies outside
// the axis span or when xs and ys are empty or differ in length.
func LinearAt(xs, ys []float64, x float64) float64 {
	n := len(xs)
	if n == 0 || n != len(ys) || math.IsNaN(x) {
		return math.NaN()
	}
	if n == 1 {
		if x == xs[0] {
			return ys[0]
		}
		return math.NaN()
	}

	descending := xs[n-1] < xs[0]
	lo, hi := xs[0], xs[n-1]
	if descending {
		lo, hi = hi, lo
	}
	if x < lo || x > hi {
		return math.NaN()
	}

	// i is the first index whose axis value is at or beyond x.
	var i int
	if descending {
		i = sort.Search(n, func(k int) bool { return xs[k] <= x })
	} else {
		i = sort.Search(n, func(k int) bool { return xs[k] >= x })
	}
	if xs[i] == x {
		return ys[i]
	}
	return Between(xs[i-1], ys[i-1], xs[i], ys[i], x)
}

// Resample evaluates ys sampled at xs at every point of xq.
func Resample(xs, ys, xq []float64) []float64 {
	out := make([]float64, len(xq))
	for i, x := range xq {
		out[i] = LinearAt(xs, ys, x)
	}
	return out
}
