package core

import "math"

const defaultEpsilon = 1e-12

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// SlicesNearlyEqual reports whether a and b have the same length and every
// element pair is NearlyEqual within eps.
func SlicesNearlyEqual(a, b []float64, eps float64) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !NearlyEqual(a[i], b[i], eps) {
			return false
		}
	}

	return true
}

// IsFinite reports whether x is neither NaN nor an infinity.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
