package robust

import "math"

// Summary holds statistics over the finite samples of a trace.
type Summary struct {
	Length    int // total samples, including non-finite ones
	Finite    int // samples that entered the statistics
	NonFinite int // NaN or Inf samples
	Mean      float64
	StdDev    float64 // population standard deviation
	Min       float64
	MinPos    int
	Max       float64
	MaxPos    int
}

// Summarize computes a [Summary] in a single pass using Welford's algorithm.
// Mean, StdDev, Min and Max are NaN and positions are -1 when no sample is finite.
func Summarize(x []float64) Summary {
	s := Summary{
		Length: len(x),
		Mean:   math.NaN(),
		StdDev: math.NaN(),
		Min:    math.NaN(),
		MinPos: -1,
		Max:    math.NaN(),
		MaxPos: -1,
	}

	var mean, m2 float64
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			s.NonFinite++
			continue
		}

		s.Finite++
		delta := v - mean
		mean += delta / float64(s.Finite)
		m2 += delta * (v - mean)

		if s.MaxPos < 0 || v > s.Max {
			s.Max, s.MaxPos = v, i
		}
		if s.MinPos < 0 || v < s.Min {
			s.Min, s.MinPos = v, i
		}
	}

	if s.Finite > 0 {
		s.Mean = mean
		s.StdDev = math.Sqrt(m2 / float64(s.Finite))
	}

	return s
}
