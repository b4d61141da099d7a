package testutil

import (
	"math"
	"math/rand"
)

// Axis returns n evenly spaced values starting at start.
func Axis(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

// Gaussian evaluates offset + amplitude*exp(-(x-center)^2/(2*width^2)) on axis.
func Gaussian(axis []float64, center, width, amplitude, offset float64) []float64 {
	out := make([]float64, len(axis))
	for i, x := range axis {
		d := (x - center) / width
		out[i] = offset + amplitude*math.Exp(-0.5*d*d)
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// AddNoise returns signal plus deterministic noise of the given amplitude.
func AddNoise(signal []float64, seed int64, amplitude float64) []float64 {
	noise := DeterministicNoise(seed, amplitude, len(signal))
	out := make([]float64, len(signal))
	for i := range out {
		out[i] = signal[i] + noise[i]
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Scaled returns a copy of signal multiplied by k.
func Scaled(signal []float64, k float64) []float64 {
	out := make([]float64, len(signal))
	for i, v := range signal {
		out[i] = v * k
	}
	return out
}
