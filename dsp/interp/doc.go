// Package interp provides interpolation primitives for sampled spectra.
//
// Available methods:
//
//   - [Linear2]:   2-point linear interpolation at a fraction
//   - [LinearAt]:  linear interpolation on a monotonic, non-uniform axis
//   - [Resample]:  [LinearAt] evaluated at every point of a query axis
//   - [Between]:   linear interpolation between two (x, y) points
//
// Queries outside the sampled axis return NaN rather than extrapolating, so
// missing coverage stays visible downstream.
package interp
