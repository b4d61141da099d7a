// Package pipeline runs the SFG cleaning and normalization chain over a
// resolved catalog.
//
// The chain is a sequence of immutable stage sets; each stage is a method on
// the previous stage's output, so stages cannot run out of order or be
// skipped:
//
//	loaded, err := pipeline.Load(cat, loader)
//	cleaned, err := loaded.RemoveCosmicRays(true, overrides)
//	averaged, err := cleaned.AverageFrames()
//	subtracted, err := averaged.SubtractBackground()
//	result, err := subtracted.Normalize(793.27)
//
// Every stage returns a new set and leaves its input untouched, so any stage
// can be replayed or tested on its own. [Runner] chains all stages and logs
// their durations.
//
// # Normalization
//
// Wavelengths are converted to SFG infrared wavenumbers with
//
//	ν = (1/λ − 1/λ_vis) × 10⁷ cm⁻¹
//
// Sample intensity is the ratio of the background-subtracted sample to its
// background-subtracted reference. Points where that ratio is not finite are
// set to NaN and listed in [Spectrum.Flagged]; they never abort the run.
package pipeline
