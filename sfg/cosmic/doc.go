// Package cosmic detects and removes cosmic-ray spikes from spectrometer frames.
//
// A cosmic ray is a narrow positive spike unrelated to the spectral lineshape.
// The [Detector] compares every sample against the median of its neighbours
// in a sliding window; a sample whose excess over that median is larger than
// Threshold robust standard deviations (1.4826 × MAD) is flagged.
//
// Manual ranges flag every sample inside a wavelength interval regardless of
// the automatic outcome. They exist for broad or low-amplitude artifacts the
// detector misses.
//
// Flagged samples are replaced by linear interpolation, along the wavelength
// axis, between the nearest unflagged neighbours of the same frame. The
// original values are returned as [Point] records for diagnostics.
//
// # Usage
//
//	d := cosmic.NewDetector(cosmic.WithWindow(9), cosmic.WithThreshold(6))
//	res := d.Clean(frameNumber, wavelength, intensity, true, manualRanges)
//	plotRemoved(res.Removed)
package cosmic
