// Package robust provides outlier-resistant statistics for spectral traces.
//
// Median and median absolute deviation (MAD) drive the sliding-window spike
// detector in sfg/cosmic. [Summarize] reports single-pass statistics over the
// finite samples of a trace and is used for run summaries.
//
// NaN samples are ignored by every function in this package; they mark
// points that were removed or could not be computed upstream.
package robust
