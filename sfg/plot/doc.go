// Package plot renders raw and processed spectra to PNG files.
//
// Three kinds of figure are produced: a raw overview per role showing every
// frame with removed cosmic-ray points marked by red crosses, an overlay of
// all processed samples cropped to the configured wavenumber and intensity
// window, and one figure per processed sample. Lines are broken wherever a
// value is NaN.
package plot
