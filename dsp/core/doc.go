// Package core holds small numeric helpers shared by the spectral packages.
package core
