// Package config loads processing settings for the sfgproc command.
//
// Settings start from [Default], are overlaid by an optional YAML file and
// then by environment variables prefixed with SFG_ (for example
// SFG_W1_WAVELENGTH or SFG_CLEANING_THRESHOLD), and are validated last.
// Manual cleaning overrides can only be set in the YAML file.
package config
