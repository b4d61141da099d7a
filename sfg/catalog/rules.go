package catalog

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Naming-convention tags.
const (
	ReferenceTag   = "zqz"
	CalibrationTag = "cal"
	Extension      = ".csv"
)

// Rule maps filenames matching Pattern to Role. Pattern must define the
// named groups "name", "pol", "exposure" and "index".
type Rule struct {
	Role    Role
	Pattern *regexp.Regexp
}

const (
	fieldName     = `(?P<name>[A-Za-z0-9-]+)`
	fieldPol      = `(?P<pol>[sSpP]{3})`
	fieldExposure = `(?P<exposure>\d+(?:\.\d+)?s)`
	fieldIndex    = `(?P<index>\d+)`
)

func stemPattern(name, suffix string) *regexp.Regexp {
	return regexp.MustCompile(`^` + name + `_` + fieldPol + `_` + fieldExposure + `_` + fieldIndex + suffix + `$`)
}

var defaultRules = []Rule{
	{Role: RoleBackground, Pattern: stemPattern(fieldName, `_(?:bg|bkg)`)},
	{Role: RoleReference, Pattern: stemPattern(`(?P<name>`+ReferenceTag+`)`, ``)},
	{Role: RoleCalibration, Pattern: stemPattern(`(?P<name>`+CalibrationTag+`)`, ``)},
	{Role: RoleSample, Pattern: stemPattern(fieldName, ``)},
}

// DefaultRules returns the naming-convention rule table. Rules are tried in
// order and the first match wins.
func DefaultRules() []Rule {
	out := make([]Rule, len(defaultRules))
	copy(out, defaultRules)
	return out
}

// Parse classifies a single filename against rules.
func Parse(rules []Rule, filename string) (Entry, error) {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	if !strings.EqualFold(ext, Extension) {
		return Entry{}, fmt.Errorf("%w: %q: extension must be %s", ErrMalformedFilename, filename, Extension)
	}
	stem := strings.TrimSuffix(base, ext)

	for _, rule := range rules {
		m := rule.Pattern.FindStringSubmatch(stem)
		if m == nil {
			continue
		}

		e := Entry{Filename: base, Role: rule.Role}
		for i, group := range rule.Pattern.SubexpNames() {
			switch group {
			case "name":
				e.Name = m[i]
			case "pol":
				e.Polarization = strings.ToLower(m[i])
			case "exposure":
				e.Exposure = m[i]
			case "index":
				e.Index = m[i]
			}
		}
		return e, nil
	}

	return Entry{}, fmt.Errorf("%w: %q", ErrMalformedFilename, filename)
}
