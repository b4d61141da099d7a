package catalog

import (
	"fmt"
	"strconv"
)

// Role is the part a measurement file plays in processing.
type Role int

const (
	RoleSample Role = iota
	RoleReference
	RoleBackground
	RoleCalibration
)

// Roles lists every role in processing order.
var Roles = []Role{RoleSample, RoleReference, RoleCalibration, RoleBackground}

// String returns the short role name used in logs and exports.
func (r Role) String() string {
	switch r {
	case RoleSample:
		return "sample"
	case RoleReference:
		return "ref"
	case RoleBackground:
		return "bg"
	case RoleCalibration:
		return "calibration"
	default:
		return "Role(" + strconv.Itoa(int(r)) + ")"
	}
}

// Entry is one physical measurement file. Its fields are derived from the
// filename once and never change.
type Entry struct {
	Filename     string
	Role         Role
	Name         string // sample identity, or the reference/calibration tag
	Polarization string // e.g. "ssp"
	Exposure     string // acquisition batch, e.g. "600s"
	Index        string // replicate id, digits
}

// IsSignal reports whether e is processed against a background.
func (e *Entry) IsSignal() bool {
	return e.Role != RoleBackground
}

// Label returns "name pol index", the legend label used for samples.
func (e *Entry) Label() string {
	return fmt.Sprintf("%s %s %s", e.Name, e.Polarization, e.Index)
}

// compareIndex orders replicate indices numerically, falling back to
// lexicographic order when either index is not a number.
func compareIndex(a, b string) int {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil && ai != bi {
		if ai < bi {
			return -1
		}
		return 1
	}

	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
