package cosmic

import "errors"

// ErrInvalidCleaningTarget is returned when a manual override names a file
// or frame that does not exist, or a range that selects no sample.
var ErrInvalidCleaningTarget = errors.New("cosmic: invalid cleaning target")
