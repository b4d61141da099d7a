package catalog

import "errors"

// Errors returned by catalog construction.
var (
	ErrMalformedFilename   = errors.New("catalog: filename does not match naming convention")
	ErrDuplicateFilename   = errors.New("catalog: duplicate filename")
	ErrUnmatchedBackground = errors.New("catalog: no matching background")
	ErrUnmatchedReference  = errors.New("catalog: no matching reference")
)
