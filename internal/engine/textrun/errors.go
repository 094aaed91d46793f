package textrun

import "errors"

// Errors returned by TextRun operations.
var (
	// ErrOffsetOutOfRange indicates an offset or range outside the run.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrNotFound indicates a metadata lookup against an empty run.
	ErrNotFound = errors.New("metadata not found")

	// ErrMissingLeadingEntry indicates entries for a non-empty run that do
	// not start at offset 0.
	ErrMissingLeadingEntry = errors.New("metadata entries must start at offset 0")
)
