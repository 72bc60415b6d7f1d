package nmath

import "errors"

// Validation errors for the numerical primitives.
var (
	// ErrEmptyInput indicates a sequence with too few samples to operate on.
	ErrEmptyInput = errors.New("nmath: empty input sequence")

	// ErrInvalidInput indicates a malformed argument (non-positive spacing, bad length).
	ErrInvalidInput = errors.New("nmath: invalid input")

	// ErrDimensionMismatch indicates paired sequences of unequal length.
	ErrDimensionMismatch = errors.New("nmath: dimension mismatch")

	// ErrDegenerateInput indicates zero-variance regression input.
	ErrDegenerateInput = errors.New("nmath: degenerate input (zero variance)")
)
