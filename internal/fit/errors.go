package fit

import "errors"

// Fit lifecycle and convergence errors.
var (
	// ErrNotSolved indicates a derived attribute was accessed before Solve.
	ErrNotSolved = errors.New("fit: not solved yet")

	// ErrAlreadySolved indicates Solve was called on a solved or solving fit.
	ErrAlreadySolved = errors.New("fit: already solved")

	// ErrConvergence indicates the optimizer exhausted its budget before
	// reaching tolerance. The best point found is retained and inspectable.
	ErrConvergence = errors.New("fit: optimizer exhausted its budget before converging")

	// ErrRejected indicates the model returned an error or infinite cost for
	// every candidate the search produced.
	ErrRejected = errors.New("fit: model rejected every candidate")
)
