package model

import (
	"errors"
	"fmt"
	"math"
)

// Bound is an inclusive search range for a single parameter.
type Bound struct {
	Min float64
	Max float64
}

// Parameter validation errors surfaced by Predict.
var (
	// ErrParameterCount indicates a parameter vector of the wrong arity.
	ErrParameterCount = errors.New("model: wrong parameter count")

	// ErrParameterBounds indicates a parameter outside its valid range.
	ErrParameterBounds = errors.New("model: parameter out of bounds")
)

// Model synthesizes a predicted response timeseries from a candidate
// parameter vector. Predict is pure: it mutates no state and identical
// parameters always yield identical output, so one Model can be shared
// read-only by many concurrent fits.
type Model interface {
	Predict(params []float64) ([]float64, error)
	NumParams() int
	Bounds() []Bound
	Len() int
}

func checkParams(params []float64, bounds []Bound) error {
	if len(params) != len(bounds) {
		return fmt.Errorf("%w: got %d, expected %d", ErrParameterCount, len(params), len(bounds))
	}
	for i, p := range params {
		if math.IsNaN(p) || p < bounds[i].Min || p > bounds[i].Max {
			return fmt.Errorf("%w: parameter %d = %g outside [%g, %g]",
				ErrParameterBounds, i, p, bounds[i].Min, bounds[i].Max)
		}
	}
	return nil
}

func cloneBounds(b []Bound) []Bound {
	out := make([]Bound, len(b))
	copy(out, b)
	return out
}
