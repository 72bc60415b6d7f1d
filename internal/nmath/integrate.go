package nmath

import "gonum.org/v1/gonum/integrate"

// TrapezoidUniform integrates uniformly spaced samples y with spacing dx using
// the composite trapezoid rule.
func TrapezoidUniform(y []float64, dx float64) (float64, error) {
	if len(y) < 2 {
		return 0, ErrEmptyInput
	}
	if dx <= 0 {
		return 0, ErrInvalidInput
	}
	x := make([]float64, len(y))
	for i := range x {
		x[i] = float64(i) * dx
	}
	return integrate.Trapezoidal(x, y), nil
}

// SimpsonUniform integrates uniformly spaced samples y with spacing dx using
// the composite Simpson rule. Simpson's rule needs an even number of
// intervals; when the sample count is even the final interval is handled with
// the trapezoid rule and Simpson's rule covers the remainder.
func SimpsonUniform(y []float64, dx float64) (float64, error) {
	if len(y) < 2 {
		return 0, ErrEmptyInput
	}
	if dx <= 0 {
		return 0, ErrInvalidInput
	}
	n := len(y)
	if n == 2 {
		return dx * (y[0] + y[1]) / 2, nil
	}

	m := n
	if n%2 == 0 {
		m = n - 1
	}

	total := 0.0
	for i := 1; i < m-1; i += 2 {
		total += dx / 3 * (y[i-1] + 4*y[i] + y[i+1])
	}
	if m < n {
		total += dx * (y[n-2] + y[n-1]) / 2
	}
	return total, nil
}
