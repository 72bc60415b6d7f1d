package nmath

import "gonum.org/v1/gonum/interp"

// ResampleLinear resamples xs onto n uniformly spaced points spanning the same
// interval, using piecewise-linear interpolation. The first and last samples
// are preserved exactly.
func ResampleLinear(xs []float64, n int) ([]float64, error) {
	if len(xs) == 0 {
		return nil, ErrEmptyInput
	}
	if n <= 0 {
		return nil, ErrInvalidInput
	}
	out := make([]float64, n)
	if len(xs) == 1 {
		for i := range out {
			out[i] = xs[0]
		}
		return out, nil
	}
	if n == len(xs) {
		copy(out, xs)
		return out, nil
	}

	src := make([]float64, len(xs))
	for i := range src {
		src[i] = float64(i) / float64(len(xs)-1)
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(src, xs); err != nil {
		return nil, err
	}

	if n == 1 {
		out[0] = xs[0]
		return out, nil
	}
	for i := range out {
		out[i] = pl.Predict(float64(i) / float64(n-1))
	}
	return out, nil
}
