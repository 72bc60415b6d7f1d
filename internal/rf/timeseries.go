package rf

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/prfit/internal/nmath"
	"github.com/san-kum/prfit/internal/stimulus"
)

// FieldTimeseries projects every stimulus frame onto the spatial field,
// returning the per-frame inner product: the spatial response before any
// temporal shaping.
func FieldTimeseries(field *mat.Dense, stim *stimulus.Stimulus) ([]float64, error) {
	fr, fc := field.Dims()
	sr, sc := stim.Dims()
	if fr != sr || fc != sc {
		return nil, nmath.ErrDimensionMismatch
	}

	weights := field.RawMatrix().Data
	out := make([]float64, stim.Frames())
	for t := range out {
		out[t] = floats.Dot(weights, stim.Frame(t).RawMatrix().Data)
	}
	return out, nil
}

// STRFTimeseries extends FieldTimeseries with temporal integration: the
// per-frame spatial response is convolved with the temporal impulse-response
// kernel and truncated back to the frame count.
func STRFTimeseries(field *mat.Dense, temporalKernel []float64, stim *stimulus.Stimulus) ([]float64, error) {
	ts, err := FieldTimeseries(field, stim)
	if err != nil {
		return nil, err
	}
	conv, err := nmath.Convolve(ts, temporalKernel)
	if err != nil {
		return nil, err
	}
	return conv[:len(ts)], nil
}
