package model

import (
	"fmt"
	"math"

	"github.com/san-kum/prfit/internal/nmath"
	"github.com/san-kum/prfit/internal/rf"
	"github.com/san-kum/prfit/internal/stimulus"
)

// Population is the spatial-only receptive field variant. Parameters are
// (x, y, sigma, delay): field center and dispersion in degrees of visual
// angle, and the hemodynamic response delay in seconds.
type Population struct {
	stim       *stimulus.Stimulus
	sampleRate float64
	n          int
	bounds     []Bound
}

// NewPopulation builds a model over the given stimulus, predicting responses
// sampled at sampleRate Hz. Default parameter bounds follow the stimulus
// geometry: centers within the field extent, sigma between one pixel and the
// field width, delay within ±4 s.
func NewPopulation(stim *stimulus.Stimulus, sampleRate float64) (*Population, error) {
	n, err := responseLength(stim, sampleRate)
	if err != nil {
		return nil, err
	}
	ext := stim.FieldExtent()
	return &Population{
		stim:       stim,
		sampleRate: sampleRate,
		n:          n,
		bounds: []Bound{
			{-ext, ext},
			{-ext, ext},
			{1 / stim.PixelsPerDegree(), 2 * ext},
			{-4, 4},
		},
	}, nil
}

func (m *Population) NumParams() int  { return 4 }
func (m *Population) Len() int        { return m.n }
func (m *Population) Bounds() []Bound { return cloneBounds(m.bounds) }

// SetBounds replaces the default parameter bounds, e.g. to narrow the search
// from configuration. Must be called before the model is shared across fits.
func (m *Population) SetBounds(b []Bound) error {
	if len(b) != m.NumParams() {
		return ErrParameterCount
	}
	m.bounds = cloneBounds(b)
	return nil
}

func (m *Population) Predict(params []float64) ([]float64, error) {
	if err := checkParams(params, m.bounds); err != nil {
		return nil, err
	}

	degX, degY := m.stim.Coordinates()
	field, err := rf.Gaussian2D(params[0], params[1], params[2], degX, degY)
	if err != nil {
		return nil, err
	}
	ts, err := rf.FieldTimeseries(field, m.stim)
	if err != nil {
		return nil, err
	}

	dt := 1 / m.stim.FrameRate()
	conv, err := nmath.Convolve(ts, rf.DoubleGammaHRF(params[3], dt))
	if err != nil {
		return nil, err
	}
	return finishPrediction(conv[:len(ts)], m.n)
}

func responseLength(stim *stimulus.Stimulus, sampleRate float64) (int, error) {
	if sampleRate <= 0 {
		return 0, fmt.Errorf("model: sample rate must be positive, got %f", sampleRate)
	}
	n := int(math.Round(float64(stim.Frames()) * sampleRate / stim.FrameRate()))
	if n < 2 {
		return 0, fmt.Errorf("model: stimulus too short for %g Hz responses", sampleRate)
	}
	return n, nil
}

// finishPrediction resamples the frame-rate timeseries onto the response
// sampling grid when the rates differ.
func finishPrediction(ts []float64, n int) ([]float64, error) {
	if len(ts) == n {
		return ts, nil
	}
	return nmath.ResampleLinear(ts, n)
}
