package model

import (
	"github.com/san-kum/prfit/internal/nmath"
	"github.com/san-kum/prfit/internal/rf"
	"github.com/san-kum/prfit/internal/stimulus"
)

// SpatioTemporal is the receptive field variant with independent spatial and
// temporal dispersion. Parameters are (x, y, sigma, sigmaT): field center and
// spatial dispersion in degrees, temporal dispersion in seconds. The
// hemodynamic stage uses a fixed zero delay; temporal dynamics are carried by
// the Gaussian temporal kernel instead.
type SpatioTemporal struct {
	stim       *stimulus.Stimulus
	sampleRate float64
	n          int
	bounds     []Bound
}

func NewSpatioTemporal(stim *stimulus.Stimulus, sampleRate float64) (*SpatioTemporal, error) {
	n, err := responseLength(stim, sampleRate)
	if err != nil {
		return nil, err
	}
	ext := stim.FieldExtent()
	dt := 1 / stim.FrameRate()
	return &SpatioTemporal{
		stim:       stim,
		sampleRate: sampleRate,
		n:          n,
		bounds: []Bound{
			{-ext, ext},
			{-ext, ext},
			{1 / stim.PixelsPerDegree(), 2 * ext},
			{dt, 8},
		},
	}, nil
}

func (m *SpatioTemporal) NumParams() int  { return 4 }
func (m *SpatioTemporal) Len() int        { return m.n }
func (m *SpatioTemporal) Bounds() []Bound { return cloneBounds(m.bounds) }

func (m *SpatioTemporal) SetBounds(b []Bound) error {
	if len(b) != m.NumParams() {
		return ErrParameterCount
	}
	m.bounds = cloneBounds(b)
	return nil
}

func (m *SpatioTemporal) Predict(params []float64) ([]float64, error) {
	if err := checkParams(params, m.bounds); err != nil {
		return nil, err
	}

	degX, degY := m.stim.Coordinates()
	field, err := rf.Gaussian2D(params[0], params[1], params[2], degX, degY)
	if err != nil {
		return nil, err
	}

	dt := 1 / m.stim.FrameRate()
	kernel, err := rf.TemporalGaussian(params[3], dt)
	if err != nil {
		return nil, err
	}
	ts, err := rf.STRFTimeseries(field, kernel, m.stim)
	if err != nil {
		return nil, err
	}

	conv, err := nmath.Convolve(ts, rf.DoubleGammaHRF(0, dt))
	if err != nil {
		return nil, err
	}
	return finishPrediction(conv[:len(ts)], m.n)
}
