package model

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/prfit/internal/stimulus"
)

func impulseStimulus(t *testing.T, size, frames, spike int) *stimulus.Stimulus {
	t.Helper()
	fs := make([]*mat.Dense, frames)
	for k := range fs {
		f := mat.NewDense(size, size, nil)
		if k == spike {
			for i := 0; i < size; i++ {
				for j := 0; j < size; j++ {
					f.Set(i, j, 1)
				}
			}
		}
		fs[k] = f
	}
	s, err := stimulus.New(fs, 38, 25, 1)
	if err != nil {
		t.Fatalf("stimulus failed: %v", err)
	}
	return s
}

func TestPopulationPredictDeterminism(t *testing.T) {
	m, err := NewPopulation(impulseStimulus(t, 20, 60, 10), 1)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	params := []float64{1, -1, 2, 0.5}
	a, err := m.Predict(params)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	b, err := m.Predict(params)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}

	if len(a) != m.Len() {
		t.Fatalf("expected %d samples, got %d", m.Len(), len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d: repeated predict differs: %g vs %g", i, a[i], b[i])
		}
	}
}

func TestPopulationPredictValidation(t *testing.T) {
	m, err := NewPopulation(impulseStimulus(t, 20, 60, 10), 1)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	if _, err := m.Predict([]float64{0, 0, 1}); !errors.Is(err, ErrParameterCount) {
		t.Errorf("expected ErrParameterCount, got %v", err)
	}

	ext := 2 * m.Bounds()[0].Max
	tests := []struct {
		name   string
		params []float64
	}{
		{"x off field", []float64{ext, 0, 1, 0}},
		{"y off field", []float64{0, -ext, 1, 0}},
		{"sigma below pixel", []float64{0, 0, 1e-6, 0}},
		{"delay too large", []float64{0, 0, 1, 5}},
		{"nan center", []float64{math.NaN(), 0, 1, 0}},
	}
	for _, tt := range tests {
		if _, err := m.Predict(tt.params); !errors.Is(err, ErrParameterBounds) {
			t.Errorf("%s: expected ErrParameterBounds, got %v", tt.name, err)
		}
	}
}

func TestPopulationImpulseResponse(t *testing.T) {
	spike := 10
	m, err := NewPopulation(impulseStimulus(t, 20, 60, spike), 1)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	pred, err := m.Predict([]float64{0, 0, 2, 0})
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}

	for i := 0; i < spike; i++ {
		if math.Abs(pred[i]) > 1e-9 {
			t.Fatalf("expected silence before the impulse, got %g at %d", pred[i], i)
		}
	}

	peakAt, peak := 0, math.Inf(-1)
	for i, v := range pred {
		if v > peak {
			peak, peakAt = v, i
		}
	}
	if peak <= 0 {
		t.Fatal("expected positive response peak")
	}
	// hemodynamic peak lags the stimulus by roughly the gamma peak time
	if peakAt < spike+2 || peakAt > spike+8 {
		t.Errorf("expected peak a few seconds after the impulse, got index %d", peakAt)
	}
}

func TestPopulationResampling(t *testing.T) {
	m, err := NewPopulation(impulseStimulus(t, 20, 60, 10), 0.5)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	if m.Len() != 30 {
		t.Fatalf("expected 30 samples at half rate, got %d", m.Len())
	}
	pred, err := m.Predict([]float64{0, 0, 2, 0})
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if len(pred) != 30 {
		t.Errorf("expected 30 samples, got %d", len(pred))
	}
}

func TestPopulationSetBounds(t *testing.T) {
	m, err := NewPopulation(impulseStimulus(t, 20, 60, 10), 1)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	if err := m.SetBounds([]Bound{{-1, 1}}); !errors.Is(err, ErrParameterCount) {
		t.Errorf("expected ErrParameterCount, got %v", err)
	}
	narrow := []Bound{{-1, 1}, {-1, 1}, {0.5, 3}, {-1, 1}}
	if err := m.SetBounds(narrow); err != nil {
		t.Fatalf("set bounds failed: %v", err)
	}
	if _, err := m.Predict([]float64{2, 0, 1, 0}); !errors.Is(err, ErrParameterBounds) {
		t.Errorf("expected narrowed bounds to reject x=2, got %v", err)
	}
}

func TestSpatioTemporalPredict(t *testing.T) {
	spike := 10
	m, err := NewSpatioTemporal(impulseStimulus(t, 20, 60, spike), 1)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	if m.NumParams() != 4 {
		t.Fatalf("expected 4 parameters, got %d", m.NumParams())
	}

	params := []float64{0, 0, 2, 2}
	a, err := m.Predict(params)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	b, err := m.Predict(params)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d: repeated predict differs", i)
		}
	}

	for i := 0; i < spike; i++ {
		if math.Abs(a[i]) > 1e-9 {
			t.Fatalf("expected silence before the impulse, got %g at %d", a[i], i)
		}
	}

	if _, err := m.Predict([]float64{0, 0, 2, 0}); !errors.Is(err, ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds for zero temporal sigma, got %v", err)
	}
}
