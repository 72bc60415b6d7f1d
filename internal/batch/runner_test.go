package batch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/san-kum/prfit/internal/fit"
	"github.com/san-kum/prfit/internal/model"
	"github.com/san-kum/prfit/internal/stimulus"
)

func testModel(t *testing.T) *model.Population {
	t.Helper()
	s, err := stimulus.SimulateBar(stimulus.BarConfig{
		PixelsAcross:    16,
		PixelsDown:      16,
		ViewingDistance: 38,
		ScreenWidth:     25,
		FrameRate:       1,
		Thetas:          []float64{0, 90},
		BarSteps:        12,
		BlankSteps:      0,
		Eccentricity:    10,
		BarWidth:        4,
	})
	if err != nil {
		t.Fatalf("stimulus failed: %v", err)
	}
	m, err := model.NewPopulation(s, 1)
	if err != nil {
		t.Fatalf("model failed: %v", err)
	}
	return m
}

func TestRunnerFitsAllUnits(t *testing.T) {
	m := testModel(t)

	truths := [][]float64{
		{2, 0, 3, 0},
		{-2, 1, 3, 0.5},
		{0, -2, 4, -0.5},
	}
	responses := make([][]float64, len(truths))
	for i, p := range truths {
		data, err := m.Predict(p)
		if err != nil {
			t.Fatalf("synthesis failed: %v", err)
		}
		responses[i] = data
	}

	r := New(m, fit.Options{GridPoints: 4, GridRounds: 2, MaxIterations: 200})
	r.SetWorkers(2)

	var mu sync.Mutex
	seen := 0
	lastDone := 0
	r.OnProgress(func(p Progress) {
		mu.Lock()
		defer mu.Unlock()
		seen++
		if p.Done <= lastDone {
			t.Errorf("progress done should increase, got %d after %d", p.Done, lastDone)
		}
		lastDone = p.Done
		if p.Total != len(truths) {
			t.Errorf("expected total %d, got %d", len(truths), p.Total)
		}
	})

	results, err := r.Run(context.Background(), responses)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(results) != len(truths) {
		t.Fatalf("expected %d results, got %d", len(truths), len(results))
	}
	if seen != len(truths) {
		t.Errorf("expected %d progress events, got %d", len(truths), seen)
	}

	for i, res := range results {
		if res.Unit != i {
			t.Errorf("result %d: unit mismatch %d", i, res.Unit)
		}
		if res.Err != nil && !errors.Is(res.Err, fit.ErrConvergence) {
			t.Errorf("unit %d: unexpected error %v", i, res.Err)
		}
		if res.Estimate == nil {
			t.Fatalf("unit %d: missing estimate", i)
		}
		if res.RSquared < 0.9 {
			t.Errorf("unit %d: expected r2 > 0.9 on noiseless data, got %g", i, res.RSquared)
		}
		if len(res.Predicted) != m.Len() {
			t.Errorf("unit %d: expected %d predicted samples, got %d", i, m.Len(), len(res.Predicted))
		}
	}
}

func TestRunnerIsolatesUnitErrors(t *testing.T) {
	m := testModel(t)

	good, err := m.Predict([]float64{0, 0, 3, 0})
	if err != nil {
		t.Fatalf("synthesis failed: %v", err)
	}
	responses := [][]float64{good, good[:5], good}

	r := New(m, fit.Options{GridPoints: 3, GridRounds: 2, MaxIterations: 100})
	results, err := r.Run(context.Background(), responses)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if results[1].Err == nil {
		t.Error("expected error for truncated response")
	}
	if results[0].Estimate == nil || results[2].Estimate == nil {
		t.Error("expected healthy units to still be fitted")
	}
}

func TestRunnerCanceled(t *testing.T) {
	m := testModel(t)
	good, err := m.Predict([]float64{0, 0, 3, 0})
	if err != nil {
		t.Fatalf("synthesis failed: %v", err)
	}
	responses := make([][]float64, 16)
	for i := range responses {
		responses[i] = good
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(m, fit.Options{GridPoints: 3, GridRounds: 1, MaxIterations: 50})
	if _, err := r.Run(ctx, responses); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
