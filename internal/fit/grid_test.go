package fit

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/prfit/internal/model"
)

func TestGridSearchQuadratic(t *testing.T) {
	objective := func(p []float64) float64 {
		return (p[0]-1.2)*(p[0]-1.2) + (p[1]+0.7)*(p[1]+0.7)
	}
	bounds := []model.Bound{{Min: -5, Max: 5}, {Min: -5, Max: 5}}

	g := &GridSearch{Points: 5, Rounds: 4}
	best, val, err := g.Search(context.Background(), objective, bounds)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if best == nil {
		t.Fatal("expected a best point")
	}
	if math.Abs(best[0]-1.2) > 0.3 || math.Abs(best[1]+0.7) > 0.3 {
		t.Errorf("expected minimum near (1.2, -0.7), got (%g, %g)", best[0], best[1])
	}
	if val > 0.2 {
		t.Errorf("expected small objective at minimum, got %g", val)
	}
}

func TestGridSearchRefinesAcrossRounds(t *testing.T) {
	objective := func(p []float64) float64 {
		return math.Abs(p[0] - 0.33)
	}
	bounds := []model.Bound{{Min: -1, Max: 1}}

	coarse, _, err := (&GridSearch{Points: 5, Rounds: 1}).Search(context.Background(), objective, bounds)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	fine, _, err := (&GridSearch{Points: 5, Rounds: 4}).Search(context.Background(), objective, bounds)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if math.Abs(fine[0]-0.33) >= math.Abs(coarse[0]-0.33) {
		t.Errorf("expected refinement rounds to improve: coarse %g, fine %g", coarse[0], fine[0])
	}
}

func TestGridSearchAllRejected(t *testing.T) {
	objective := func(p []float64) float64 { return math.Inf(1) }
	bounds := []model.Bound{{Min: 0, Max: 1}}

	best, val, err := (&GridSearch{Points: 3, Rounds: 2}).Search(context.Background(), objective, bounds)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if best != nil {
		t.Errorf("expected nil best for infinite objective, got %v", best)
	}
	if !math.IsInf(val, 1) {
		t.Errorf("expected +Inf objective, got %g", val)
	}
}

func TestGridSearchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	objective := func(p []float64) float64 { return p[0] * p[0] }
	_, _, err := (&GridSearch{Points: 3, Rounds: 2}).Search(ctx, objective, []model.Bound{{Min: -1, Max: 1}})
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
