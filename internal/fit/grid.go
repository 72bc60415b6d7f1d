package fit

import (
	"context"
	"math"

	"github.com/san-kum/prfit/internal/model"
)

// GridSearch seeds the optimizer by sparsely sampling the parameter space:
// Points samples per axis, with the sampled region halved around the
// incumbent best after each round (clamped to the original bounds).
type GridSearch struct {
	Points int
	Rounds int
}

// Search returns the best parameter vector found and its objective value.
// A nil vector means the objective was infinite everywhere on the grid.
func (g *GridSearch) Search(ctx context.Context, objective func([]float64) float64, bounds []model.Bound) ([]float64, float64, error) {
	best := math.Inf(1)
	var bestParams []float64

	cur := make([]model.Bound, len(bounds))
	copy(cur, bounds)

	for round := 0; round < g.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return bestParams, best, err
		}

		g.searchRecursive(0, make([]float64, len(bounds)), cur, objective, &best, &bestParams)
		if bestParams == nil {
			break
		}

		for i := range cur {
			quarter := (cur[i].Max - cur[i].Min) / 4
			cur[i] = model.Bound{
				Min: math.Max(bounds[i].Min, bestParams[i]-quarter),
				Max: math.Min(bounds[i].Max, bestParams[i]+quarter),
			}
		}
	}

	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	depth int,
	current []float64,
	bounds []model.Bound,
	objective func([]float64) float64,
	best *float64,
	bestParams *[]float64,
) {
	if depth == len(bounds) {
		val := objective(current)
		if val < *best {
			*best = val
			*bestParams = append([]float64(nil), current...)
		}
		return
	}

	b := bounds[depth]
	for k := 0; k < g.Points; k++ {
		v := b.Min
		if g.Points > 1 {
			v = b.Min + (b.Max-b.Min)*float64(k)/float64(g.Points-1)
		}
		current[depth] = v
		g.searchRecursive(depth+1, current, bounds, objective, best, bestParams)
	}
}
