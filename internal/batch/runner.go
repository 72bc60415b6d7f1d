package batch

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/san-kum/prfit/internal/fit"
	"github.com/san-kum/prfit/internal/model"
	"github.com/san-kum/prfit/internal/nmath"
)

// Result is the outcome of fitting one unit.
type Result struct {
	Unit      int
	Estimate  *fit.Estimate
	RSquared  float64
	Beta      nmath.Regression
	Predicted []float64
	Observed  []float64
	Err       error
}

// Progress is emitted after each unit completes.
type Progress struct {
	Unit     int
	Done     int
	Total    int
	RSquared float64
	Err      error
}

// Runner fits many units against one shared read-only Model, one Fit per
// unit, spread across a worker pool. Per-unit failures (including
// non-converged fits) are captured in the unit's Result without aborting the
// batch.
type Runner struct {
	model      model.Model
	coarse     model.Model
	opts       fit.Options
	workers    int
	onProgress func(Progress)
}

func New(m model.Model, opts fit.Options) *Runner {
	return &Runner{
		model:   m,
		opts:    opts,
		workers: runtime.GOMAXPROCS(0),
	}
}

// SetCoarseModel installs a reduced-resolution model for every fit's grid
// seed stage.
func (r *Runner) SetCoarseModel(m model.Model) { r.coarse = m }

func (r *Runner) SetWorkers(n int) {
	if n > 0 {
		r.workers = n
	}
}

// OnProgress registers a callback invoked as units complete. The callback may
// be called from multiple workers, but never concurrently.
func (r *Runner) OnProgress(fn func(Progress)) { r.onProgress = fn }

// Run fits every response and returns results indexed by unit. It returns the
// context error if canceled mid-batch; results for completed units are still
// populated.
func (r *Runner) Run(ctx context.Context, responses [][]float64) ([]Result, error) {
	results := make([]Result, len(responses))

	jobs := make(chan int)
	var wg sync.WaitGroup
	var mu sync.Mutex
	done := 0

	workers := r.workers
	if workers > len(responses) {
		workers = len(responses)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for unit := range jobs {
				results[unit] = r.fitUnit(ctx, unit, responses[unit])

				mu.Lock()
				done++
				if r.onProgress != nil {
					r.onProgress(Progress{
						Unit:     unit,
						Done:     done,
						Total:    len(responses),
						RSquared: results[unit].RSquared,
						Err:      results[unit].Err,
					})
				}
				mu.Unlock()
			}
		}()
	}

	for unit := range responses {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return results, ctx.Err()
		case jobs <- unit:
		}
	}
	close(jobs)
	wg.Wait()

	return results, ctx.Err()
}

func (r *Runner) fitUnit(ctx context.Context, unit int, observed []float64) Result {
	res := Result{Unit: unit, Observed: observed}

	f, err := fit.New(r.model, observed, r.opts)
	if err != nil {
		res.Err = err
		return res
	}
	if r.coarse != nil {
		if err := f.SetCoarseModel(r.coarse); err != nil {
			res.Err = err
			return res
		}
	}

	est, err := f.Solve(ctx)
	if err != nil && !errors.Is(err, fit.ErrConvergence) {
		res.Err = err
		return res
	}
	res.Estimate = est
	res.Err = err // nil or non-fatal ErrConvergence

	if res.RSquared, err = f.RSquared(); err != nil {
		res.Err = err
		return res
	}
	if res.Beta, err = f.BetaRatio(); err != nil {
		res.Err = err
		return res
	}
	if res.Predicted, err = f.Prediction(); err != nil {
		res.Err = err
	}
	return res
}
