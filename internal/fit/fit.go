package fit

import (
	"context"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/san-kum/prfit/internal/model"
	"github.com/san-kum/prfit/internal/nmath"
)

type state int

const (
	unsolved state = iota
	solving
	solved
)

// Options control the two-stage search: a coarse recursive grid seed followed
// by Nelder-Mead refinement.
type Options struct {
	GridPoints    int     // grid samples per parameter axis
	GridRounds    int     // grid refinement rounds (bounds halved each round)
	Tolerance     float64 // absolute objective convergence tolerance
	MaxIterations int     // Nelder-Mead major iteration budget
}

func DefaultOptions() Options {
	return Options{
		GridPoints:    5,
		GridRounds:    3,
		Tolerance:     1e-8,
		MaxIterations: 500,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.GridPoints <= 0 {
		o.GridPoints = def.GridPoints
	}
	if o.GridRounds <= 0 {
		o.GridRounds = def.GridRounds
	}
	if o.Tolerance <= 0 {
		o.Tolerance = def.Tolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = def.MaxIterations
	}
	return o
}

// Estimate is the outcome of one solve: best-fit parameters with the squared
// error against the normalized observed response.
type Estimate struct {
	Params      []float64
	SSE         float64
	Converged   bool
	Evaluations int
}

// Fit couples one observed response to a Model and drives the parameter
// search. A Fit solves exactly once; derived statistics are computed on first
// access after solving and cached for the lifetime of the instance. A Fit is
// single-threaded: it must not be shared between goroutines.
type Fit struct {
	model    model.Model
	coarse   model.Model
	observed []float64 // z-scored at construction
	opts     Options

	state state
	est   *Estimate

	prediction []float64
	residual   []float64
	rsquared   *float64
	beta       *nmath.Regression
}

// New builds an unsolved Fit for one unit's observed response. The response is
// z-scored once here; amplitude is recovered post-hoc via BetaRatio.
func New(m model.Model, observed []float64, opts Options) (*Fit, error) {
	if len(observed) == 0 {
		return nil, nmath.ErrEmptyInput
	}
	if len(observed) != m.Len() {
		return nil, nmath.ErrDimensionMismatch
	}
	return &Fit{
		model:    m,
		observed: nmath.Zscore(observed),
		opts:     opts.withDefaults(),
	}, nil
}

// SetCoarseModel installs a reduced-resolution model used only for the grid
// seed stage. It must share the fine model's parameter vector and response
// length.
func (f *Fit) SetCoarseModel(m model.Model) error {
	if m.NumParams() != f.model.NumParams() || m.Len() != f.model.Len() {
		return nmath.ErrDimensionMismatch
	}
	f.coarse = m
	return nil
}

// objective scores a candidate by the sum of squared residuals between the
// z-scored prediction and the observed response. Model rejections and NaN
// predictions map to +Inf so the search simply avoids them.
func (f *Fit) objective(m model.Model, evals *int) func([]float64) float64 {
	return func(params []float64) float64 {
		*evals++
		pred, err := m.Predict(params)
		if err != nil {
			return math.Inf(1)
		}
		z := nmath.Zscore(pred)
		sse := 0.0
		for i := range z {
			d := z[i] - f.observed[i]
			sse += d * d
		}
		if math.IsNaN(sse) {
			return math.Inf(1)
		}
		return sse
	}
}

// Solve runs the search. On success the fit transitions to solved and never
// reverts; ErrConvergence is returned alongside the best estimate found when
// the iteration budget runs out, leaving the fit solved and inspectable.
// Context cancellation between stages leaves the fit unsolved.
func (f *Fit) Solve(ctx context.Context) (*Estimate, error) {
	if f.state != unsolved {
		return nil, ErrAlreadySolved
	}
	f.state = solving

	evals := 0
	seedModel := f.model
	if f.coarse != nil {
		seedModel = f.coarse
	}

	grid := &GridSearch{Points: f.opts.GridPoints, Rounds: f.opts.GridRounds}
	seed, seedSSE, err := grid.Search(ctx, f.objective(seedModel, &evals), f.model.Bounds())
	if err != nil {
		f.state = unsolved
		return nil, err
	}
	if seed == nil || math.IsInf(seedSSE, 1) {
		f.state = unsolved
		return nil, ErrRejected
	}
	if err := ctx.Err(); err != nil {
		f.state = unsolved
		return nil, err
	}

	fineObjective := f.objective(f.model, &evals)
	if f.coarse != nil {
		// The grid scored the seed under the coarse objective; the refinement
		// baseline and the reported SSE must describe the fine model.
		seedSSE = fineObjective(seed)
		if math.IsInf(seedSSE, 1) {
			f.state = unsolved
			return nil, ErrRejected
		}
	}

	problem := optimize.Problem{Func: fineObjective}
	settings := &optimize.Settings{
		MajorIterations: f.opts.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   f.opts.Tolerance,
			Iterations: 50,
		},
	}
	res, optErr := optimize.Minimize(problem, seed, settings, &optimize.NelderMead{})

	est := &Estimate{
		Params:      append([]float64(nil), seed...),
		SSE:         seedSSE,
		Evaluations: evals,
	}
	if res != nil && !math.IsNaN(res.F) && res.F <= seedSSE {
		est.Params = append([]float64(nil), res.X...)
		est.SSE = res.F
	}
	f.est = est
	f.state = solved

	if optErr != nil {
		return est, ErrConvergence
	}
	switch res.Status {
	case optimize.Success, optimize.FunctionConvergence, optimize.MethodConverge, optimize.FunctionThreshold:
		est.Converged = true
		return est, nil
	default:
		return est, ErrConvergence
	}
}

// Best returns the estimate frozen by Solve.
func (f *Fit) Best() (*Estimate, error) {
	if f.state != solved {
		return nil, ErrNotSolved
	}
	return f.est, nil
}

// Observed returns the z-scored observed response the fit was built with.
func (f *Fit) Observed() []float64 { return f.observed }

// Prediction returns the model response at the best-fit parameters, z-scored
// to match the observed series. Computed once and cached.
func (f *Fit) Prediction() ([]float64, error) {
	if f.state != solved {
		return nil, ErrNotSolved
	}
	if f.prediction == nil {
		pred, err := f.model.Predict(f.est.Params)
		if err != nil {
			return nil, err
		}
		f.prediction = nmath.Zscore(pred)
	}
	return f.prediction, nil
}

// Residual returns observed minus prediction. Computed once and cached.
func (f *Fit) Residual() ([]float64, error) {
	if f.state != solved {
		return nil, ErrNotSolved
	}
	if f.residual == nil {
		pred, err := f.Prediction()
		if err != nil {
			return nil, err
		}
		res := make([]float64, len(pred))
		for i := range res {
			res[i] = f.observed[i] - pred[i]
		}
		f.residual = res
	}
	return f.residual, nil
}

// RSquared returns the coefficient of determination of the best-fit
// prediction against the observed response. Computed once and cached.
func (f *Fit) RSquared() (float64, error) {
	if f.state != solved {
		return 0, ErrNotSolved
	}
	if f.rsquared == nil {
		res, err := f.Residual()
		if err != nil {
			return 0, err
		}
		var ssr, sst float64
		for i := range res {
			ssr += res[i] * res[i]
			sst += f.observed[i] * f.observed[i]
		}
		r2 := 0.0
		if sst > 0 {
			r2 = 1 - ssr/sst
		}
		f.rsquared = &r2
	}
	return *f.rsquared, nil
}

// BetaRatio regresses the observed response on the best-fit prediction. The
// slope and intercept calibrate the shape-only prediction to the observed
// amplitude, which is why the nonlinear search itself never carries an
// amplitude parameter. Computed once and cached.
func (f *Fit) BetaRatio() (nmath.Regression, error) {
	if f.state != solved {
		return nmath.Regression{}, ErrNotSolved
	}
	if f.beta == nil {
		pred, err := f.Prediction()
		if err != nil {
			return nmath.Regression{}, err
		}
		reg, err := nmath.Linregress(pred, f.observed)
		if err != nil {
			return nmath.Regression{}, err
		}
		f.beta = &reg
	}
	return *f.beta, nil
}
