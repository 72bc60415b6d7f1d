package nmath

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Regression holds the ordinary least-squares statistics for y against x.
type Regression struct {
	Slope     float64
	Intercept float64
	R         float64 // Pearson correlation coefficient
	P         float64 // two-sided p-value for a slope-is-zero null
	StdErr    float64 // standard error of the slope estimate
}

// Linregress fits y = slope*x + intercept by ordinary least squares.
func Linregress(x, y []float64) (Regression, error) {
	if len(x) == 0 || len(y) == 0 {
		return Regression{}, ErrEmptyInput
	}
	if len(x) != len(y) {
		return Regression{}, ErrDimensionMismatch
	}
	if stat.Variance(x, nil) == 0 {
		return Regression{}, ErrDegenerateInput
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)
	r := stat.Correlation(x, y, nil)

	reg := Regression{
		Slope:     slope,
		Intercept: intercept,
		R:         r,
		P:         1,
	}

	n := len(x)
	if n <= 2 {
		return reg, nil
	}
	df := float64(n - 2)

	mx := stat.Mean(x, nil)
	var sxx, ssr float64
	for i := range x {
		dx := x[i] - mx
		sxx += dx * dx
		res := y[i] - (intercept + slope*x[i])
		ssr += res * res
	}
	reg.StdErr = math.Sqrt(ssr / df / sxx)

	// t statistic for the slope; a perfect fit pins the p-value at zero.
	if 1-r*r <= 0 {
		reg.P = 0
		return reg, nil
	}
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	reg.P = 2 * dist.Survival(math.Abs(t))
	return reg, nil
}
