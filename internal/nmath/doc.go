// Package nmath provides the numerical primitives shared by the receptive
// field models and the fit engine:
//
//   - [Convolve]: linear convolution via frequency-domain multiplication
//   - [TrapezoidUniform], [SimpsonUniform]: composite numerical integration
//   - [Linregress]: ordinary least-squares regression with fit statistics
//   - [Zscore], [PercentChange]: timeseries normalization
//   - [ResampleLinear]: piecewise-linear resampling between sampling grids
//
// All functions are pure and validate their inputs eagerly; malformed input
// yields a sentinel error rather than a silent NaN.
package nmath
