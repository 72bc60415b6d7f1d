package nmath

import "gonum.org/v1/gonum/stat"

// Zscore returns xs centered to zero mean and scaled to unit standard
// deviation (population convention). A constant series maps to all zeros.
func Zscore(xs []float64) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}
	mean := stat.Mean(xs, nil)
	sd := stat.PopStdDev(xs, nil)
	if sd == 0 {
		return out
	}
	for i, v := range xs {
		out[i] = (v - mean) / sd
	}
	return out
}

// PercentChange returns xs expressed as percent signal change around its mean.
// A zero-mean series maps to all zeros.
func PercentChange(xs []float64) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}
	mean := stat.Mean(xs, nil)
	if mean == 0 {
		return out
	}
	for i, v := range xs {
		out[i] = (v - mean) / mean * 100
	}
	return out
}
