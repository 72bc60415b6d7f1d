package rf

import "math"

// hrfSupport is the impulse-response support in seconds (Glover, 1999).
const hrfSupport = 33.0

// DoubleGammaHRF returns the double-gamma hemodynamic response function
// sampled at interval dt. delay shifts both the response peak and the
// undershoot; the remaining shape constants follow Glover (1999). delay must
// stay above -4 so both gamma shape parameters remain positive.
func DoubleGammaHRF(delay, dt float64) []float64 {
	alpha1 := 5.0 + delay
	alpha2 := 15.0 + delay
	const (
		beta1 = 1.0
		beta2 = 1.0
		c     = 0.2
	)

	n := int(hrfSupport / dt)
	if n < 1 {
		n = 1
	}
	hrf := make([]float64, n)
	for i := range hrf {
		t := float64(i) * dt
		peak := math.Pow(t, alpha1-1) * math.Pow(beta1, alpha1) * math.Exp(-beta1*t) / math.Gamma(alpha1)
		under := math.Pow(t, alpha2-1) * math.Pow(beta2, alpha2) * math.Exp(-beta2*t) / math.Gamma(alpha2)
		hrf[i] = peak - c*under
	}
	return hrf
}

// TemporalGaussian returns a causal Gaussian temporal kernel with dispersion
// sigma seconds, sampled at interval dt, centered at 3*sigma with 6*sigma
// support, and normalized to unit sum so temporal smoothing preserves the
// response mean.
func TemporalGaussian(sigma, dt float64) ([]float64, error) {
	if sigma <= 0 {
		return nil, ErrInvalidParameter
	}

	n := int(6 * sigma / dt)
	if n < 1 {
		n = 1
	}
	center := 3 * sigma

	kernel := make([]float64, n)
	sum := 0.0
	for i := range kernel {
		t := float64(i) * dt
		kernel[i] = math.Exp(-(t - center) * (t - center) / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel, nil
}
