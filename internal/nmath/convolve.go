package nmath

import "github.com/mjibson/go-dsp/fft"

// Convolve computes the full linear convolution of signal and kernel in the
// frequency domain. Both inputs are zero-padded to the next power of two at or
// above len(signal)+len(kernel)-1 so the circular convolution of the padded
// spectra equals the linear convolution of the originals. The result has
// length len(signal)+len(kernel)-1 and matches direct time-domain convolution
// within floating-point tolerance.
func Convolve(signal, kernel []float64) ([]float64, error) {
	if len(signal) == 0 || len(kernel) == 0 {
		return nil, ErrEmptyInput
	}

	outLen := len(signal) + len(kernel) - 1
	n := nextPow2(outLen)

	a := make([]float64, n)
	b := make([]float64, n)
	copy(a, signal)
	copy(b, kernel)

	fa := fft.FFTReal(a)
	fb := fft.FFTReal(b)

	prod := make([]complex128, n)
	for i := range prod {
		prod[i] = fa[i] * fb[i]
	}

	inv := fft.IFFT(prod)

	out := make([]float64, outLen)
	for i := range out {
		out[i] = real(inv[i])
	}
	return out, nil
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
