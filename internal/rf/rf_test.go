package rf_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/prfit/internal/nmath"
	"github.com/san-kum/prfit/internal/rf"
	"github.com/san-kum/prfit/internal/stimulus"
)

// degreeGrids builds square coordinate grids spanning ±extent with the given
// spacing in degrees.
func degreeGrids(extent, spacing float64) (*mat.Dense, *mat.Dense) {
	n := int(2*extent/spacing) + 1
	degX := mat.NewDense(n, n, nil)
	degY := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			degX.Set(i, j, -extent+float64(j)*spacing)
			degY.Set(i, j, extent-float64(i)*spacing)
		}
	}
	return degX, degY
}

// gridIntegral integrates a field over uniform grid spacing by composing the
// 1D rules row-wise then column-wise.
func gridIntegral(field *mat.Dense, spacing float64) float64 {
	rows, cols := field.Dims()
	rowInts := make([]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		mat.Row(row, i, field)
		v, err := nmath.SimpsonUniform(row, spacing)
		Expect(err).NotTo(HaveOccurred())
		rowInts[i] = v
	}
	v, err := nmath.SimpsonUniform(rowInts, spacing)
	Expect(err).NotTo(HaveOccurred())
	return v
}

// impulseStimulus builds frames of zeros except a single all-ones frame.
func impulseStimulus(size, frames, spike int) *stimulus.Stimulus {
	fs := make([]*mat.Dense, frames)
	for t := range fs {
		f := mat.NewDense(size, size, nil)
		if t == spike {
			for i := 0; i < size; i++ {
				for j := 0; j < size; j++ {
					f.Set(i, j, 1)
				}
			}
		}
		fs[t] = f
	}
	s, err := stimulus.New(fs, 38, 25, 1)
	Expect(err).NotTo(HaveOccurred())
	return s
}

var _ = Describe("Gaussian2D", func() {
	It("integrates to unit volume for valid sigmas", func() {
		degX, degY := degreeGrids(10, 0.25)
		for _, sigma := range []float64{0.5, 1.0, 2.0} {
			field, err := rf.Gaussian2D(0, 0, sigma, degX, degY)
			Expect(err).NotTo(HaveOccurred())
			Expect(gridIntegral(field, 0.25)).To(BeNumerically("~", 1.0, 1e-3))
		}
	})

	It("peaks at the field center", func() {
		degX, degY := degreeGrids(10, 0.5)
		field, err := rf.Gaussian2D(2, -3, 1.0, degX, degY)
		Expect(err).NotTo(HaveOccurred())

		rows, cols := field.Dims()
		best, bi, bj := math.Inf(-1), 0, 0
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				if field.At(i, j) > best {
					best, bi, bj = field.At(i, j), i, j
				}
			}
		}
		Expect(degX.At(bi, bj)).To(BeNumerically("~", 2.0, 0.5))
		Expect(degY.At(bi, bj)).To(BeNumerically("~", -3.0, 0.5))
	})

	It("rejects non-positive sigma", func() {
		degX, degY := degreeGrids(10, 0.5)
		_, err := rf.Gaussian2D(0, 0, 0, degX, degY)
		Expect(err).To(MatchError(rf.ErrInvalidParameter))
		_, err = rf.Gaussian2D(0, 0, -1, degX, degY)
		Expect(err).To(MatchError(rf.ErrInvalidParameter))
	})

	It("rejects mismatched coordinate grids", func() {
		degX, _ := degreeGrids(10, 0.5)
		_, degY := degreeGrids(10, 0.25)
		_, err := rf.Gaussian2D(0, 0, 1, degX, degY)
		Expect(err).To(MatchError(nmath.ErrDimensionMismatch))
	})
})

var _ = Describe("FieldTimeseries", func() {
	It("responds only where the stimulus does", func() {
		stim := impulseStimulus(20, 100, 50)
		degX, degY := stim.Coordinates()
		field, err := rf.Gaussian2D(0, 0, 2, degX, degY)
		Expect(err).NotTo(HaveOccurred())

		ts, err := rf.FieldTimeseries(field, stim)
		Expect(err).NotTo(HaveOccurred())
		Expect(ts).To(HaveLen(100))

		for t, v := range ts {
			if t == 50 {
				Expect(v).To(BeNumerically(">", 0))
			} else {
				Expect(v).To(BeZero())
			}
		}
	})

	It("rejects a field that does not match the stimulus grid", func() {
		stim := impulseStimulus(20, 10, 5)
		field := mat.NewDense(10, 10, nil)
		_, err := rf.FieldTimeseries(field, stim)
		Expect(err).To(MatchError(nmath.ErrDimensionMismatch))
	})
})

var _ = Describe("STRFTimeseries", func() {
	It("smears the impulse response over the temporal kernel", func() {
		stim := impulseStimulus(20, 100, 50)
		degX, degY := stim.Coordinates()
		field, err := rf.Gaussian2D(0, 0, 2, degX, degY)
		Expect(err).NotTo(HaveOccurred())

		kernel, err := rf.TemporalGaussian(2, 1)
		Expect(err).NotTo(HaveOccurred())

		spatial, err := rf.FieldTimeseries(field, stim)
		Expect(err).NotTo(HaveOccurred())
		ts, err := rf.STRFTimeseries(field, kernel, stim)
		Expect(err).NotTo(HaveOccurred())
		Expect(ts).To(HaveLen(100))

		// nothing before the spike, spread after it
		for t := 0; t < 50; t++ {
			Expect(ts[t]).To(BeNumerically("~", 0, 1e-9))
		}
		nonzero := 0
		var total float64
		for t := 50; t < 100; t++ {
			if ts[t] > 1e-12 {
				nonzero++
			}
			total += ts[t]
		}
		Expect(nonzero).To(BeNumerically(">", 1))

		// a unit-sum kernel preserves the spike mass
		Expect(total).To(BeNumerically("~", spatial[50], 1e-6))
	})
})

var _ = Describe("temporal kernels", func() {
	It("builds the double-gamma HRF with the expected shape", func() {
		hrf := rf.DoubleGammaHRF(0, 1)
		Expect(hrf).To(HaveLen(33))

		peakAt, peak := 0, math.Inf(-1)
		trough := math.Inf(1)
		for i, v := range hrf {
			if v > peak {
				peak, peakAt = v, i
			}
			if v < trough {
				trough = v
			}
		}
		Expect(peak).To(BeNumerically(">", 0))
		Expect(peakAt).To(BeNumerically("~", 4, 2))
		Expect(trough).To(BeNumerically("<", 0))
	})

	It("shifts the HRF peak with delay", func() {
		early := rf.DoubleGammaHRF(-2, 1)
		late := rf.DoubleGammaHRF(2, 1)

		argmax := func(xs []float64) int {
			best, at := math.Inf(-1), 0
			for i, v := range xs {
				if v > best {
					best, at = v, i
				}
			}
			return at
		}
		Expect(argmax(late)).To(BeNumerically(">", argmax(early)))
	})

	It("normalizes the temporal Gaussian to unit sum", func() {
		kernel, err := rf.TemporalGaussian(1.5, 0.5)
		Expect(err).NotTo(HaveOccurred())

		sum := 0.0
		for _, v := range kernel {
			sum += v
		}
		Expect(sum).To(BeNumerically("~", 1.0, 1e-12))
	})

	It("rejects non-positive temporal sigma", func() {
		_, err := rf.TemporalGaussian(0, 1)
		Expect(err).To(MatchError(rf.ErrInvalidParameter))
	})
})
