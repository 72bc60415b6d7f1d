package rf

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/prfit/internal/nmath"
)

// ErrInvalidParameter indicates a degenerate field parameter (non-positive sigma).
var ErrInvalidParameter = errors.New("rf: invalid parameter")

// Gaussian2D evaluates an isotropic 2D Gaussian centered at (x0, y0) in
// degrees of visual angle over the coordinate grids degX/degY. The field is
// analytically normalized to unit volume, so amplitude scaling is independent
// of grid resolution. Centers outside the grid simply receive the tail of the
// Gaussian; there is no wraparound.
func Gaussian2D(x0, y0, sigma float64, degX, degY *mat.Dense) (*mat.Dense, error) {
	if sigma <= 0 {
		return nil, ErrInvalidParameter
	}
	rows, cols := degX.Dims()
	yr, yc := degY.Dims()
	if rows != yr || cols != yc {
		return nil, nmath.ErrDimensionMismatch
	}

	norm := 1 / (2 * math.Pi * sigma * sigma)
	twoSigSq := 2 * sigma * sigma

	field := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			dx := degX.At(i, j) - x0
			dy := degY.At(i, j) - y0
			field.Set(i, j, norm*math.Exp(-(dx*dx+dy*dy)/twoSigSq))
		}
	}
	return field, nil
}
