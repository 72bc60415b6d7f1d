package stimulus

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Downsample block-averages every frame by the given factor, producing the
// coarse stimulus used to seed the parameter search. Trailing rows and
// columns that do not fill a complete block are dropped. The display
// geometry is carried over, so pixels-per-degree scales with the new grid.
func Downsample(s *Stimulus, factor int) (*Stimulus, error) {
	if factor <= 0 {
		return nil, fmt.Errorf("stimulus: downsample factor must be positive, got %d", factor)
	}
	if factor == 1 {
		return s, nil
	}
	rows, cols := s.Dims()
	newRows := rows / factor
	newCols := cols / factor
	if newRows == 0 || newCols == 0 {
		return nil, fmt.Errorf("stimulus: downsample factor %d exceeds frame size %dx%d", factor, rows, cols)
	}

	norm := float64(factor * factor)
	frames := make([]*mat.Dense, s.Frames())
	for t := range frames {
		src := s.Frame(t)
		dst := mat.NewDense(newRows, newCols, nil)
		for i := 0; i < newRows; i++ {
			for j := 0; j < newCols; j++ {
				sum := 0.0
				for di := 0; di < factor; di++ {
					for dj := 0; dj < factor; dj++ {
						sum += src.At(i*factor+di, j*factor+dj)
					}
				}
				dst.Set(i, j, sum/norm)
			}
		}
		frames[t] = dst
	}

	return New(frames, s.viewingDistance, s.screenWidth, s.frameRate)
}
