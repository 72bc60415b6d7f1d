package stimulus

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// Stimulus is an immutable stack of spatial frames driving the modeled
// response, together with the display geometry needed to express pixel
// positions in degrees of visual angle. It is never mutated after
// construction and is safe to share read-only across many fits.
type Stimulus struct {
	frames []*mat.Dense
	rows   int
	cols   int

	viewingDistance float64 // cm
	screenWidth     float64 // cm
	frameRate       float64 // frames per second

	gridOnce sync.Once
	degX     *mat.Dense
	degY     *mat.Dense
}

func New(frames []*mat.Dense, viewingDistance, screenWidth, frameRate float64) (*Stimulus, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("stimulus: no frames")
	}
	if viewingDistance <= 0 {
		return nil, fmt.Errorf("stimulus: viewing distance must be positive, got %f", viewingDistance)
	}
	if screenWidth <= 0 {
		return nil, fmt.Errorf("stimulus: screen width must be positive, got %f", screenWidth)
	}
	if frameRate <= 0 {
		return nil, fmt.Errorf("stimulus: frame rate must be positive, got %f", frameRate)
	}

	rows, cols := frames[0].Dims()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("stimulus: empty frame")
	}
	for i, f := range frames {
		r, c := f.Dims()
		if r != rows || c != cols {
			return nil, fmt.Errorf("stimulus: frame %d is %dx%d, expected %dx%d", i, r, c, rows, cols)
		}
	}

	return &Stimulus{
		frames:          frames,
		rows:            rows,
		cols:            cols,
		viewingDistance: viewingDistance,
		screenWidth:     screenWidth,
		frameRate:       frameRate,
	}, nil
}

func (s *Stimulus) Frames() int          { return len(s.frames) }
func (s *Stimulus) Frame(t int) *mat.Dense { return s.frames[t] }
func (s *Stimulus) Dims() (rows, cols int) { return s.rows, s.cols }
func (s *Stimulus) FrameRate() float64   { return s.frameRate }

// PixelsPerDegree converts between the pixel grid and degrees of visual angle
// given the display geometry.
func (s *Stimulus) PixelsPerDegree() float64 {
	deg := 2 * math.Atan2(s.screenWidth/2, s.viewingDistance) * 180 / math.Pi
	return float64(s.cols) / deg
}

// FieldExtent is the horizontal half-width of the stimulated field in degrees.
func (s *Stimulus) FieldExtent() float64 {
	return float64(s.cols) / (2 * s.PixelsPerDegree())
}

// Coordinates returns the screen-centered coordinate grids in degrees of
// visual angle, x increasing rightward and y increasing upward. The grids are
// computed on first access and cached for the stimulus lifetime.
func (s *Stimulus) Coordinates() (degX, degY *mat.Dense) {
	s.gridOnce.Do(func() {
		ppd := s.PixelsPerDegree()
		cx := float64(s.cols-1) / 2
		cy := float64(s.rows-1) / 2

		s.degX = mat.NewDense(s.rows, s.cols, nil)
		s.degY = mat.NewDense(s.rows, s.cols, nil)
		for i := 0; i < s.rows; i++ {
			for j := 0; j < s.cols; j++ {
				s.degX.Set(i, j, (float64(j)-cx)/ppd)
				s.degY.Set(i, j, (cy-float64(i))/ppd)
			}
		}
	})
	return s.degX, s.degY
}
