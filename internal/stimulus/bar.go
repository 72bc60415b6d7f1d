package stimulus

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// BarConfig describes a sweeping-bar stimulus: a bar of fixed width sweeping
// across the field once per orientation, with optional blank periods encoded
// as negative orientations.
type BarConfig struct {
	PixelsAcross    int
	PixelsDown      int
	ViewingDistance float64 // cm
	ScreenWidth     float64 // cm
	FrameRate       float64 // frames per second

	Thetas       []float64 // sweep orientations in degrees; < 0 means blank
	BarSteps     int       // frames per sweep
	BlankSteps   int       // frames per blank period
	Eccentricity float64   // sweep extent from center, degrees
	BarWidth     float64   // bar thickness, degrees
}

// SimulateBar synthesizes a binary sweeping-bar stimulus. For each
// orientation the bar travels from -eccentricity to +eccentricity along the
// orientation axis; pixels are 1 inside the bar and inside the eccentricity
// disc, 0 elsewhere.
func SimulateBar(cfg BarConfig) (*Stimulus, error) {
	if cfg.PixelsAcross <= 0 || cfg.PixelsDown <= 0 {
		return nil, fmt.Errorf("stimulus: pixel dimensions must be positive")
	}
	if len(cfg.Thetas) == 0 {
		return nil, fmt.Errorf("stimulus: no sweep orientations")
	}
	if cfg.BarSteps <= 0 {
		return nil, fmt.Errorf("stimulus: bar steps must be positive, got %d", cfg.BarSteps)
	}
	if cfg.Eccentricity <= 0 || cfg.BarWidth <= 0 {
		return nil, fmt.Errorf("stimulus: eccentricity and bar width must be positive")
	}

	// Geometry probe reused for the coordinate grids.
	probe, err := New([]*mat.Dense{mat.NewDense(cfg.PixelsDown, cfg.PixelsAcross, nil)},
		cfg.ViewingDistance, cfg.ScreenWidth, cfg.FrameRate)
	if err != nil {
		return nil, err
	}
	degX, degY := probe.Coordinates()

	var frames []*mat.Dense
	for _, theta := range cfg.Thetas {
		if theta < 0 {
			for k := 0; k < cfg.BlankSteps; k++ {
				frames = append(frames, mat.NewDense(cfg.PixelsDown, cfg.PixelsAcross, nil))
			}
			continue
		}

		rad := theta * math.Pi / 180
		ux, uy := math.Cos(rad), math.Sin(rad)

		for step := 0; step < cfg.BarSteps; step++ {
			center := -cfg.Eccentricity + 2*cfg.Eccentricity*(float64(step)+0.5)/float64(cfg.BarSteps)

			frame := mat.NewDense(cfg.PixelsDown, cfg.PixelsAcross, nil)
			for i := 0; i < cfg.PixelsDown; i++ {
				for j := 0; j < cfg.PixelsAcross; j++ {
					x := degX.At(i, j)
					y := degY.At(i, j)
					if x*x+y*y > cfg.Eccentricity*cfg.Eccentricity {
						continue
					}
					if math.Abs(x*ux+y*uy-center) <= cfg.BarWidth/2 {
						frame.Set(i, j, 1)
					}
				}
			}
			frames = append(frames, frame)
		}
	}

	return New(frames, cfg.ViewingDistance, cfg.ScreenWidth, cfg.FrameRate)
}
