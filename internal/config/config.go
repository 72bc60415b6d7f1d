package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSampleRate    = 1.0
	DefaultGridPoints    = 5
	DefaultGridRounds    = 3
	DefaultTolerance     = 1e-8
	DefaultMaxIterations = 500
	DefaultCoarseFactor  = 2
)

type Config struct {
	Model      string         `yaml:"model"` // population | spatiotemporal
	SampleRate float64        `yaml:"sample_rate"`
	Workers    int            `yaml:"workers"`
	Stimulus   StimulusConfig `yaml:"stimulus"`
	Search     SearchConfig   `yaml:"search"`
}

type StimulusConfig struct {
	PixelsAcross    int       `yaml:"pixels_across"`
	PixelsDown      int       `yaml:"pixels_down"`
	ViewingDistance float64   `yaml:"viewing_distance"`
	ScreenWidth     float64   `yaml:"screen_width"`
	FrameRate       float64   `yaml:"frame_rate"`
	Thetas          []float64 `yaml:"thetas"`
	BarSteps        int       `yaml:"bar_steps"`
	BlankSteps      int       `yaml:"blank_steps"`
	Eccentricity    float64   `yaml:"eccentricity"`
	BarWidth        float64   `yaml:"bar_width"`
	CoarseFactor    int       `yaml:"coarse_factor"`
}

type SearchConfig struct {
	GridPoints    int     `yaml:"grid_points"`
	GridRounds    int     `yaml:"grid_rounds"`
	Tolerance     float64 `yaml:"tolerance"`
	MaxIterations int     `yaml:"max_iterations"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "population",
		SampleRate: DefaultSampleRate,
		Stimulus: StimulusConfig{
			PixelsAcross:    40,
			PixelsDown:      40,
			ViewingDistance: 38,
			ScreenWidth:     25,
			FrameRate:       1,
			Thetas:          []float64{-1, 0, 45, 90, 135, -1, 180, 225, 270, 315, -1},
			BarSteps:        20,
			BlankSteps:      10,
			Eccentricity:    10,
			BarWidth:        3,
			CoarseFactor:    DefaultCoarseFactor,
		},
		Search: SearchConfig{
			GridPoints:    DefaultGridPoints,
			GridRounds:    DefaultGridRounds,
			Tolerance:     DefaultTolerance,
			MaxIterations: DefaultMaxIterations,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch c.Model {
	case "population", "spatiotemporal":
	default:
		return fmt.Errorf("config: unknown model %q", c.Model)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("config: sample rate must be positive, got %f", c.SampleRate)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must be non-negative, got %d", c.Workers)
	}
	if c.Stimulus.CoarseFactor < 0 {
		return fmt.Errorf("config: coarse factor must be non-negative, got %d", c.Stimulus.CoarseFactor)
	}
	return nil
}
