package frame

import (
	"fmt"

	"github.com/dyluth/mandelmovie/pkg/mandel"
)

// Default frame geometry.
const (
	DefaultWidth  = 600
	DefaultHeight = 600

	// MaxThreads caps the goroutines rendering a single frame.
	MaxThreads = 20
)

// Settings fixes everything about a frame except its index and scale.
// Settings is a plain value; every worker unit holds its own copy.
type Settings struct {
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	MaxIterations int     `json:"max_iterations"`
	CenterX       float64 `json:"center_x"`
	CenterY       float64 `json:"center_y"`
	Threads       int     `json:"threads"`
	OutputDir     string  `json:"output_dir"`
	// Quality is the JPEG quality; 0 selects the encoder's default.
	Quality int `json:"quality"`
}

// DefaultSettings returns the 600×600, 500-iteration frame centred on (-1, 0)
// rendered by four goroutines into the working directory.
func DefaultSettings() Settings {
	return Settings{
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		MaxIterations: mandel.DefaultMaxIterations,
		CenterX:       mandel.DefaultCenterX,
		CenterY:       mandel.DefaultCenterY,
		Threads:       4,
		OutputDir:     ".",
	}
}

// Validate checks the settings a Scheduler relies on.
func (s Settings) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("frame size must be positive, got %dx%d", s.Width, s.Height)
	}
	if s.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be positive, got %d", s.MaxIterations)
	}
	if s.Threads < 1 || s.Threads > MaxThreads {
		return fmt.Errorf("threads must be between 1 and %d, got %d", MaxThreads, s.Threads)
	}
	if s.Quality < 0 || s.Quality > 100 {
		return fmt.Errorf("quality must be between 1 and 100, or 0 for the default, got %d", s.Quality)
	}
	return nil
}
