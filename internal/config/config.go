package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/dyluth/mandelmovie/internal/frame"
	"github.com/dyluth/mandelmovie/internal/imageout"
	"github.com/dyluth/mandelmovie/pkg/mandel"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for a config file when --config is not given.
const DefaultPath = "mandelmovie.yml"

// Isolation modes for worker units.
const (
	IsolationProcess   = "process"
	IsolationGoroutine = "goroutine"
)

// Built-in defaults. A missing config file behaves like an empty one.
const (
	DefaultFrames    = 50
	DefaultProcesses = 4
	DefaultThreads   = 4
	DefaultBaseScale = 4.0
)

// MovieConfig represents the top-level mandelmovie.yml configuration.
// Numeric settings are pointers so an explicit zero can be told apart from
// an omitted key; Validate fills every omitted key with its default.
type MovieConfig struct {
	Version   string        `yaml:"version"`
	Frames    *int          `yaml:"frames,omitempty"`
	Processes *int          `yaml:"processes,omitempty"`
	Threads   *int          `yaml:"threads,omitempty"`
	BaseScale *float64      `yaml:"base_scale,omitempty"`
	Decay     *float64      `yaml:"decay,omitempty"`
	Isolation string        `yaml:"isolation,omitempty"` // "process" (default) or "goroutine"
	OutputDir string        `yaml:"output_dir,omitempty"`
	Image     *ImageConfig  `yaml:"image,omitempty"`
	Ledger    *LedgerConfig `yaml:"ledger,omitempty"`
}

// ImageConfig specifies the geometry and look of every frame
type ImageConfig struct {
	Width         *int     `yaml:"width,omitempty"`
	Height        *int     `yaml:"height,omitempty"`
	MaxIterations *int     `yaml:"max_iterations,omitempty"`
	CenterX       *float64 `yaml:"center_x,omitempty"`
	CenterY       *float64 `yaml:"center_y,omitempty"`
	Quality       *int     `yaml:"quality,omitempty"` // JPEG quality, 1-100
}

// LedgerConfig points at the optional Redis run ledger
type LedgerConfig struct {
	RedisURL string `yaml:"redis_url,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *MovieConfig {
	c := &MovieConfig{Version: "1.0"}
	if err := c.Validate(); err != nil {
		panic(fmt.Sprintf("default configuration is invalid: %v", err))
	}
	return c
}

// Validate applies defaults to omitted settings and checks every value.
func (c *MovieConfig) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	c.applyDefaults()

	if *c.Frames < 0 {
		return fmt.Errorf("frames must be >= 0, got %d", *c.Frames)
	}
	if *c.Processes < 1 {
		return fmt.Errorf("processes must be greater than zero, got %d", *c.Processes)
	}
	if *c.Threads < 1 || *c.Threads > frame.MaxThreads {
		return fmt.Errorf("threads must be between 1 and %d, got %d", frame.MaxThreads, *c.Threads)
	}
	if !(*c.BaseScale > 0) {
		return fmt.Errorf("base_scale must be positive, got %v", *c.BaseScale)
	}
	if !(*c.Decay > 0 && *c.Decay <= 1) {
		return fmt.Errorf("decay must be in (0, 1], got %v", *c.Decay)
	}
	if c.Isolation != IsolationProcess && c.Isolation != IsolationGoroutine {
		return fmt.Errorf("invalid isolation: %s (must be '%s' or '%s')", c.Isolation, IsolationProcess, IsolationGoroutine)
	}

	img := c.Image
	if *img.Width <= 0 || *img.Height <= 0 {
		return fmt.Errorf("image size must be positive, got %dx%d", *img.Width, *img.Height)
	}
	if *img.MaxIterations <= 0 {
		return fmt.Errorf("image.max_iterations must be positive, got %d", *img.MaxIterations)
	}
	if *img.Quality < 1 || *img.Quality > 100 {
		return fmt.Errorf("image.quality must be between 1 and 100, got %d", *img.Quality)
	}

	if c.Ledger.RedisURL != "" {
		if _, err := redis.ParseURL(c.Ledger.RedisURL); err != nil {
			return fmt.Errorf("invalid ledger.redis_url: %w", err)
		}
	}

	return nil
}

func (c *MovieConfig) applyDefaults() {
	setInt(&c.Frames, DefaultFrames)
	setInt(&c.Processes, DefaultProcesses)
	setInt(&c.Threads, DefaultThreads)
	setFloat(&c.BaseScale, DefaultBaseScale)
	setFloat(&c.Decay, frame.DefaultDecay)
	if c.Isolation == "" {
		c.Isolation = IsolationProcess
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}

	if c.Image == nil {
		c.Image = &ImageConfig{}
	}
	setInt(&c.Image.Width, frame.DefaultWidth)
	setInt(&c.Image.Height, frame.DefaultHeight)
	setInt(&c.Image.MaxIterations, mandel.DefaultMaxIterations)
	setFloat(&c.Image.CenterX, mandel.DefaultCenterX)
	setFloat(&c.Image.CenterY, mandel.DefaultCenterY)
	setInt(&c.Image.Quality, imageout.DefaultQuality)

	if c.Ledger == nil {
		c.Ledger = &LedgerConfig{}
	}
}

func setInt(p **int, v int) {
	if *p == nil {
		*p = &v
	}
}

func setFloat(p **float64, v float64) {
	if *p == nil {
		*p = &v
	}
}

// FrameSettings returns the per-frame settings of a validated config.
func (c *MovieConfig) FrameSettings() frame.Settings {
	return frame.Settings{
		Width:         *c.Image.Width,
		Height:        *c.Image.Height,
		MaxIterations: *c.Image.MaxIterations,
		CenterX:       *c.Image.CenterX,
		CenterY:       *c.Image.CenterY,
		Threads:       *c.Threads,
		OutputDir:     c.OutputDir,
		Quality:       *c.Image.Quality,
	}
}

// Read parses mandelmovie.yml from the specified path and fills omitted
// settings with their defaults. The result is not validated, so callers can
// merge overrides before calling Validate.
func Read(path string) (*MovieConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config MovieConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

// ReadOrDefault is Read, except that a missing file yields Default.
func ReadOrDefault(path string) (*MovieConfig, error) {
	c, err := Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return c, err
}

// Load reads and validates mandelmovie.yml from the specified path
func Load(path string) (*MovieConfig, error) {
	config, err := Read(path)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}
