// Package frame renders single frames of the zoom: it derives the viewport,
// fans the rows out over goroutines, joins them and hands the finished
// buffer to an Encoder.
package frame

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/dyluth/mandelmovie/internal/partition"
	"github.com/dyluth/mandelmovie/pkg/mandel"
)

// Encoder is the image-output collaborator: it turns a complete pixel
// buffer into a file at path.
type Encoder interface {
	Encode(buf *mandel.PixelBuffer, path string) error
}

// Result is the outcome of one Process call.
type Result struct {
	Index    int
	Scale    float64
	Path     string
	Duration time.Duration
	Err      error
}

// OK reports whether the frame file was written.
func (r Result) OK() bool { return r.Err == nil }

// Scheduler renders frames with a fixed Settings value.
// A Scheduler may be reused for any number of frames but renders one frame
// per call; it holds no per-frame state.
type Scheduler struct {
	settings Settings
	encoder  Encoder

	// region renders one strip; swapped in tests.
	region func(s mandel.Strip, vp mandel.Viewport, maxIter int)
}

// NewScheduler validates settings and returns a Scheduler that writes
// frames through encoder.
func NewScheduler(settings Settings, encoder Encoder) (*Scheduler, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid frame settings: %w", err)
	}
	if encoder == nil {
		return nil, errors.New("encoder is required")
	}
	return &Scheduler{
		settings: settings,
		encoder:  encoder,
		region:   mandel.RenderRegion,
	}, nil
}

// Settings returns the scheduler's settings.
func (s *Scheduler) Settings() Settings { return s.settings }

// Viewport returns the complex-plane window of d.
func (s *Scheduler) Viewport(d Descriptor) mandel.Viewport {
	return mandel.NewViewport(s.settings.CenterX, s.settings.CenterY, d.Scale)
}

// Path returns where frame index is written.
func (s *Scheduler) Path(index int) string {
	return filepath.Join(s.settings.OutputDir, Filename(index))
}

// Render computes the pixels of d. Rows are split over Settings.Threads
// goroutines, each writing its own strip of one shared buffer. The buffer is
// returned only after every goroutine has finished.
func (s *Scheduler) Render(d Descriptor) (*mandel.PixelBuffer, error) {
	if d.Index < 0 {
		return nil, fmt.Errorf("frame index must not be negative, got %d", d.Index)
	}
	if !(d.Scale > 0) {
		return nil, fmt.Errorf("frame %d: scale must be positive, got %v", d.Index, d.Scale)
	}

	rows, err := partition.Split(s.settings.Height, s.settings.Threads)
	if err != nil {
		return nil, fmt.Errorf("frame %d: %w", d.Index, err)
	}

	buf := mandel.NewPixelBuffer(s.settings.Width, s.settings.Height)
	vp := s.Viewport(d)
	maxIter := s.settings.MaxIterations

	// failures[i] is written only by goroutine i.
	failures := make([]any, len(rows))

	var wg sync.WaitGroup
	for i, r := range rows {
		strip := buf.Strip(r.Start, r.End)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					failures[i] = p
				}
			}()
			s.region(strip, vp, maxIter)
		}()
	}
	wg.Wait()

	for i, p := range failures {
		if p != nil {
			return nil, &RenderError{Index: d.Index, Rows: rows[i], Cause: p}
		}
	}
	return buf, nil
}

// Process renders d and writes it to its output file. Failures are logged
// and returned in the Result; they never panic or stop the caller.
func (s *Scheduler) Process(d Descriptor) Result {
	started := time.Now()
	res := Result{
		Index: d.Index,
		Scale: d.Scale,
		Path:  s.Path(d.Index),
	}

	buf, err := s.Render(d)
	if err != nil {
		res.Err = err
		res.Duration = time.Since(started)
		log.Printf("[Frame] Error: could not render frame %d: %v", d.Index, err)
		return res
	}

	if err := s.encoder.Encode(buf, res.Path); err != nil {
		res.Err = &EncodeError{Index: d.Index, Path: res.Path, Err: err}
		res.Duration = time.Since(started)
		log.Printf("[Frame] Error: %v", res.Err)
		return res
	}

	res.Duration = time.Since(started)
	log.Printf("[Frame] Saved frame %d to %s", d.Index, res.Path)
	return res
}
