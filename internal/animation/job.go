// Package animation spreads the frames of a zoom over isolated worker units
// and waits for them. A unit is either a child process (the default) or a
// goroutine holding private copies of everything it touches; units never
// share memory and report back only how they terminated.
package animation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/mandelmovie/internal/frame"
)

// JobEnv is the environment variable carrying the JSON-encoded Job to a
// process-isolated worker unit.
const JobEnv = "MANDELMOVIE_JOB"

// Job is everything a worker unit needs to render its share of the zoom.
// It is a plain value: each unit receives its own copy.
type Job struct {
	RunID     string         `json:"run_id"`
	Frames    int            `json:"frames"`
	BaseScale float64        `json:"base_scale"`
	Decay     float64        `json:"decay"`
	Settings  frame.Settings `json:"settings"`

	// LedgerURL is the Redis URL of the run ledger. Empty disables it.
	LedgerURL string `json:"ledger_url,omitempty"`
}

// Validate checks the job before any unit is launched.
func (j Job) Validate() error {
	if j.Frames < 0 {
		return fmt.Errorf("frames must not be negative, got %d", j.Frames)
	}
	if !(j.BaseScale > 0) {
		return fmt.Errorf("base_scale must be positive, got %v", j.BaseScale)
	}
	if !(j.Decay > 0 && j.Decay <= 1) {
		return fmt.Errorf("decay must be in (0, 1], got %v", j.Decay)
	}
	if err := j.Settings.Validate(); err != nil {
		return err
	}
	return nil
}

// Descriptor returns the descriptor of frame index.
func (j Job) Descriptor(index int) frame.Descriptor {
	return frame.NewDescriptor(index, j.BaseScale, j.Decay)
}

// Path returns the output file of frame index.
func (j Job) Path(index int) string {
	return filepath.Join(j.Settings.OutputDir, frame.Filename(index))
}

// Encode returns the job as a JSON string suitable for JobEnv.
func (j Job) Encode() (string, error) {
	data, err := json.Marshal(j)
	if err != nil {
		return "", fmt.Errorf("failed to marshal job: %w", err)
	}
	return string(data), nil
}

// DecodeJob parses and validates a JSON-encoded job.
func DecodeJob(s string) (Job, error) {
	var j Job
	if err := json.Unmarshal([]byte(s), &j); err != nil {
		return Job{}, fmt.Errorf("failed to parse job: %w", err)
	}
	if err := j.Validate(); err != nil {
		return Job{}, fmt.Errorf("invalid job: %w", err)
	}
	return j, nil
}

// LoadJob reads the job from JobEnv.
func LoadJob() (Job, error) {
	raw := os.Getenv(JobEnv)
	if raw == "" {
		return Job{}, errors.New(JobEnv + " environment variable is required")
	}
	return DecodeJob(raw)
}
