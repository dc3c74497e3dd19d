package animation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dyluth/mandelmovie/internal/partition"
)

// LaunchError reports a unit that could not be started. It aborts the run.
type LaunchError struct {
	Unit   int
	Frames partition.Range
	Err    error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch worker unit %d (frames %s): %v", e.Unit, e.Frames, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// UnitStatus is how one unit terminated.
type UnitStatus struct {
	Unit   int
	Frames partition.Range

	// Duration runs from the unit's launch to its termination.
	Duration time.Duration

	// Err is non-nil when the unit terminated abnormally.
	Err error

	// Lost lists the unit's frames with no output file after an abnormal
	// termination.
	Lost []int
}

// Report is the outcome of a Run.
type Report struct {
	RunID    string
	Frames   int
	Units    []UnitStatus
	Duration time.Duration
}

// Failed returns the units that terminated abnormally.
func (r *Report) Failed() []UnitStatus {
	var failed []UnitStatus
	for _, u := range r.Units {
		if u.Err != nil {
			failed = append(failed, u)
		}
	}
	return failed
}

// LostFrames returns every frame lost to abnormal termination, ascending.
func (r *Report) LostFrames() []int {
	lost := []int{}
	for _, u := range r.Units {
		lost = append(lost, u.Lost...)
	}
	return lost
}

// Scheduler distributes a job over worker units.
type Scheduler struct {
	launcher Launcher
}

// NewScheduler returns a scheduler starting units with launcher.
func NewScheduler(launcher Launcher) *Scheduler {
	return &Scheduler{launcher: launcher}
}

// Run splits [0, job.Frames) over units, starts one unit per range and
// waits for all of them.
//
// If any unit fails to start, the units already started are killed and
// reaped and Run returns a *LaunchError. A unit that terminates abnormally
// after starting is recorded in the Report; the others keep running and
// nothing is retried.
func (s *Scheduler) Run(ctx context.Context, job Job, units int) (*Report, error) {
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job: %w", err)
	}
	plan, err := Assign(job.Frames, units)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	s.logEvent("run_started", map[string]interface{}{
		"run_id": job.RunID,
		"frames": job.Frames,
		"units":  units,
	})

	handles := make([]Handle, 0, len(plan))
	launched := make([]time.Time, 0, len(plan))
	for _, a := range plan {
		h, err := s.launcher.Launch(ctx, job, a)
		if err != nil {
			s.logEvent("unit_launch_failed", map[string]interface{}{
				"unit":   a.Unit,
				"frames": a.Frames.String(),
				"error":  err.Error(),
			})
			s.abort(handles)
			return nil, &LaunchError{Unit: a.Unit, Frames: a.Frames, Err: err}
		}
		s.logEvent("unit_launched", map[string]interface{}{
			"unit":   a.Unit,
			"frames": a.Frames.String(),
		})
		handles = append(handles, h)
		launched = append(launched, time.Now())
	}

	report := &Report{
		RunID:  job.RunID,
		Frames: job.Frames,
		Units:  make([]UnitStatus, len(plan)),
	}
	var wg sync.WaitGroup
	for i, h := range handles {
		wg.Add(1)
		go func(i int, h Handle) {
			defer wg.Done()
			report.Units[i] = s.reap(job, plan[i], h, launched[i])
		}(i, h)
	}
	wg.Wait()

	report.Duration = time.Since(started)
	s.logEvent("run_completed", map[string]interface{}{
		"run_id":       job.RunID,
		"failed_units": len(report.Failed()),
		"duration":     report.Duration.String(),
	})
	return report, nil
}

// reap waits for one unit and records how it terminated.
func (s *Scheduler) reap(job Job, a Assignment, h Handle, launched time.Time) UnitStatus {
	err := h.Wait()
	status := UnitStatus{
		Unit:     a.Unit,
		Frames:   a.Frames,
		Duration: time.Since(launched),
		Err:      err,
	}

	if err != nil {
		status.Lost = missingOutputs(job, a.Frames)
		s.logEvent("unit_failed", map[string]interface{}{
			"unit":     a.Unit,
			"error":    err.Error(),
			"lost":     status.Lost,
			"duration": status.Duration.String(),
		})
	} else {
		s.logEvent("unit_completed", map[string]interface{}{
			"unit":     a.Unit,
			"duration": status.Duration.String(),
		})
	}
	return status
}

// abort kills and reaps units started before a launch failure.
func (s *Scheduler) abort(handles []Handle) {
	for i, h := range handles {
		if err := h.Kill(); err != nil {
			log.Printf("[Animation] Warning: failed to kill unit %d: %v", i, err)
		}
	}
	for _, h := range handles {
		_ = h.Wait()
	}
}

// missingOutputs lists the frames of r whose output file does not exist.
func missingOutputs(job Job, r partition.Range) []int {
	missing := []int{}
	for i := r.Start; i < r.End; i++ {
		if _, err := os.Stat(job.Path(i)); errors.Is(err, os.ErrNotExist) {
			missing = append(missing, i)
		}
	}
	return missing
}

// logEvent logs structured scheduler events
func (s *Scheduler) logEvent(event string, data map[string]interface{}) {
	log.Printf("[Animation] event=%s %v", event, data)
}
