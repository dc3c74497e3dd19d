package ledger

import (
	"errors"
	"fmt"
	"sort"
)

// FrameStatus is the outcome of one frame.
type FrameStatus string

const (
	// FrameStatusRendered means the frame file was written.
	FrameStatusRendered FrameStatus = "rendered"
	// FrameStatusFailed means rendering or encoding failed and no file exists.
	FrameStatusFailed FrameStatus = "failed"
)

// Validate checks the status is one of the defined values.
func (s FrameStatus) Validate() error {
	switch s {
	case FrameStatusRendered, FrameStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid frame status: %q", s)
	}
}

// RunInfo describes a render run. It is written once by the CLI before the
// worker units start.
type RunInfo struct {
	RunID       string  `json:"run_id"`
	Frames      int     `json:"frames"`
	Units       int     `json:"units"`
	Threads     int     `json:"threads"`
	BaseScale   float64 `json:"base_scale"`
	Isolation   string  `json:"isolation"`
	StartedAtMs int64   `json:"started_at_ms"`

	// CompletedAtMs is set once every unit has terminated. Zero while the
	// run is in progress.
	CompletedAtMs int64 `json:"completed_at_ms,omitempty"`
}

// Completed reports whether the scheduler has reaped every unit of the run.
func (r *RunInfo) Completed() bool { return r.CompletedAtMs > 0 }

// Validate checks the run metadata is well-formed.
func (r *RunInfo) Validate() error {
	if r.RunID == "" {
		return errors.New("run_id is required")
	}
	if r.Frames < 0 {
		return fmt.Errorf("frames must not be negative, got %d", r.Frames)
	}
	if r.Units < 1 {
		return fmt.Errorf("units must be at least 1, got %d", r.Units)
	}
	return nil
}

// FrameRecord is what a worker unit reports about one frame.
type FrameRecord struct {
	RunID        string      `json:"run_id"`
	Index        int         `json:"index"`
	Scale        float64     `json:"scale"`
	Unit         int         `json:"unit"`
	Status       FrameStatus `json:"status"`
	Path         string      `json:"path"`
	DurationMs   int64       `json:"duration_ms"`
	Error        string      `json:"error,omitempty"`
	RecordedAtMs int64       `json:"recorded_at_ms"`
}

// Validate checks the record is well-formed.
func (f *FrameRecord) Validate() error {
	if f.Index < 0 {
		return fmt.Errorf("frame index must not be negative, got %d", f.Index)
	}
	if f.Unit < 0 {
		return fmt.Errorf("unit must not be negative, got %d", f.Unit)
	}
	if err := f.Status.Validate(); err != nil {
		return err
	}
	if f.Status == FrameStatusFailed && f.Error == "" {
		return errors.New("failed frame record must carry an error")
	}
	return nil
}

// Summary classifies every frame index of a run.
type Summary struct {
	Total    int
	Rendered []int
	Failed   []int
	Missing  []int
}

// Complete reports whether every frame was rendered.
func (s *Summary) Complete() bool {
	return len(s.Rendered) == s.Total
}

// Summarize classifies [0, total) using records. Indices with no record are
// missing: their unit died before reporting. Records outside the range are
// ignored.
func Summarize(records []*FrameRecord, total int) *Summary {
	status := make(map[int]FrameStatus, len(records))
	for _, r := range records {
		if r.Index < 0 || r.Index >= total {
			continue
		}
		status[r.Index] = r.Status
	}

	s := &Summary{
		Total:    total,
		Rendered: []int{},
		Failed:   []int{},
		Missing:  []int{},
	}
	for i := 0; i < total; i++ {
		switch status[i] {
		case FrameStatusRendered:
			s.Rendered = append(s.Rendered, i)
		case FrameStatusFailed:
			s.Failed = append(s.Failed, i)
		default:
			s.Missing = append(s.Missing, i)
		}
	}
	return s
}

// sortRecords orders records by frame index.
func sortRecords(records []*FrameRecord) {
	sort.Slice(records, func(i, j int) bool { return records[i].Index < records[j].Index })
}
