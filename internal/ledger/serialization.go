package ledger

import (
	"fmt"
	"strconv"
)

// Serialization helpers for converting between Go structs and Redis hashes.
// Redis hashes are string-to-string maps; numbers are written with their
// natural formatting and parsed back strictly.

// RunToHash converts RunInfo to a Redis hash.
func RunToHash(r *RunInfo) map[string]interface{} {
	hash := map[string]interface{}{
		"run_id":        r.RunID,
		"frames":        r.Frames,
		"units":         r.Units,
		"threads":       r.Threads,
		"base_scale":    strconv.FormatFloat(r.BaseScale, 'g', -1, 64),
		"isolation":     r.Isolation,
		"started_at_ms": r.StartedAtMs,
	}
	if r.CompletedAtMs > 0 {
		hash["completed_at_ms"] = r.CompletedAtMs
	}
	return hash
}

// HashToRun converts a Redis hash back to RunInfo.
func HashToRun(hash map[string]string) (*RunInfo, error) {
	frames, err := strconv.Atoi(hash["frames"])
	if err != nil {
		return nil, fmt.Errorf("invalid frames field: %w", err)
	}
	units, err := strconv.Atoi(hash["units"])
	if err != nil {
		return nil, fmt.Errorf("invalid units field: %w", err)
	}
	threads, err := strconv.Atoi(hash["threads"])
	if err != nil {
		return nil, fmt.Errorf("invalid threads field: %w", err)
	}
	baseScale, err := strconv.ParseFloat(hash["base_scale"], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid base_scale field: %w", err)
	}
	startedAt, _ := strconv.ParseInt(hash["started_at_ms"], 10, 64)
	completedAt, _ := strconv.ParseInt(hash["completed_at_ms"], 10, 64)

	return &RunInfo{
		RunID:         hash["run_id"],
		Frames:        frames,
		Units:         units,
		Threads:       threads,
		BaseScale:     baseScale,
		Isolation:     hash["isolation"],
		StartedAtMs:   startedAt,
		CompletedAtMs: completedAt,
	}, nil
}

// FrameToHash converts a FrameRecord to a Redis hash.
func FrameToHash(f *FrameRecord) map[string]interface{} {
	return map[string]interface{}{
		"run_id":         f.RunID,
		"index":          f.Index,
		"scale":          strconv.FormatFloat(f.Scale, 'g', -1, 64),
		"unit":           f.Unit,
		"status":         string(f.Status),
		"path":           f.Path,
		"duration_ms":    f.DurationMs,
		"error":          f.Error,
		"recorded_at_ms": f.RecordedAtMs,
	}
}

// HashToFrame converts a Redis hash back to a FrameRecord.
func HashToFrame(hash map[string]string) (*FrameRecord, error) {
	index, err := strconv.Atoi(hash["index"])
	if err != nil {
		return nil, fmt.Errorf("invalid index field: %w", err)
	}
	unit, err := strconv.Atoi(hash["unit"])
	if err != nil {
		return nil, fmt.Errorf("invalid unit field: %w", err)
	}
	scale, err := strconv.ParseFloat(hash["scale"], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid scale field: %w", err)
	}
	duration, _ := strconv.ParseInt(hash["duration_ms"], 10, 64)
	recordedAt, _ := strconv.ParseInt(hash["recorded_at_ms"], 10, 64)

	return &FrameRecord{
		RunID:        hash["run_id"],
		Index:        index,
		Scale:        scale,
		Unit:         unit,
		Status:       FrameStatus(hash["status"]),
		Path:         hash["path"],
		DurationMs:   duration,
		Error:        hash["error"],
		RecordedAtMs: recordedAt,
	}, nil
}
