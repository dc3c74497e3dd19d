package frame

import (
	"fmt"

	"github.com/dyluth/mandelmovie/internal/partition"
)

// RenderError reports a strip goroutine that died while rendering. The
// frame's buffer is discarded; no partial frame is ever encoded.
type RenderError struct {
	Index int
	Rows  partition.Range
	Cause any
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("frame %d: rows %s failed: %v", e.Index, e.Rows, e.Cause)
}

// EncodeError reports a frame that rendered but could not be written.
type EncodeError struct {
	Index int
	Path  string
	Err   error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("could not save frame %d to file %s: %v", e.Index, e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
