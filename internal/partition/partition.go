// Package partition splits an index domain [0, total) into contiguous
// ranges, one per worker. The same split is used for frames across worker
// units and for rows across goroutines.
package partition

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWorkers is returned when fewer than one worker is requested.
	ErrInvalidWorkers = errors.New("worker count must be at least 1")

	// ErrNegativeTotal is returned when the domain size is negative.
	ErrNegativeTotal = errors.New("total must not be negative")
)

// Range is the half-open index interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices in the range.
func (r Range) Len() int { return r.End - r.Start }

// Empty reports whether the range holds no index.
func (r Range) Empty() bool { return r.End <= r.Start }

// Contains reports whether i lies in the range.
func (r Range) Contains(i int) bool { return i >= r.Start && i < r.End }

// Indices lists the range's indices in ascending order.
func (r Range) Indices() []int {
	out := make([]int, 0, r.Len())
	for i := r.Start; i < r.End; i++ {
		out = append(out, i)
	}
	return out
}

func (r Range) String() string { return fmt.Sprintf("[%d,%d)", r.Start, r.End) }

// Split divides [0, total) into workers contiguous ranges. Every range but
// the last has total/workers indices; the last one also absorbs the
// remainder total%workers. Ranges are ordered, disjoint and cover the domain
// exactly once; when total < workers the leading ranges are empty.
func Split(total, workers int) ([]Range, error) {
	if workers < 1 {
		return nil, fmt.Errorf("split %d over %d workers: %w", total, workers, ErrInvalidWorkers)
	}
	if total < 0 {
		return nil, fmt.Errorf("split %d over %d workers: %w", total, workers, ErrNegativeTotal)
	}

	per := total / workers
	rem := total % workers

	ranges := make([]Range, workers)
	for i := 0; i < workers; i++ {
		start := i * per
		end := start + per
		if i == workers-1 {
			end += rem
		}
		ranges[i] = Range{Start: start, End: end}
	}
	return ranges, nil
}
