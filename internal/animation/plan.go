package animation

import (
	"fmt"

	"github.com/dyluth/mandelmovie/internal/partition"
)

// Assignment is the contiguous block of frames one unit renders.
type Assignment struct {
	Unit   int
	Frames partition.Range
}

func (a Assignment) String() string {
	return fmt.Sprintf("unit %d frames %s", a.Unit, a.Frames)
}

// Assign splits [0, frames) over units with partition.Split. Unit u gets the
// u-th range; the last unit absorbs the remainder.
func Assign(frames, units int) ([]Assignment, error) {
	ranges, err := partition.Split(frames, units)
	if err != nil {
		return nil, err
	}

	out := make([]Assignment, len(ranges))
	for u, r := range ranges {
		out[u] = Assignment{Unit: u, Frames: r}
	}
	return out, nil
}
