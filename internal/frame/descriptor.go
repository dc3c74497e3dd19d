package frame

import (
	"fmt"
	"math"
)

// DefaultDecay is the per-frame zoom factor: frame n is rendered at
// base_scale * 0.95^n.
const DefaultDecay = 0.95

// Descriptor identifies one frame of the animation.
type Descriptor struct {
	Index int
	Scale float64
}

// NewDescriptor returns the descriptor for frame index of a zoom that starts
// at base and shrinks by decay each frame.
func NewDescriptor(index int, base, decay float64) Descriptor {
	return Descriptor{Index: index, Scale: ScaleFor(index, base, decay)}
}

// ScaleFor returns base * decay^index.
func ScaleFor(index int, base, decay float64) float64 {
	return base * math.Pow(decay, float64(index))
}

// Filename is the output name of frame index.
func Filename(index int) string {
	return fmt.Sprintf("mandel%d.jpg", index)
}
