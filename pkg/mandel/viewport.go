package mandel

// Default zoom center in the complex plane.
const (
	DefaultCenterX = -1.0
	DefaultCenterY = 0.0
)

// Viewport is the rectangle of the complex plane that a frame covers.
type Viewport struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
}

// NewViewport returns the square viewport centred on (cx, cy) whose
// half-width and half-height both equal scale.
func NewViewport(cx, cy, scale float64) Viewport {
	return Viewport{
		Xmin: cx - scale,
		Xmax: cx + scale,
		Ymin: cy - scale,
		Ymax: cy + scale,
	}
}

// Point maps pixel (x, y) of a width×height frame to its complex coordinate
// by linear interpolation across the viewport bounds.
func (v Viewport) Point(x, y, width, height int) (re, im float64) {
	re = v.Xmin + (float64(x)/float64(width))*(v.Xmax-v.Xmin)
	im = v.Ymin + (float64(y)/float64(height))*(v.Ymax-v.Ymin)
	return re, im
}
