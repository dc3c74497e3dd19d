package mandel

// Strip is a contiguous row range of a PixelBuffer. Coordinates passed to
// Set are frame coordinates, not strip-relative ones.
type Strip struct {
	y0, y1      int
	width       int
	frameHeight int
	stride      int
	pix         []uint8
}

// Rows returns the half-open row range [y0, y1) the strip covers.
func (s Strip) Rows() (y0, y1 int) { return s.y0, s.y1 }

// Width returns the frame width.
func (s Strip) Width() int { return s.width }

// FrameHeight returns the height of the whole frame, not of the strip.
func (s Strip) FrameHeight() int { return s.frameHeight }

// Set writes pixel (x, y); y must lie in the strip's rows.
func (s Strip) Set(x, y int, c RGB) {
	i := (y-s.y0)*s.stride + x*bytesPerPixel
	s.pix[i] = c.R
	s.pix[i+1] = c.G
	s.pix[i+2] = c.B
}
