package mandel

// RenderRegion fills every pixel of s with the colour of its escape time
// inside vp. It only touches the strip's rows.
func RenderRegion(s Strip, vp Viewport, maxIter int) {
	y0, y1 := s.Rows()
	w, h := s.Width(), s.FrameHeight()

	for y := y0; y < y1; y++ {
		for x := 0; x < w; x++ {
			re, im := vp.Point(x, y, w, h)
			s.Set(x, y, Colorize(EscapeTime(re, im, maxIter)))
		}
	}
}
