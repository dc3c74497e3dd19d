// Package mandel holds the pure rendering primitives for the mandelmovie
// zoom animation: the escape-time evaluator, the colour mapping, viewport
// derivation and the pixel buffer that concurrent row workers fill.
//
// # Overview
//
// A frame is a width×height grid of RGB triples. The grid is rendered by
// evaluating the Mandelbrot recurrence z ← z² + c for the complex coordinate
// that each pixel maps to inside a Viewport, and colouring the pixel from the
// iteration count.
//
// # Concurrent writes
//
// A PixelBuffer is split into Strips: row ranges that share the buffer's
// backing array but never overlap. Each Strip is handed to exactly one
// goroutine, which writes its rows without any locking. Strips are created
// with a capped capacity, so a strip cannot reach rows outside its range
// even through append.
//
// # Usage Example
//
//	buf := mandel.NewPixelBuffer(600, 600)
//	vp := mandel.NewViewport(mandel.DefaultCenterX, mandel.DefaultCenterY, 4.0)
//
//	var wg sync.WaitGroup
//	for _, rows := range [][2]int{{0, 300}, {300, 600}} {
//		s := buf.Strip(rows[0], rows[1])
//		wg.Add(1)
//		go func() {
//			defer wg.Done()
//			mandel.RenderRegion(s, vp, mandel.DefaultMaxIterations)
//		}()
//	}
//	wg.Wait()
//
// # Fixed constants
//
// The defaults (500 iterations, center (-1, 0), modulo-256 colour channels)
// are part of the observable output: changing any of them changes every
// rendered frame.
package mandel
