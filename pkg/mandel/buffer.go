package mandel

import (
	"fmt"
	"image"
	"image/color"
)

// bytesPerPixel is the packed size of one RGB triple.
const bytesPerPixel = 3

// PixelBuffer is a width×height grid of RGB triples stored row-major.
//
// A PixelBuffer is not safe for concurrent use except through Strips
// obtained from Strip with non-overlapping row ranges.
type PixelBuffer struct {
	width  int
	height int
	stride int
	pix    []uint8
}

// NewPixelBuffer allocates a zeroed (black) buffer.
// It panics if width or height is not positive.
func NewPixelBuffer(width, height int) *PixelBuffer {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("mandel: invalid buffer size %dx%d", width, height))
	}
	stride := width * bytesPerPixel
	return &PixelBuffer{
		width:  width,
		height: height,
		stride: stride,
		pix:    make([]uint8, stride*height),
	}
}

// Width returns the number of columns.
func (b *PixelBuffer) Width() int { return b.width }

// Height returns the number of rows.
func (b *PixelBuffer) Height() int { return b.height }

// Pix exposes the packed RGB bytes. Two buffers with equal Pix rendered the
// same frame.
func (b *PixelBuffer) Pix() []uint8 { return b.pix }

// RGBAt returns the pixel at (x, y).
func (b *PixelBuffer) RGBAt(x, y int) RGB {
	i := y*b.stride + x*bytesPerPixel
	return RGB{R: b.pix[i], G: b.pix[i+1], B: b.pix[i+2]}
}

// Set writes the pixel at (x, y).
func (b *PixelBuffer) Set(x, y int, c RGB) {
	i := y*b.stride + x*bytesPerPixel
	b.pix[i] = c.R
	b.pix[i+1] = c.G
	b.pix[i+2] = c.B
}

// Strip returns a mutable view of rows [y0, y1). Strips over disjoint row
// ranges may be written concurrently. It panics on an out-of-range request.
func (b *PixelBuffer) Strip(y0, y1 int) Strip {
	if y0 < 0 || y1 < y0 || y1 > b.height {
		panic(fmt.Sprintf("mandel: strip [%d,%d) out of range [0,%d)", y0, y1, b.height))
	}
	lo, hi := y0*b.stride, y1*b.stride
	return Strip{
		y0:          y0,
		y1:          y1,
		width:       b.width,
		frameHeight: b.height,
		stride:      b.stride,
		pix:         b.pix[lo:hi:hi],
	}
}

// ColorModel implements image.Image.
func (b *PixelBuffer) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (b *PixelBuffer) Bounds() image.Rectangle { return image.Rect(0, 0, b.width, b.height) }

// At implements image.Image.
func (b *PixelBuffer) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(b.Bounds()) {
		return color.RGBA{}
	}
	return b.RGBAt(x, y).Color()
}

// RGBA copies the buffer into an opaque *image.RGBA, the layout the standard
// encoders handle fastest.
func (b *PixelBuffer) RGBA() *image.RGBA {
	img := image.NewRGBA(b.Bounds())
	for i, j := 0, 0; i < len(b.pix); i, j = i+bytesPerPixel, j+4 {
		img.Pix[j] = b.pix[i]
		img.Pix[j+1] = b.pix[i+1]
		img.Pix[j+2] = b.pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}
