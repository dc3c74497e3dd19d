package mandel

import "image/color"

// RGB is a single pixel value, one byte per channel.
type RGB struct {
	R, G, B uint8
}

// Color converts the pixel to an opaque color.RGBA.
func (c RGB) Color() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// Colorize maps an iteration count to a pixel:
// red = n mod 256, green = 2n mod 256, blue = 4n mod 256.
func Colorize(n int) RGB {
	return RGB{
		R: uint8(n % 256),
		G: uint8(n * 2 % 256),
		B: uint8(n * 4 % 256),
	}
}
