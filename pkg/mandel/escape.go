package mandel

const (
	// DefaultMaxIterations is the iteration bound used when none is configured.
	DefaultMaxIterations = 500

	// escapeRadiusSquared is compared against |z|², never against |z|.
	escapeRadiusSquared = 4.0
)

// EscapeTime returns the number of iterations of z ← z² + c, starting from
// z = 0 with c = re + im·i, after which |z|² >= 4. Points that stay bounded
// for maxIter iterations return maxIter.
func EscapeTime(re, im float64, maxIter int) int {
	var zr, zi float64
	zr2, zi2 := zr*zr, zi*zi

	n := 0
	for zr2+zi2 < escapeRadiusSquared && n < maxIter {
		zi = 2*zr*zi + im
		zr = zr2 - zi2 + re
		zr2 = zr * zr
		zi2 = zi * zi
		n++
	}
	return n
}
