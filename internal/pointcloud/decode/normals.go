package decode

import "math"

// Compressed normal codecs. Both take the two raw bytes of a field and
// return a unit vector.

// byteToSigned maps a byte to [-1, 1].
func byteToSigned(b byte) float64 {
	return float64(b)/255*2 - 1
}

// SphereMappedNormal inverts the sphere-map encoding.
//
// The radicand 1 - nx² - ny² goes negative for byte pairs outside the unit
// disc; it is clamped to 0, which yields (0, 0, -1) instead of NaN.
func SphereMappedNormal(bx, by byte) [3]float32 {
	nx := byteToSigned(bx)
	ny := byteToSigned(by)

	// dot((nx, ny, 1), (-nx, -ny, -(-1)))
	l := nx*(-nx) + ny*(-ny) + 1
	if l < 0 {
		l = 0
	}
	nz := l
	s := math.Sqrt(l)
	nx *= s
	ny *= s

	return [3]float32{
		float32(nx * 2),
		float32(ny * 2),
		float32(nz*2 - 1),
	}
}

// signNonZero treats 0 as positive so the fold never divides by zero.
func signNonZero(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// Oct16Normal inverts the 16-bit octahedral encoding.
func Oct16Normal(bx, by byte) [3]float32 {
	u := byteToSigned(bx)
	v := byteToSigned(by)

	z := 1 - math.Abs(u) - math.Abs(v)
	x, y := u, v
	if z < 0 {
		// Lower hemisphere: unfold the corner triangles.
		x = -(v/signNonZero(v) - 1) / signNonZero(u)
		y = -(u/signNonZero(u) - 1) / signNonZero(v)
	}

	length := math.Sqrt(x*x + y*y + z*z)
	return [3]float32{
		float32(x / length),
		float32(y / length),
		float32(z / length),
	}
}
