// SPDX-License-Identifier: EPL-2.0

package utils

// CubicInterpolate evaluates the Catmull-Rom spline through y0..y3 at x,
// where x in [0,1] is the fractional position between y1 and y2.
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	c3 := 0.5 * (3*(y1-y2) + y3 - y0)
	c2 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	c1 := 0.5 * (y2 - y0)

	// Horner form
	return ((c3*x+c2)*x+c1)*x + y1
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b, x float32) float32 {
	return a + (b-a)*x
}
