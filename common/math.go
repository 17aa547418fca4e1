package common

import "math"

// RotatePoint rotates (x, y) around (ox, oy) by deg degrees, clockwise in
// screen space (y down).
func RotatePoint(x, y, ox, oy, deg float64) (float64, float64) {
	if deg == 0 {
		return x, y
	}
	rad := deg * math.Pi / 180
	s, c := math.Sincos(rad)
	dx := x - ox
	dy := y - oy
	return ox + dx*c - dy*s, oy + dx*s + dy*c
}
