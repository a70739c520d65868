package core

import "math"

// Clamp limits x to [lo, hi]
func Clamp(x, lo, hi float64) float64 {
	return max(lo, min(hi, x))
}

// Clamp01 limits x to [0, 1]
func Clamp01(x float64) float64 {
	return Clamp(x, 0, 1)
}

// Mix linearly interpolates between a and b
func Mix(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

// Smoothstep is the cubic Hermite step between edge0 and edge1.
// Returns exactly 0 at or below edge0 and exactly 1 at or above edge1.
func Smoothstep(edge0, edge1, x float64) float64 {
	if edge1 == edge0 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := Clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

// Fract returns the fractional part of x in [0, 1)
func Fract(x float64) float64 {
	f := x - math.Floor(x)
	if f >= 1 {
		return 0
	}
	return f
}
