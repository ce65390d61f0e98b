// Package utils contains small math and concurrency helpers shared across the planner.
package utils

import "math"

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// WrapAngle normalizes an angle in radians to (-pi, pi].
func WrapAngle(ang float64) float64 {
	for ang > math.Pi {
		ang -= 2 * math.Pi
	}
	for ang <= -math.Pi {
		ang += 2 * math.Pi
	}
	return ang
}

// Clamp returns v bounded to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp linearly interpolates between a and b by fraction t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Float64AlmostEqual returns whether two float64s are within epsilon of each other.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}
