package core

import (
	"math"

	"golang.org/x/exp/constraints"
)

// ShadowEpsilon is the self-intersection offset used for spawned rays
const ShadowEpsilon = 1e-4

// Clamp limits v to the closed range [lo, hi]
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp linearly interpolates between a and b
func Lerp[T constraints.Float](t, a, b T) T {
	return (1-t)*a + t*b
}

// Square returns x*x
func Square[T constraints.Integer | constraints.Float](x T) T {
	return x * x
}

// SafeSqrt returns the square root of max(0, x)
func SafeSqrt(x float64) float64 {
	return math.Sqrt(math.Max(0, x))
}

// Radians converts degrees to radians
func Radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
