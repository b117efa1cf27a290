package mathutil

import "golang.org/x/exp/constraints"

// Clamp returns f limited to [low, high].
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// ApproxEqual reports whether a and b differ by at most eps.
func ApproxEqual[T constraints.Float](a, b, eps T) bool {
	d := a - b
	return d <= eps && d >= -eps
}
