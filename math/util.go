package math

import "golang.org/x/exp/constraints"

// Clamp returns f limited to the range [low, high].
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

const (
	deg2Rad float32 = 3.14159265358979323846 / 180.0
	rad2Deg float32 = 180.0 / 3.14159265358979323846
)

func ToRadian(deg float32) float32 { return deg * deg2Rad }

func ToDegree(rad float32) float32 { return rad * rad2Deg }
