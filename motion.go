package panorama

import (
	"math"

	"github.com/tanema/gween/ease"
)

// Clamp restricts v to [lo, hi]. If hi < lo the range collapses to lo.
func Clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(v, hi))
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// EaseOutCubic maps t in [0, 1] onto a decelerating cubic curve.
// Inputs outside the unit range are clamped.
func EaseOutCubic(t float64) float64 {
	return unitEase(ease.OutCubic, t)
}

// EaseInOutCubic maps t in [0, 1] onto a symmetric accelerate/decelerate
// cubic curve. Inputs outside the unit range are clamped.
func EaseInOutCubic(t float64) float64 {
	return unitEase(ease.InOutCubic, t)
}

// unitEase evaluates a gween easing function over a unit change and duration.
func unitEase(fn ease.TweenFunc, t float64) float64 {
	t = Clamp(t, 0, 1)
	switch t {
	case 0:
		return 0
	case 1:
		return 1
	}
	return float64(fn(float32(t), 0, 1, 1))
}

// sign returns -1, 0 or 1 according to the sign of v.
func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
