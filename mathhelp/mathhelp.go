package mathhelp

import (
	"math"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats/scalar"
)

// Tolerance is the relative/absolute tolerance used when comparing coordinates.
const Tolerance = 1e-9

func BetweenInc[T constraints.Ordered](f, p, q T) bool {
	if p <= q {
		return p <= f && f <= q
	}
	return q <= f && f <= p
}

func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Pow2(n uint) uint {
	return 1 << n
}

// FloorMod is d modulo a positive m, in [0, m).
func FloorMod(d, m float64) float64 {
	r := math.Mod(d, m)
	if r < 0 {
		r += m
	}
	if r >= m {
		// -tiny + m rounds up to m
		r = 0
	}
	return r
}

// Close reports whether a and b are equal within Tolerance.
func Close(a, b float64) bool {
	return scalar.EqualWithinAbsOrRel(a, b, Tolerance, Tolerance)
}

func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180
}

func Rad2Deg(r float64) float64 {
	return r * 180 / math.Pi
}
