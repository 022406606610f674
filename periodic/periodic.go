// Package periodic selects from and reorders fields along a cyclic axis, such as longitude.
//
// A periodic axis is ascending and its cells cover exactly one period. Its window is
// [first - d, last + d) with d half the gap that closes the period, which for a regular
// axis is half a cell.
package periodic

import (
	"fmt"
	"math"

	"github.com/iridl/pingrid/grid"
	"github.com/iridl/pingrid/mathhelp"
)

const Degrees = 360.0

// AxisError reports an axis that is not a single ascending period.
type AxisError struct {
	Dim    string
	Reason string
}

func (e *AxisError) Error() string {
	return fmt.Sprintf("periodic axis %q: %s", e.Dim, e.Reason)
}

// CheckAxis returns the coordinates of dim after checking that they are strictly
// ascending and that their cells cover one period.
func CheckAxis(f *grid.Field, dim string, period float64) ([]float64, error) {
	coords, err := f.Coords(dim)
	if err != nil {
		return nil, err
	}
	if !(period > 0) {
		return nil, &AxisError{Dim: dim, Reason: fmt.Sprintf("period %v is not positive", period)}
	}
	n := len(coords)
	if n < 2 {
		return nil, &AxisError{Dim: dim, Reason: fmt.Sprintf("needs at least 2 coordinates, has %d", n)}
	}
	for i := 1; i < n; i++ {
		if !(coords[i] > coords[i-1]) {
			return nil, &AxisError{Dim: dim, Reason: fmt.Sprintf("not ascending at index %d", i)}
		}
	}
	step := coords[1] - coords[0]
	if coords[n-1]-coords[0] >= period || math.Abs(float64(n)*step-period) > 1e-6*period {
		return nil, &AxisError{Dim: dim, Reason: fmt.Sprintf("%d cells of %v do not cover a period of %v", n, step, period)}
	}
	return coords, nil
}

// window returns the lower edge of the one-period window covered by coords.
func window(coords []float64, period float64) float64 {
	first, last := coords[0], coords[len(coords)-1]
	return first - (period-(last-first))/2
}

// normalize maps v into [lo, lo+period).
func normalize(v, lo, period float64) float64 {
	return lo + mathhelp.FloorMod(v-lo, period)
}

// RollTo rotates the field along dim so that it starts at the smallest coordinate that
// is >= value modulo period. Rotated coordinates are shifted by one period to keep the
// axis ascending, after which the whole axis is moved by a period if that brings its
// window closer to 0. When nothing needs to rotate, f is returned as is.
func RollTo(f *grid.Field, dim string, value, period float64) (*grid.Field, error) {
	coords, err := CheckAxis(f, dim, period)
	if err != nil {
		return nil, err
	}
	lo := window(coords, period)
	v := normalize(value, lo, period)
	n := 0
	for i, c := range coords {
		if c >= v {
			n = i
			break
		}
	}
	if n == 0 {
		return f, nil
	}

	indices := make([]int, len(coords))
	rolled := make([]float64, len(coords))
	for i := range indices {
		indices[i] = (i + n) % len(coords)
		rolled[i] = coords[indices[i]]
		if rolled[i] < v {
			rolled[i] += period
		}
	}
	rolled = shiftTowardsZero(rolled, period)

	taken, err := f.Take(dim, indices)
	if err != nil {
		return nil, err
	}
	out, err := taken.WithCoords(dim, rolled)
	if err != nil {
		return nil, err
	}
	if _, err := CheckAxis(out, dim, period); err != nil {
		return nil, fmt.Errorf("roll to %v: %w", value, err)
	}
	return out, nil
}

// shiftTowardsZero moves coords by one period when their window lies entirely above or
// below 0.
func shiftTowardsZero(coords []float64, period float64) []float64 {
	lo := window(coords, period)
	var shift float64
	switch {
	case lo > 0:
		shift = -period
	case lo+period < 0:
		shift = period
	default:
		return coords
	}
	for i := range coords {
		coords[i] += shift
	}
	return coords
}

// Shift returns f with every coordinate of dim moved by the given number of periods.
func Shift(f *grid.Field, dim string, periods int, period float64) (*grid.Field, error) {
	coords, err := f.Coords(dim)
	if err != nil {
		return nil, err
	}
	shifted := make([]float64, len(coords))
	for i, c := range coords {
		shifted[i] = c + float64(periods)*period
	}
	return f.WithCoords(dim, shifted)
}
