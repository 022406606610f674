package periodic

import (
	"fmt"
	"slices"

	"github.com/iridl/pingrid/grid"
	"github.com/iridl/pingrid/mathhelp"
)

// Selector is either Values or Range.
type Selector interface {
	plan(coords []float64, period float64) plan
}

// Values selects the cells at the given coordinates, in the given order. Every value is
// compared modulo the period.
type Values []float64

// Range selects the cells with Start <= coordinate < Stop, compared modulo the period.
// With Descending, Stop <= coordinate < Start is returned in descending order.
type Range struct {
	Start      float64
	Stop       float64
	Descending bool
}

// plan is how a selector is carried out on a particular axis: either directly or
// after rolling the wrap point of the axis out of the way.
type plan interface {
	apply(f *grid.Field, dim string, period float64) (*grid.Field, error)
}

// directPlan selects [lo, hi) (or the listed values) in the frame of the axis as is.
type directPlan struct {
	lo, hi     float64
	values     []float64
	descending bool
}

// rollPlan rolls the axis to start at the first cell >= to, then selects width from
// there.
type rollPlan struct {
	to         float64
	width      float64
	descending bool
}

func (v Values) plan(coords []float64, period float64) plan {
	lo := window(coords, period)
	values := make([]float64, len(v))
	for i, x := range v {
		values[i] = normalize(x, lo, period)
	}
	return directPlan{values: values}
}

func (r Range) plan(coords []float64, period float64) plan {
	start, stop := r.Start, r.Stop
	if r.Descending {
		start, stop = stop, start
	}
	width := stop - start
	if width <= 0 {
		return directPlan{lo: 0, hi: 0}
	}
	width = min(width, period)
	lo := window(coords, period)
	s0 := normalize(start, lo, period)
	last := coords[len(coords)-1]
	switch {
	case s0 > last:
		// the range starts in the gap past the last cell: its cells lie a period lower
		return directPlan{lo: s0 - period, hi: s0 - period + width, descending: r.Descending}
	case s0+width <= lo+period && width < period:
		return directPlan{lo: s0, hi: s0 + width, descending: r.Descending}
	default:
		return rollPlan{to: s0, width: width, descending: r.Descending}
	}
}

func (p directPlan) apply(f *grid.Field, dim string, _ float64) (*grid.Field, error) {
	coords, err := f.Coords(dim)
	if err != nil {
		return nil, err
	}
	var indices []int
	if p.values != nil {
		for _, v := range p.values {
			i := slices.IndexFunc(coords, func(c float64) bool { return mathhelp.Close(c, v) })
			if i < 0 {
				return nil, &AxisError{Dim: dim, Reason: fmt.Sprintf("no coordinate at %v", v)}
			}
			indices = append(indices, i)
		}
		return f.Take(dim, indices)
	}
	for i, c := range coords {
		if c >= p.lo && c < p.hi {
			indices = append(indices, i)
		}
	}
	if p.descending {
		slices.Reverse(indices)
	}
	return f.Take(dim, indices)
}

func (p rollPlan) apply(f *grid.Field, dim string, period float64) (*grid.Field, error) {
	rolled, err := RollTo(f, dim, p.to, period)
	if err != nil {
		return nil, err
	}
	coords, _ := rolled.Coords(dim)
	// the start expressed in the rolled frame, at or just below the first cell
	s0 := coords[0] - mathhelp.FloorMod(coords[0]-p.to, period)
	return directPlan{lo: s0, hi: s0 + p.width, descending: p.descending}.apply(rolled, dim, period)
}

// Select returns the cells of f along the periodic dim picked by selector. The axis must
// be ascending and cover one period; the result keeps the axis ascending unless a
// descending range was asked for.
func Select(f *grid.Field, dim string, selector Selector, period float64) (*grid.Field, error) {
	coords, err := CheckAxis(f, dim, period)
	if err != nil {
		return nil, err
	}
	return selector.plan(coords, period).apply(f, dim, period)
}
