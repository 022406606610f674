// Package interp resamples a 2D grid onto arbitrary sample coordinates with bilinear
// interpolation. Source axes may be ascending or descending and irregularly spaced.
package interp

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/iridl/pingrid/mapslicehelp"
	"github.com/iridl/pingrid/mathhelp"
)

// Interpolator samples a grid of values[iy*len(xs)+ix]. Samples outside the cells of the
// grid are NaN, as are samples that draw any weight from a NaN cell.
type Interpolator struct {
	xs, ys  []float64
	values  []float64
	periodX float64
	clampY  bool
}

type Option func(*Interpolator)

// WithPeriodX makes the x axis cyclic with the given period: a sample between the last
// and the first coordinate interpolates across the seam.
func WithPeriodX(period float64) Option {
	return func(ip *Interpolator) {
		ip.periodX = period
	}
}

// WithEdgeClampY gives samples beyond the first or last row the value of that row.
func WithEdgeClampY() Option {
	return func(ip *Interpolator) {
		ip.clampY = true
	}
}

// position of a sample on one axis: value = (1-t)*v[i0] + t*v[i1]
type position struct {
	i0, i1 int
	t      float64
	ok     bool
}

func New(xs, ys, values []float64, opts ...Option) (*Interpolator, error) {
	if len(xs) == 0 || len(ys) == 0 {
		return nil, errors.New("cannot interpolate an empty grid")
	}
	if len(values) != len(xs)*len(ys) {
		return nil, fmt.Errorf("%d values do not fit a %dx%d grid", len(values), len(ys), len(xs))
	}
	ip := &Interpolator{xs: xs, ys: ys, values: values}
	for _, opt := range opts {
		opt(ip)
	}

	nx := len(xs)
	if descending(xs) {
		ip.xs = mapslicehelp.ReverseClone(xs)
		reversed := make([]float64, len(values))
		for row := 0; row < len(ys); row++ {
			copy(reversed[row*nx:(row+1)*nx], mapslicehelp.ReverseClone(values[row*nx:(row+1)*nx]))
		}
		ip.values = reversed
	}
	if descending(ys) {
		ip.ys = mapslicehelp.ReverseClone(ys)
		reversed := make([]float64, len(values))
		ny := len(ys)
		for row := 0; row < ny; row++ {
			copy(reversed[(ny-1-row)*nx:(ny-row)*nx], ip.values[row*nx:(row+1)*nx])
		}
		ip.values = reversed
	}
	if !slices.IsSorted(ip.xs) || !slices.IsSorted(ip.ys) {
		return nil, errors.New("axes must be monotonic")
	}
	if ip.periodX > 0 && ip.xs[nx-1]-ip.xs[0] >= ip.periodX {
		return nil, fmt.Errorf("x axis spans %v, which does not fit in period %v", ip.xs[nx-1]-ip.xs[0], ip.periodX)
	}
	return ip, nil
}

func descending(a []float64) bool {
	return len(a) > 1 && a[0] > a[len(a)-1]
}

// locate finds q on the ascending axis a. Samples within half a cell of the first or last
// coordinate take the edge value.
func locate(a []float64, q float64, clamp bool) position {
	n := len(a)
	if math.IsNaN(q) {
		return position{}
	}
	if q <= a[0] {
		if q == a[0] || clamp || (n > 1 && a[0]-q <= (a[1]-a[0])/2) {
			return position{ok: true}
		}
		return position{}
	}
	if q >= a[n-1] {
		if q == a[n-1] || clamp || (n > 1 && q-a[n-1] <= (a[n-1]-a[n-2])/2) {
			return position{i0: n - 1, i1: n - 1, ok: true}
		}
		return position{}
	}
	i := sort.SearchFloat64s(a, q)
	// a[i-1] < q <= a[i]
	return position{i0: i - 1, i1: i, t: (q - a[i-1]) / (a[i] - a[i-1]), ok: true}
}

func (ip *Interpolator) locateX(q float64) position {
	if ip.periodX <= 0 {
		return locate(ip.xs, q, false)
	}
	n := len(ip.xs)
	q = mathhelp.FloorMod(q-ip.xs[0], ip.periodX) + ip.xs[0]
	if q <= ip.xs[n-1] {
		return locate(ip.xs, q, false)
	}
	// across the seam between the last and the first coordinate
	wrapped := ip.xs[0] + ip.periodX
	return position{i0: n - 1, i1: 0, t: (q - ip.xs[n-1]) / (wrapped - ip.xs[n-1]), ok: true}
}

func (ip *Interpolator) locateY(q float64) position {
	return locate(ip.ys, q, ip.clampY)
}

func (ip *Interpolator) sample(px, py position) float64 {
	if !px.ok || !py.ok {
		return math.NaN()
	}
	nx := len(ip.xs)
	corners := [4]struct {
		w   float64
		idx int
	}{
		{(1 - px.t) * (1 - py.t), py.i0*nx + px.i0},
		{px.t * (1 - py.t), py.i0*nx + px.i1},
		{(1 - px.t) * py.t, py.i1*nx + px.i0},
		{px.t * py.t, py.i1*nx + px.i1},
	}
	v := 0.
	for _, c := range corners {
		if c.w == 0 {
			continue
		}
		cv := ip.values[c.idx]
		if math.IsNaN(cv) {
			return math.NaN()
		}
		v += c.w * cv
	}
	return v
}

// At returns the interpolated value at (x, y).
func (ip *Interpolator) At(x, y float64) float64 {
	return ip.sample(ip.locateX(x), ip.locateY(y))
}

// Grid samples every combination of xs and ys. The result has len(ys) rows of len(xs).
func (ip *Interpolator) Grid(xs, ys []float64) []float64 {
	pxs := make([]position, len(xs))
	for i, x := range xs {
		pxs[i] = ip.locateX(x)
	}
	out := make([]float64, 0, len(xs)*len(ys))
	for _, y := range ys {
		py := ip.locateY(y)
		for _, px := range pxs {
			out = append(out, ip.sample(px, py))
		}
	}
	return out
}
