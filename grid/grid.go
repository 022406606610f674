// Package grid holds the GriddedField: an N-dimensional array of measurements keyed by
// named coordinate axes, plus the rendering attributes that travel with it.
//
// A Field is treated as an immutable request-scoped snapshot. Every operation returns a
// new Field and never writes into the receiver's backing arrays.
package grid

import (
	"fmt"
	"math"
	"slices"

	"github.com/go-playground/validator/v10"
)

// NoData marks a missing value inside Values and inside results derived from them.
var NoData = math.NaN()

func IsNoData(v float64) bool {
	return math.IsNaN(v)
}

// Dim is a named coordinate axis.
type Dim struct {
	Name   string    `json:"name" validate:"required"`
	Coords []float64 `json:"coords"`
}

// Attributes are the rendering attributes of a field.
type Attributes struct {
	// Colormap is the palette spec, see package colormap
	Colormap string  `json:"colormap" validate:"required"`
	ScaleMin float64 `json:"scale_min"`
	ScaleMax float64 `json:"scale_max" validate:"gtfield=ScaleMin"`
	// Extra keeps attributes this package does not interpret
	Extra map[string]any `json:"-"`
}

func (a Attributes) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(a)
}

// DimError reports a missing or malformed axis.
type DimError struct {
	Dim    string
	Reason string
}

func (e *DimError) Error() string {
	return fmt.Sprintf("dimension %q: %s", e.Dim, e.Reason)
}

// Field is an N-dimensional array stored row-major: the last dim varies fastest.
type Field struct {
	Name   string
	Dims   []Dim
	Values []float64
	Attrs  Attributes
}

// New returns a Field after checking that dims are unique and that values fit the shape.
func New(name string, dims []Dim, values []float64, attrs Attributes) (*Field, error) {
	seen := make(map[string]struct{}, len(dims))
	size := 1
	for _, d := range dims {
		if d.Name == "" {
			return nil, &DimError{Reason: "unnamed dimension"}
		}
		if _, dup := seen[d.Name]; dup {
			return nil, &DimError{Dim: d.Name, Reason: "duplicate dimension"}
		}
		seen[d.Name] = struct{}{}
		size *= len(d.Coords)
	}
	if len(values) != size {
		return nil, fmt.Errorf("field %q: %d values do not fit shape %v", name, len(values), shapeOf(dims))
	}
	return &Field{Name: name, Dims: dims, Values: values, Attrs: attrs}, nil
}

func shapeOf(dims []Dim) []int {
	shape := make([]int, len(dims))
	for i, d := range dims {
		shape[i] = len(d.Coords)
	}
	return shape
}

func (f *Field) Shape() []int {
	return shapeOf(f.Dims)
}

func (f *Field) strides() []int {
	strides := make([]int, len(f.Dims))
	s := 1
	for i := len(f.Dims) - 1; i >= 0; i-- {
		strides[i] = s
		s *= len(f.Dims[i].Coords)
	}
	return strides
}

func (f *Field) DimIndex(name string) (int, error) {
	for i, d := range f.Dims {
		if d.Name == name {
			return i, nil
		}
	}
	return -1, &DimError{Dim: name, Reason: fmt.Sprintf("not found in field %q", f.Name)}
}

func (f *Field) Coords(name string) ([]float64, error) {
	i, err := f.DimIndex(name)
	if err != nil {
		return nil, err
	}
	return f.Dims[i].Coords, nil
}

func (f *Field) DimNames() []string {
	names := make([]string, len(f.Dims))
	for i, d := range f.Dims {
		names[i] = d.Name
	}
	return names
}

// At returns the value at the given index per dim.
func (f *Field) At(index ...int) float64 {
	offset := 0
	for i, s := range f.strides() {
		offset += index[i] * s
	}
	return f.Values[offset]
}

func (f *Field) copyDims() []Dim {
	dims := make([]Dim, len(f.Dims))
	copy(dims, f.Dims)
	return dims
}

// Take gathers the given positions along dim, in order. Indices may repeat.
func (f *Field) Take(dim string, indices []int) (*Field, error) {
	axis, err := f.DimIndex(dim)
	if err != nil {
		return nil, err
	}
	n := len(f.Dims[axis].Coords)
	coords := make([]float64, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= n {
			return nil, &DimError{Dim: dim, Reason: fmt.Sprintf("index %d out of range [0, %d)", idx, n)}
		}
		coords[i] = f.Dims[axis].Coords[idx]
	}

	shape := f.Shape()
	outer := 1
	for _, s := range shape[:axis] {
		outer *= s
	}
	inner := 1
	for _, s := range shape[axis+1:] {
		inner *= s
	}
	values := make([]float64, 0, outer*len(indices)*inner)
	for o := 0; o < outer; o++ {
		block := f.Values[o*n*inner : (o+1)*n*inner]
		for _, idx := range indices {
			values = append(values, block[idx*inner:(idx+1)*inner]...)
		}
	}

	dims := f.copyDims()
	dims[axis] = Dim{Name: dim, Coords: coords}
	return &Field{Name: f.Name, Dims: dims, Values: values, Attrs: f.Attrs}, nil
}

// Isel selects a single position along dim and drops the dim.
func (f *Field) Isel(dim string, index int) (*Field, error) {
	taken, err := f.Take(dim, []int{index})
	if err != nil {
		return nil, err
	}
	axis, _ := taken.DimIndex(dim)
	taken.Dims = slices.Delete(taken.Dims, axis, axis+1)
	return taken, nil
}

// WithCoords returns a field sharing f's values with new coordinate labels for dim.
func (f *Field) WithCoords(dim string, coords []float64) (*Field, error) {
	axis, err := f.DimIndex(dim)
	if err != nil {
		return nil, err
	}
	if len(coords) != len(f.Dims[axis].Coords) {
		return nil, &DimError{Dim: dim, Reason: fmt.Sprintf("%d coords for an axis of length %d", len(coords), len(f.Dims[axis].Coords))}
	}
	dims := f.copyDims()
	dims[axis] = Dim{Name: dim, Coords: coords}
	return &Field{Name: f.Name, Dims: dims, Values: f.Values, Attrs: f.Attrs}, nil
}

// Transpose reorders the dims. order must be a permutation of f's dim names.
func (f *Field) Transpose(order ...string) (*Field, error) {
	if len(order) != len(f.Dims) {
		return nil, fmt.Errorf("transpose of field %q: got %d dims, want %d", f.Name, len(order), len(f.Dims))
	}
	perm := make([]int, len(order))
	used := make([]bool, len(order))
	for i, name := range order {
		axis, err := f.DimIndex(name)
		if err != nil {
			return nil, err
		}
		if used[axis] {
			return nil, &DimError{Dim: name, Reason: "repeated in transpose order"}
		}
		used[axis] = true
		perm[i] = axis
	}
	if slices.IsSorted(perm) {
		return f, nil
	}

	srcStrides := f.strides()
	dims := make([]Dim, len(perm))
	for i, axis := range perm {
		dims[i] = f.Dims[axis]
	}
	out := &Field{Name: f.Name, Dims: dims, Attrs: f.Attrs}
	shape := out.Shape()
	values := make([]float64, len(f.Values))
	index := make([]int, len(shape))
	for k := range values {
		offset := 0
		for i, idx := range index {
			offset += idx * srcStrides[perm[i]]
		}
		values[k] = f.Values[offset]
		// odometer increment, last dim fastest
		for i := len(index) - 1; i >= 0; i-- {
			index[i]++
			if index[i] < shape[i] {
				break
			}
			index[i] = 0
		}
	}
	out.Values = values
	return out, nil
}

// Slices2D moves ydim and xdim to the end and returns the field together with the
// number of 2D planes. Plane p occupies Values[p*ny*nx : (p+1)*ny*nx], rows along ydim.
func (f *Field) Slices2D(ydim, xdim string) (*Field, int, error) {
	for _, dim := range []string{ydim, xdim} {
		if _, err := f.DimIndex(dim); err != nil {
			return nil, 0, err
		}
	}
	order := make([]string, 0, len(f.Dims))
	for _, d := range f.Dims {
		if d.Name != ydim && d.Name != xdim {
			order = append(order, d.Name)
		}
	}
	order = append(order, ydim, xdim)
	t, err := f.Transpose(order...)
	if err != nil {
		return nil, 0, err
	}
	planes := 1
	for _, d := range t.Dims[:len(t.Dims)-2] {
		planes *= len(d.Coords)
	}
	return t, planes, nil
}
