package grid

import "math"

// Extent is the span covered by the cells of one axis: Left and Right are the outer cell
// edges, PointWidth the signed step between neighbouring coordinates.
type Extent struct {
	Dim        string
	Left       float64
	Right      float64
	PointWidth float64
}

// Unknown is the default extent used when nothing is known about an axis.
func Unknown(dim string) Extent {
	return Extent{Dim: dim, Left: math.NaN(), Right: math.NaN(), PointWidth: math.NaN()}
}

// ExtentOf derives the extent of the given coordinates. An empty axis has NaN edges, a
// single coordinate takes the width of def.
func ExtentOf(dim string, coords []float64, def Extent) Extent {
	switch n := len(coords); n {
	case 0:
		return Extent{Dim: dim, Left: math.NaN(), Right: math.NaN(), PointWidth: def.PointWidth}
	case 1:
		return Extent{
			Dim:        dim,
			Left:       coords[0] - def.PointWidth/2,
			Right:      coords[0] + def.PointWidth/2,
			PointWidth: def.PointWidth,
		}
	default:
		w := coords[1] - coords[0]
		return Extent{Dim: dim, Left: coords[0] - w/2, Right: coords[n-1] + w/2, PointWidth: w}
	}
}

// Extent of the named axis of f.
func (f *Field) Extent(dim string, def Extent) (Extent, error) {
	coords, err := f.Coords(dim)
	if err != nil {
		return Extent{}, err
	}
	return ExtentOf(dim, coords, def), nil
}

// Min and Max order the edges regardless of axis direction.
func (e Extent) Min() float64 {
	return math.Min(e.Left, e.Right)
}

func (e Extent) Max() float64 {
	return math.Max(e.Left, e.Right)
}

// Span is the absolute distance between the edges.
func (e Extent) Span() float64 {
	return math.Abs(e.Right - e.Left)
}
