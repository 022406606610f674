package grid

import "math"

// Affine maps cell indices (col, row) to world coordinates:
//
//	x = A*col + B*row + C
//	y = D*col + E*row + F
type Affine struct {
	A, B, C float64
	D, E, F float64
}

// AffineOf builds the transform of a rectilinear cell grid from the extents of its x and y
// axes and their lengths. Cell i spans [coord_i - step/2, coord_i + step/2).
func AffineOf(x, y Extent, nx, ny int) Affine {
	return Affine{
		A: (x.Right - x.Left) / float64(nx), C: x.Left,
		E: (y.Right - y.Left) / float64(ny), F: y.Left,
	}
}

// Apply returns the world coordinates of the fractional cell position (col, row).
func (t Affine) Apply(col, row float64) (float64, float64) {
	return t.A*col + t.B*row + t.C, t.D*col + t.E*row + t.F
}

// Invert returns the fractional cell position of the world point (x, y).
func (t Affine) Invert(x, y float64) (float64, float64) {
	det := t.A*t.E - t.B*t.D
	if det == 0 {
		return math.NaN(), math.NaN()
	}
	dx, dy := x-t.C, y-t.F
	return (t.E*dx - t.B*dy) / det, (t.A*dy - t.D*dx) / det
}

// Cell returns the index of the cell containing (x, y) under the half-open convention.
func (t Affine) Cell(x, y float64) (int, int) {
	col, row := t.Invert(x, y)
	return int(math.Floor(col)), int(math.Floor(row))
}

// CellCenter returns the world coordinates of the centre of cell (col, row).
func (t Affine) CellCenter(col, row int) (float64, float64) {
	return t.Apply(float64(col)+0.5, float64(row)+0.5)
}
