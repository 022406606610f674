package zonal

import (
	"math"

	"github.com/go-spatial/geom"
	"github.com/iridl/pingrid/geomhelp"
	"github.com/iridl/pingrid/grid"
	"github.com/iridl/pingrid/mathhelp"
)

// Rasterize burns the polygons into an ny x nx coverage mask laid out by t. A cell is
// covered when its centre is inside a polygon, boundary included. With allTouched every
// cell that a ring passes through is covered as well.
func Rasterize(polygons []geom.Polygon, t grid.Affine, nx, ny int, allTouched bool) []float64 {
	mask := make([]float64, nx*ny)
	for row := 0; row < ny; row++ {
		for col := 0; col < nx; col++ {
			cx, cy := t.CellCenter(col, row)
			if geomhelp.ContainsPoint(polygons, [2]float64{cx, cy}) {
				mask[row*nx+col] = 1
			}
		}
	}
	if !allTouched {
		return mask
	}
	for _, p := range polygons {
		for _, ring := range p {
			for i := 0; i+1 < len(ring); i++ {
				burnSegment(mask, t, nx, ny, ring[i], ring[i+1])
			}
		}
	}
	return mask
}

// burnSegment covers the cells whose closed rectangle meets the segment a-b.
func burnSegment(mask []float64, t grid.Affine, nx, ny int, a, b [2]float64) {
	ca, ra := t.Invert(a[0], a[1])
	cb, rb := t.Invert(b[0], b[1])
	if math.IsNaN(ca + ra + cb + rb) {
		return
	}
	col0 := mathhelp.Clamp(int(math.Floor(math.Min(ca, cb))), 0, nx-1)
	col1 := mathhelp.Clamp(int(math.Floor(math.Max(ca, cb))), 0, nx-1)
	row0 := mathhelp.Clamp(int(math.Floor(math.Min(ra, rb))), 0, ny-1)
	row1 := mathhelp.Clamp(int(math.Floor(math.Max(ra, rb))), 0, ny-1)
	for row := row0; row <= row1; row++ {
		for col := col0; col <= col1; col++ {
			// work in cell space, where every cell is a unit square
			if segmentTouchesRect(ca, ra, cb, rb, float64(col), float64(row), float64(col+1), float64(row+1)) {
				mask[row*nx+col] = 1
			}
		}
	}
}

// segmentTouchesRect clips the segment (x0, y0)-(x1, y1) to the rectangle with
// Liang-Barsky. Touching an edge or a corner counts.
func segmentTouchesRect(x0, y0, x1, y1, minX, minY, maxX, maxY float64) bool {
	dx, dy := x1-x0, y1-y0
	tMin, tMax := 0., 1.
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > tMax {
				return false
			}
			tMin = math.Max(tMin, r)
		} else {
			if r < tMin {
				return false
			}
			tMax = math.Min(tMax, r)
		}
		return true
	}
	return clip(-dx, x0-minX) && clip(dx, maxX-x0) && clip(-dy, y0-minY) && clip(dy, maxY-y0) && tMin <= tMax
}
