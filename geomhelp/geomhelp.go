package geomhelp

import (
	"fmt"
	"math"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/wkt"
	"github.com/go-spatial/geom/planar"
	"github.com/muesli/reflow/truncate"
)

const errorWktWidth = 120

// GeometryError reports a polygon that cannot be used as a clip or averaging region.
// Geometries are never repaired.
type GeometryError struct {
	Reason   string
	Geometry geom.Geometry
}

func (e *GeometryError) Error() string {
	if e.Geometry == nil {
		return "invalid geometry: " + e.Reason
	}
	return fmt.Sprintf("invalid geometry: %s: %s", e.Reason, describe(e.Geometry))
}

// describe renders g as truncated WKT, falling back to its Go representation when the
// geometry is too broken to encode.
func describe(g geom.Geometry) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = truncate.StringWithTail(fmt.Sprintf("%v", g), errorWktWidth, "...")
		}
	}()
	return WktMustEncode(g, errorWktWidth)
}

// Polygons flattens a Polygon or MultiPolygon into its polygons.
func Polygons(g geom.Geometry) ([]geom.Polygon, error) {
	switch g := g.(type) {
	case geom.Polygon:
		return []geom.Polygon{g}, nil
	case *geom.Polygon:
		return []geom.Polygon{*g}, nil
	case geom.MultiPolygon:
		polygons := make([]geom.Polygon, len(g))
		for i := range g {
			polygons[i] = g[i]
		}
		return polygons, nil
	case *geom.MultiPolygon:
		return Polygons(*g)
	default:
		return nil, &GeometryError{Reason: fmt.Sprintf("expected a polygon or multipolygon, got %T", g)}
	}
}

// Validate checks that every ring is closed, has at least 3 distinct vertices and
// does not cross itself.
func Validate(g geom.Geometry) error {
	polygons, err := Polygons(g)
	if err != nil {
		return err
	}
	if len(polygons) == 0 {
		return &GeometryError{Reason: "empty geometry", Geometry: g}
	}
	for _, p := range polygons {
		if len(p) == 0 {
			return &GeometryError{Reason: "polygon without rings", Geometry: g}
		}
		for ringIdx, ring := range p {
			if err := validateRing(ring); err != nil {
				return &GeometryError{Reason: fmt.Sprintf("ring %d: %s", ringIdx, err), Geometry: g}
			}
		}
	}
	return nil
}

func validateRing(ring [][2]float64) error {
	n := len(ring)
	if n < 4 {
		return fmt.Errorf("needs at least 4 points, has %d", n)
	}
	if ring[0] != ring[n-1] {
		return fmt.Errorf("not closed: %v != %v", ring[0], ring[n-1])
	}
	for _, pt := range ring {
		if math.IsNaN(pt[0]) || math.IsNaN(pt[1]) || math.IsInf(pt[0], 0) || math.IsInf(pt[1], 0) {
			return fmt.Errorf("non-finite vertex %v", pt)
		}
	}
	segments := n - 1
	for i := 0; i < segments; i++ {
		l1 := geom.Line{ring[i], ring[i+1]}
		for j := i + 2; j < segments; j++ {
			if i == 0 && j == segments-1 {
				// first and last segment share the closing vertex
				continue
			}
			l2 := geom.Line{ring[j], ring[j+1]}
			if _, intersects := planar.SegmentIntersect(l1, l2); intersects {
				return fmt.Errorf("self-intersection between segments %d and %d", i, j)
			}
		}
	}
	if Shoelace(ring[:n-1]) == 0 {
		return fmt.Errorf("zero area")
	}
	return nil
}

// CloseRings returns a copy of p in which each ring ends with its first vertex.
func CloseRings(p geom.Polygon) geom.Polygon {
	closed := make(geom.Polygon, len(p))
	for i, ring := range p {
		c := make([][2]float64, len(ring), len(ring)+1)
		copy(c, ring)
		if len(c) > 0 && c[0] != c[len(c)-1] {
			c = append(c, c[0])
		}
		closed[i] = c
	}
	return closed
}

// ContainsPoint reports whether pt lies inside any of the polygons.
// Points on an outer or inner ring count as inside.
func ContainsPoint(polygons []geom.Polygon, pt [2]float64) bool {
	for _, p := range polygons {
		if polygonContains(p, pt) {
			return true
		}
	}
	return false
}

func polygonContains(p geom.Polygon, pt [2]float64) bool {
	if len(p) == 0 {
		return false
	}
	in, on := ringContains(p[0], pt)
	if on {
		return true
	}
	if !in {
		return false
	}
	for _, hole := range p[1:] {
		in, on := ringContains(hole, pt)
		if on {
			return true
		}
		if in {
			return false
		}
	}
	return true
}

// ringContains is RingContains from paulmach/orb, also reporting boundary hits.
func ringContains(ring [][2]float64, pt [2]float64) (in, on bool) {
	n := len(ring)
	if n < 3 {
		return false, false
	}
	c, on := RayIntersect(pt, ring[0], ring[n-1])
	if on {
		return false, true
	}
	for i := 0; i < n-1; i++ {
		inter, on := RayIntersect(pt, ring[i], ring[i+1])
		if on {
			return false, true
		}
		if inter {
			c = !c
		}
	}
	return c, false
}

// Bounds returns the bounding box of the polygons.
func Bounds(polygons []geom.Polygon) (*geom.Extent, error) {
	mp := make(geom.MultiPolygon, len(polygons))
	for i := range polygons {
		mp[i] = polygons[i]
	}
	extent, err := geom.NewExtentFromGeometry(mp)
	if err != nil {
		return nil, &GeometryError{Reason: err.Error(), Geometry: mp}
	}
	return extent, nil
}

// CellPolygon returns the square grid cell of size res, aligned on origin, that
// contains pt. Cells are centred on origin + k*res.
func CellPolygon(pt, res, origin [2]float64) geom.Polygon {
	cx := math.Floor((pt[0]-origin[0]+res[0]/2)/res[0])*res[0] + origin[0]
	cy := math.Floor((pt[1]-origin[1]+res[1]/2)/res[1])*res[1] + origin[1]
	x0, x1 := cx-res[0]/2, cx+res[0]/2
	y0, y1 := cy-res[1]/2, cy+res[1]/2
	return geom.Polygon{{{x0, y0}, {x0, y1}, {x1, y1}, {x1, y0}, {x0, y0}}}
}

// https://en.wikipedia.org/wiki/Shoelace_formula
func Shoelace(pts [][2]float64) float64 {
	sum := 0.
	if len(pts) == 0 {
		return 0.
	}

	p0 := pts[len(pts)-1]
	for _, p1 := range pts {
		sum += p0[1]*p1[0] - p0[0]*p1[1]
		p0 = p1
	}
	return math.Abs(sum / 2)
}

// from paulmach/orb
// Adapted from http://rosettacode.org/wiki/Ray-casting_algorithm#Go
//
//nolint:cyclop,nestif
func RayIntersect(pt, start, end [2]float64) (intersects, on bool) {
	if start[0] > end[0] {
		start, end = end, start
	}

	if pt[0] == start[0] {
		if pt[1] == start[1] {
			// pt == start
			return false, true
		} else if start[0] == end[0] {
			// vertical segment (start -> end)
			// return true if within the line, check to see if start or end is greater.
			if start[1] > end[1] && start[1] >= pt[1] && pt[1] >= end[1] {
				return false, true
			}

			if end[1] > start[1] && end[1] >= pt[1] && pt[1] >= start[1] {
				return false, true
			}
		}

		// Move the y coordinate to deal with degenerate case
		pt[0] = math.Nextafter(pt[0], math.Inf(1))
	} else if pt[0] == end[0] {
		if pt[1] == end[1] {
			// matching the end point
			return false, true
		}

		pt[0] = math.Nextafter(pt[0], math.Inf(1))
	}

	if pt[0] < start[0] || pt[0] > end[0] {
		return false, false
	}

	if start[1] > end[1] {
		if pt[1] > start[1] {
			return false, false
		} else if pt[1] < end[1] {
			return true, false
		}
	} else {
		if pt[1] > end[1] {
			return false, false
		} else if pt[1] < start[1] {
			return true, false
		}
	}

	rs := (pt[1] - start[1]) / (pt[0] - start[0])
	ds := (end[1] - start[1]) / (end[0] - start[0])

	if rs == ds {
		return false, true
	}

	return rs <= ds, false
}

func WktMustEncode(g geom.Geometry, maxLen uint) string {
	if maxLen == 0 {
		return wkt.MustEncode(g)
	}
	return truncate.StringWithTail(wkt.MustEncode(g), maxLen, "...")
}

// DecodeWKT decodes a POLYGON or MULTIPOLYGON and closes its rings.
func DecodeWKT(s string) (geom.Geometry, error) {
	g, err := wkt.DecodeString(s)
	if err != nil {
		return nil, &GeometryError{Reason: fmt.Sprintf("decoding WKT %q: %v", truncate.StringWithTail(s, errorWktWidth, "..."), err)}
	}
	polygons, err := Polygons(g)
	if err != nil {
		return nil, err
	}
	for i := range polygons {
		polygons[i] = CloseRings(polygons[i])
	}
	switch g.(type) {
	case geom.Polygon, *geom.Polygon:
		return polygons[0], nil
	}
	mp := make(geom.MultiPolygon, len(polygons))
	for i := range polygons {
		mp[i] = polygons[i]
	}
	return mp, nil
}
