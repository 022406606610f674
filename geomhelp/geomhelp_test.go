package geomhelp

import (
	"errors"
	"testing"

	"github.com/go-spatial/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var square = geom.Polygon{{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}}}

func TestShoelace(t *testing.T) {
	var tests = []struct {
		pts  [][2]float64
		area float64
	}{
		// Rectangle
		0: {pts: [][2]float64{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}}, area: float64(100)},
		// Triangle
		1: {pts: [][2]float64{{0, 0}, {5, 10}, {0, 10}, {0, 0}}, area: float64(25)},
		// Missing 'official closing point
		2: {pts: [][2]float64{{0, 0}, {0, 10}, {10, 10}, {10, 0}}, area: float64(100)},
		// Single point
		3: {pts: [][2]float64{{1234, 4321}}, area: float64(0.000000)},
		// No point
		4: {pts: nil, area: float64(0.000000)},
	}

	for k, test := range tests {
		area := Shoelace(test.pts)
		if area != test.area {
			t.Errorf("test: %d, expected: %f \ngot: %f", k, test.area, area)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		geom    geom.Geometry
		wantErr bool
		reason  string
	}{
		{name: "square", geom: square},
		{name: "square pointer", geom: &square},
		{name: "square with hole", geom: geom.Polygon{
			{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}},
			{{2, 2}, {8, 2}, {8, 8}, {2, 8}, {2, 2}},
		}},
		{name: "multipolygon", geom: geom.MultiPolygon{
			{{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}},
			{{{5, 5}, {5, 6}, {6, 6}, {6, 5}, {5, 5}}},
		}},
		{name: "open ring", geom: geom.Polygon{{{0, 0}, {0, 10}, {10, 10}, {10, 0}}}, wantErr: true},
		{name: "too few points", geom: geom.Polygon{{{0, 0}, {0, 10}, {0, 0}}}, wantErr: true},
		{name: "bow tie", geom: geom.Polygon{{{0, 0}, {10, 10}, {10, 0}, {0, 10}, {0, 0}}}, wantErr: true, reason: "self-intersection"},
		{name: "collapsed", geom: geom.Polygon{{{0, 0}, {5, 5}, {10, 10}, {0, 0}}}, wantErr: true, reason: "zero area"},
		{name: "empty multipolygon", geom: geom.MultiPolygon{}, wantErr: true},
		{name: "not a polygon", geom: geom.Point{1, 2}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.geom)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var geometryError *GeometryError
			assert.True(t, errors.As(err, &geometryError))
			assert.Contains(t, err.Error(), "invalid geometry")
			if tt.reason != "" {
				assert.Contains(t, err.Error(), tt.reason)
			}
		})
	}
}

func TestContainsPoint(t *testing.T) {
	donut := geom.Polygon{
		{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}},
		{{2, 2}, {8, 2}, {8, 8}, {2, 8}, {2, 2}},
	}
	tests := []struct {
		name string
		pt   [2]float64
		want bool
	}{
		{name: "inside ring", pt: [2]float64{1, 1}, want: true},
		{name: "inside hole", pt: [2]float64{5, 5}, want: false},
		{name: "outside", pt: [2]float64{11, 5}, want: false},
		{name: "outer boundary", pt: [2]float64{0, 5}, want: true},
		{name: "outer corner", pt: [2]float64{10, 10}, want: true},
		{name: "top edge", pt: [2]float64{5, 10}, want: true},
		{name: "hole boundary", pt: [2]float64{2, 5}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsPoint([]geom.Polygon{donut}, tt.pt))
		})
	}
}

func TestCloseRings(t *testing.T) {
	open := geom.Polygon{{{0, 0}, {0, 10}, {10, 10}, {10, 0}}}
	closed := CloseRings(open)
	assert.Equal(t, square, closed)
	assert.Len(t, open[0], 4, "input must not be modified")
	assert.Equal(t, square, CloseRings(square))
}

func TestBounds(t *testing.T) {
	polygons, err := Polygons(geom.MultiPolygon{
		{{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}},
		{{{5, -5}, {5, 6}, {6, 6}, {6, -5}, {5, -5}}},
	})
	require.NoError(t, err)
	extent, err := Bounds(polygons)
	require.NoError(t, err)
	assert.Equal(t, 0.0, extent.MinX())
	assert.Equal(t, -5.0, extent.MinY())
	assert.Equal(t, 6.0, extent.MaxX())
	assert.Equal(t, 6.0, extent.MaxY())
}

func TestCellPolygon(t *testing.T) {
	got := CellPolygon([2]float64{1.2, 3.9}, [2]float64{1, 0.5}, [2]float64{0, 0})
	assert.Equal(t, geom.Polygon{{{0.5, 3.75}, {0.5, 4.25}, {1.5, 4.25}, {1.5, 3.75}, {0.5, 3.75}}}, got)
	require.NoError(t, Validate(got))
}

func TestDecodeWKT(t *testing.T) {
	g, err := DecodeWKT("POLYGON ((0 0, 0 1, 1 1, 1 0, 0 0))")
	require.NoError(t, err)
	p, ok := g.(geom.Polygon)
	require.True(t, ok)
	require.Len(t, p, 1)
	assert.Equal(t, p[0][0], p[0][len(p[0])-1])
	assert.NoError(t, Validate(g))

	g, err = DecodeWKT("MULTIPOLYGON (((0 0, 0 1, 1 1, 0 0)), ((5 5, 5 6, 6 6, 5 5)))")
	require.NoError(t, err)
	mp, ok := g.(geom.MultiPolygon)
	require.True(t, ok)
	assert.Len(t, mp, 2)

	_, err = DecodeWKT("POLYGON ((0 0, 0 1")
	var geometryErr *GeometryError
	assert.True(t, errors.As(err, &geometryErr))

	_, err = DecodeWKT("POINT (1 2)")
	assert.True(t, errors.As(err, &geometryErr))
}
