package engine

import (
	"context"
	"testing"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/slippy"
	"github.com/iridl/pingrid/colormap"
	"github.com/iridl/pingrid/grid"
	"github.com/iridl/pingrid/metrics"
	"github.com/iridl/pingrid/raster"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(x0, y0, x1, y1 float64) geom.Polygon {
	return geom.Polygon{{{x0, y0}, {x0, y1}, {x1, y1}, {x1, y0}, {x0, y0}}}
}

// global 10 degree field with value lon/10 + lat
func globalField(t *testing.T) *grid.Field {
	t.Helper()
	var lons, lats, values []float64
	for lon := 0.0; lon < 360; lon += 10 {
		lons = append(lons, lon)
	}
	for lat := -80.0; lat <= 80; lat += 10 {
		lats = append(lats, lat)
	}
	for _, lat := range lats {
		for _, lon := range lons {
			values = append(values, lon/10+lat)
		}
	}
	f, err := grid.New("global", []grid.Dim{{Name: "lat", Coords: lats}, {Name: "lon", Coords: lons}}, values,
		grid.Attributes{Colormap: "0 [256]", ScaleMin: 0, ScaleMax: 20})
	require.NoError(t, err)
	return f
}

func TestNew(t *testing.T) {
	e, err := New()
	require.NoError(t, err)
	assert.Equal(t, "WebMercatorQuad", e.Scheme().ID)
	assert.Equal(t, uint(256), e.Scheme().TileWidth)
	assert.Equal(t, 64, e.Config().CacheSize)
	assert.Equal(t, "lon", e.Config().LonDim)

	e, err = New(WithScheme("EquirectangularQuad"), WithTileSize(64))
	require.NoError(t, err)
	assert.Equal(t, uint(64), e.Scheme().TileHeight)

	tests := []struct {
		name string
		opt  Option
	}{
		{name: "unknown scheme", opt: WithScheme("nope")},
		{name: "empty scheme", opt: WithScheme("")},
		{name: "huge tiles", opt: WithTileSize(5000)},
		{name: "no cache", opt: WithCacheSize(0)},
		{name: "same dims", opt: WithDims("lon", "lon")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opt)
			assert.Error(t, err)
		})
	}
}

func TestTileUniformBlack(t *testing.T) {
	e, err := New(WithMetrics(true))
	require.NoError(t, err)
	f, err := grid.New("test", []grid.Dim{
		{Name: "lat", Coords: []float64{-45, 0, 45, 90}},
		{Name: "lon", Coords: []float64{0, 90, 180, 270}},
	}, []float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10},
		grid.Attributes{Colormap: "0 [256]", ScaleMin: 0, ScaleMax: 20})
	require.NoError(t, err)

	rendered := testutil.ToFloat64(metrics.TilesRendered.WithLabelValues(metrics.KindData))
	hits := testutil.ToFloat64(metrics.ColormapCache.WithLabelValues("hit"))

	for i := 0; i < 2; i++ {
		tile, err := e.Tile(context.Background(), f, slippy.NewTile(0, 0, 0), nil)
		require.NoError(t, err)
		assert.Equal(t, 0, tile.CountTransparent())
		assert.Equal(t, colormap.RGBA{A: 255}, tile.At(17, 201))
	}
	assert.Equal(t, rendered+2, testutil.ToFloat64(metrics.TilesRendered.WithLabelValues(metrics.KindData)))
	assert.Equal(t, hits+1, testutil.ToFloat64(metrics.ColormapCache.WithLabelValues("hit")))
}

func TestTileErrors(t *testing.T) {
	e, err := New(WithTileSize(16))
	require.NoError(t, err)
	f := globalField(t)

	tile, err := e.Tile(context.Background(), f, slippy.NewTile(1, 1, 1), box(0, -80, 170, 0))
	require.NoError(t, err)
	assert.Equal(t, 16, tile.Width)

	bad := *f
	bad.Attrs.Colormap = ""
	_, err = e.Tile(context.Background(), &bad, slippy.NewTile(0, 0, 0), nil)
	assert.Error(t, err)

	bad.Attrs.Colormap = "[1]"
	_, err = e.Tile(context.Background(), &bad, slippy.NewTile(0, 0, 0), nil)
	var parseErr *colormap.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestShapeTile(t *testing.T) {
	e, err := New(WithMetrics(true))
	require.NoError(t, err)
	red := colormap.RGBA{R: 255, A: 255}
	before := testutil.ToFloat64(metrics.TilesRendered.WithLabelValues(metrics.KindShapes))

	tile, err := e.ShapeTile(nil, slippy.NewTile(0, 0, 0), raster.Union,
		[]raster.Shape{{Geometry: box(-180, -80, 0, 80), Attrs: raster.DrawAttrs{FillColor: red}}})
	require.NoError(t, err)
	assert.Equal(t, red, tile.At(32, 128))
	assert.False(t, tile.Opaque(224, 128))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.TilesRendered.WithLabelValues(metrics.KindShapes)))
}

func TestZonalAcrossFrames(t *testing.T) {
	e, err := New()
	require.NoError(t, err)
	f := globalField(t)

	tests := []struct {
		name  string
		shift float64
	}{
		{name: "negative", shift: 0},
		{name: "field frame", shift: 360},
		{name: "two periods up", shift: 720},
		{name: "one period down", shift: -360},
	}
	var want float64
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// crosses the antimeridian of the field
			p := box(-15+tt.shift, -15, 15+tt.shift, 25)
			result, err := e.Zonal(f, p, false)
			require.NoError(t, err)
			require.Len(t, result.Values, 1)
			got := result.Values[0]
			assert.False(t, grid.IsNoData(got))
			if i == 0 {
				want = got
				return
			}
			assert.InDelta(t, want, got, 1e-9)
		})
	}
}

func TestZonalKnownValue(t *testing.T) {
	e, err := New(WithMetrics(true))
	require.NoError(t, err)
	before := testutil.ToFloat64(metrics.ZonalResults.WithLabelValues("value"))

	// cells at lon 350 and 0, lat 0: values 35 and 0
	result, err := e.Zonal(globalField(t), box(-15, -5, 5, 5), false)
	require.NoError(t, err)
	assert.InDelta(t, 17.5, result.Values[0], 1e-9)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ZonalResults.WithLabelValues("value")))
}

func TestAlignLongitudesKeepsFieldFrame(t *testing.T) {
	e, err := New()
	require.NoError(t, err)
	f := globalField(t)
	aligned, err := e.alignLongitudes(f, []geom.Polygon{box(100, 0, 120, 10)})
	require.NoError(t, err)
	assert.Same(t, f, aligned)

	regional, err := grid.New("regional", []grid.Dim{
		{Name: "lat", Coords: []float64{0, 1}},
		{Name: "lon", Coords: []float64{0, 1}},
	}, make([]float64, 4), f.Attrs)
	require.NoError(t, err)
	aligned, err = e.alignLongitudes(regional, []geom.Polygon{box(-100, 0, -90, 1)})
	require.NoError(t, err)
	assert.Same(t, regional, aligned)
}

func TestZonalPixel(t *testing.T) {
	e, err := New()
	require.NoError(t, err)
	result, err := e.ZonalPixel(globalField(t), 123, 41)
	require.NoError(t, err)
	assert.InDelta(t, 52, result.Values[0], 1e-9)
}
