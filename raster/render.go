package raster

import (
	"fmt"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/slippy"
	"github.com/iridl/pingrid/colormap"
	"github.com/iridl/pingrid/geomhelp"
	"github.com/iridl/pingrid/grid"
	"github.com/iridl/pingrid/interp"
	"github.com/iridl/pingrid/mathhelp"
	"github.com/iridl/pingrid/tilegrid"
)

const (
	DefaultLonDim = "lon"
	DefaultLatDim = "lat"
)

type renderConfig struct {
	scheme *tilegrid.Scheme
	lonDim string
	latDim string
	clip   geom.Geometry
}

type RenderOption func(*renderConfig)

// WithScheme selects the tiling scheme. The default is tilegrid.DefaultSchemeID.
func WithScheme(scheme *tilegrid.Scheme) RenderOption {
	return func(c *renderConfig) {
		c.scheme = scheme
	}
}

// WithDims names the longitude and latitude dimensions of the field.
func WithDims(lonDim, latDim string) RenderOption {
	return func(c *renderConfig) {
		c.lonDim = lonDim
		c.latDim = latDim
	}
}

// WithClip hides every pixel whose centre is outside the polygon or multipolygon.
func WithClip(g geom.Geometry) RenderOption {
	return func(c *renderConfig) {
		c.clip = g
	}
}

func newRenderConfig(opts []RenderOption) (*renderConfig, error) {
	c := &renderConfig{lonDim: DefaultLonDim, latDim: DefaultLatDim}
	for _, opt := range opts {
		opt(c)
	}
	if c.scheme == nil {
		scheme, err := tilegrid.LoadEmbeddedScheme(tilegrid.DefaultSchemeID)
		if err != nil {
			return nil, err
		}
		c.scheme = &scheme
	}
	return c, nil
}

// Interpolator builds the interpolator of a 2D field. A field whose longitude cells
// cover a full circle interpolates across the antimeridian, and one whose latitude cells
// cover pole to pole extends its edge rows to the poles.
func Interpolator(f *grid.Field, lonDim, latDim string) (*interp.Interpolator, error) {
	t, planes, err := f.Slices2D(latDim, lonDim)
	if err != nil {
		return nil, err
	}
	if planes != 1 || len(t.Dims) != 2 {
		return nil, fmt.Errorf("field %q has dims %v: select a single %s/%s slice first", f.Name, f.DimNames(), latDim, lonDim)
	}
	lats, lons := t.Dims[0].Coords, t.Dims[1].Coords
	var opts []interp.Option
	if mathhelp.Close(grid.ExtentOf(lonDim, lons, grid.Unknown(lonDim)).Span(), 360) {
		opts = append(opts, interp.WithPeriodX(360))
	}
	if grid.ExtentOf(latDim, lats, grid.Unknown(latDim)).Span() >= 180 {
		opts = append(opts, interp.WithEdgeClampY())
	}
	return interp.New(lons, lats, t.Values, opts...)
}

// RenderTile samples the field at the pixel centres of the tile and colours the samples
// with lut over the field's scale. Missing samples are transparent.
func RenderTile(f *grid.Field, lut *colormap.LUT, addr *slippy.Tile, opts ...RenderOption) (*Tile, error) {
	c, err := newRenderConfig(opts)
	if err != nil {
		return nil, err
	}
	lons, lats, err := c.scheme.PixelCenters(addr)
	if err != nil {
		return nil, err
	}
	var clip []geom.Polygon
	if c.clip != nil {
		if err := geomhelp.Validate(c.clip); err != nil {
			return nil, err
		}
		clip, _ = geomhelp.Polygons(c.clip)
	}
	ip, err := Interpolator(f, c.lonDim, c.latDim)
	if err != nil {
		return nil, err
	}

	values := ip.Grid(lons, lats)
	tile := NewTile(len(lons), len(lats))
	lo, hi := f.Attrs.ScaleMin, f.Attrs.ScaleMax
	for y, lat := range lats {
		for x, lon := range lons {
			col := lut.Apply(values[y*len(lons)+x], lo, hi)
			if clip != nil && !geomhelp.ContainsPoint(clip, [2]float64{lon, lat}) {
				col.A = 0
			}
			tile.Set(x, y, col)
		}
	}
	return tile, nil
}
