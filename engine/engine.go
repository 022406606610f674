// Package engine is the entry point for rendering tiles and computing zonal statistics.
//
// An Engine holds what requests share: the tiling scheme, the dimension names and the
// colormap cache. Everything else is passed in per request, and an Engine is safe for
// concurrent use.
package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/slippy"
	"github.com/iridl/pingrid/colormap"
	"github.com/iridl/pingrid/geomhelp"
	"github.com/iridl/pingrid/grid"
	"github.com/iridl/pingrid/metrics"
	"github.com/iridl/pingrid/periodic"
	"github.com/iridl/pingrid/raster"
	"github.com/iridl/pingrid/tilegrid"
	"github.com/iridl/pingrid/zonal"
)

type Config struct {
	SchemeID string `default:"WebMercatorQuad" validate:"required"`
	// Overrides the tile size of the scheme when set
	TileSize  uint   `validate:"omitempty,min=1,max=4096"`
	CacheSize int    `default:"64" validate:"min=1"`
	LonDim    string `default:"lon" validate:"required"`
	LatDim    string `default:"lat" validate:"required,nefield=LonDim"`
	Metrics   bool
}

type Option func(*Config)

func WithScheme(id string) Option {
	return func(c *Config) {
		c.SchemeID = id
	}
}

func WithTileSize(size uint) Option {
	return func(c *Config) {
		c.TileSize = size
	}
}

func WithCacheSize(size int) Option {
	return func(c *Config) {
		c.CacheSize = size
	}
}

func WithDims(lonDim, latDim string) Option {
	return func(c *Config) {
		c.LonDim = lonDim
		c.LatDim = latDim
	}
}

// WithMetrics records renders, statistics and cache lookups in the metrics package.
func WithMetrics(enabled bool) Option {
	return func(c *Config) {
		c.Metrics = enabled
	}
}

type Engine struct {
	config Config
	scheme tilegrid.Scheme
	luts   *colormap.Cache
}

func New(opts ...Option) (*Engine, error) {
	var config Config
	if err := defaults.Set(&config); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(&config)
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	scheme, err := tilegrid.LoadEmbeddedScheme(config.SchemeID)
	if err != nil {
		return nil, err
	}
	if config.TileSize > 0 {
		scheme.TileWidth = config.TileSize
		scheme.TileHeight = config.TileSize
	}

	cacheOpts := []colormap.CacheOption{colormap.WithCacheSize(config.CacheSize)}
	if config.Metrics {
		cacheOpts = append(cacheOpts, colormap.WithLookupObserver(metrics.ObserveColormapLookup))
	}
	luts, err := colormap.NewCache(cacheOpts...)
	if err != nil {
		return nil, err
	}
	return &Engine{config: config, scheme: scheme, luts: luts}, nil
}

func (e *Engine) Scheme() tilegrid.Scheme {
	return e.scheme
}

func (e *Engine) Config() Config {
	return e.config
}

// Colormap returns the decoded LUT of spec, from the cache when possible.
func (e *Engine) Colormap(ctx context.Context, spec string) (*colormap.LUT, error) {
	return e.luts.Get(ctx, spec)
}

// Tile renders a 2D field onto the tile at addr using the colormap and scale of the
// field's attributes. A non-nil clip hides everything outside it.
func (e *Engine) Tile(ctx context.Context, f *grid.Field, addr *slippy.Tile, clip geom.Geometry) (*raster.Tile, error) {
	start := time.Now()
	if err := f.Attrs.Validate(); err != nil {
		return nil, fmt.Errorf("field %q: %w", f.Name, err)
	}
	lut, err := e.Colormap(ctx, f.Attrs.Colormap)
	if err != nil {
		return nil, err
	}
	opts := []raster.RenderOption{raster.WithScheme(&e.scheme), raster.WithDims(e.config.LonDim, e.config.LatDim)}
	if clip != nil {
		opts = append(opts, raster.WithClip(clip))
	}
	tile, err := raster.RenderTile(f, lut, addr, opts...)
	if err != nil {
		return nil, err
	}
	if e.config.Metrics {
		metrics.ObserveRender(metrics.KindData, start)
	}
	return tile, nil
}

// ShapeTile draws sets of shapes onto the tile at addr, combined with mode. base may
// be nil.
func (e *Engine) ShapeTile(base *raster.Tile, addr *slippy.Tile, mode raster.CompositeMode, sets ...[]raster.Shape) (*raster.Tile, error) {
	start := time.Now()
	tile, err := raster.ShapeTile(base, &e.scheme, addr, mode, sets...)
	if err != nil {
		return nil, err
	}
	if e.config.Metrics {
		metrics.ObserveRender(metrics.KindShapes, start)
	}
	return tile, nil
}

// Zonal returns the weighted mean of f over g for every non-spatial slice. When the
// longitudes of g are in another frame than those of a global field, the field is
// first brought into the frame of g.
func (e *Engine) Zonal(f *grid.Field, g geom.Geometry, allTouched bool) (*grid.Field, error) {
	if err := geomhelp.Validate(g); err != nil {
		return nil, err
	}
	polygons, _ := geomhelp.Polygons(g)
	aligned, err := e.alignLongitudes(f, polygons)
	if err != nil {
		return nil, err
	}
	result, err := zonal.AverageOverTrimmed(aligned, g,
		zonal.WithDims(e.config.LonDim, e.config.LatDim),
		zonal.WithAllTouched(allTouched),
	)
	if err != nil {
		return nil, err
	}
	if e.config.Metrics {
		for _, v := range result.Values {
			metrics.ObserveZonal(grid.IsNoData(v))
		}
	}
	return result, nil
}

// ZonalPixel returns the value of every non-spatial slice of f in the cell at (lon, lat).
func (e *Engine) ZonalPixel(f *grid.Field, lon, lat float64) (*grid.Field, error) {
	p, err := zonal.PixelPolygon(f, lon, lat, zonal.WithDims(e.config.LonDim, e.config.LatDim))
	if err != nil {
		return nil, err
	}
	return e.Zonal(f, p, false)
}

// alignLongitudes selects the part of a global field around the polygons, in their
// longitude frame. Regional fields and polygons already in the frame of the field are
// returned as is.
func (e *Engine) alignLongitudes(f *grid.Field, polygons []geom.Polygon) (*grid.Field, error) {
	dim := e.config.LonDim
	coords, err := periodic.CheckAxis(f, dim, periodic.Degrees)
	if err != nil {
		return f, nil
	}
	bounds, err := geomhelp.Bounds(polygons)
	if err != nil {
		return nil, err
	}
	res := coords[1] - coords[0]
	lo := coords[0] - res/2
	if bounds.MinX() >= lo && bounds.MaxX() <= lo+periodic.Degrees {
		return f, nil
	}

	// one cell of margin on each side, as trimming keeps
	start, stop := bounds.MinX()-res, bounds.MaxX()+1.5*res
	var selected *grid.Field
	if stop-start >= periodic.Degrees {
		selected, err = periodic.RollTo(f, dim, start, periodic.Degrees)
	} else {
		selected, err = periodic.Select(f, dim, periodic.Range{Start: start, Stop: stop}, periodic.Degrees)
	}
	if err != nil {
		return nil, err
	}
	first, _ := selected.Coords(dim)
	if len(first) == 0 {
		return selected, nil
	}
	periods := int(math.Round((bounds.MinX() - first[0]) / periodic.Degrees))
	if periods == 0 {
		return selected, nil
	}
	return periodic.Shift(selected, dim, periods, periodic.Degrees)
}
