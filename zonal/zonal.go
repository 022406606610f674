// Package zonal computes area-weighted means of a gridded field over polygons.
//
// Cells are weighted by their coverage times the cosine of their latitude, so that the
// shrinking of cells towards the poles does not bias the mean. A mean without any
// weighted, non-missing cell is NaN.
package zonal

import (
	"fmt"
	"math"

	"github.com/go-spatial/geom"
	"github.com/iridl/pingrid/geomhelp"
	"github.com/iridl/pingrid/grid"
	"github.com/iridl/pingrid/mathhelp"
)

const (
	DefaultLonDim = "lon"
	DefaultLatDim = "lat"
)

type config struct {
	lonDim     string
	latDim     string
	allTouched bool
}

type Option func(*config)

// WithDims names the longitude and latitude dimensions of the field.
func WithDims(lonDim, latDim string) Option {
	return func(c *config) {
		c.lonDim = lonDim
		c.latDim = latDim
	}
}

// WithAllTouched also counts every cell a polygon boundary passes through.
func WithAllTouched(allTouched bool) Option {
	return func(c *config) {
		c.allTouched = allTouched
	}
}

func newConfig(opts []Option) *config {
	c := &config{lonDim: DefaultLonDim, latDim: DefaultLatDim}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func polygonsOf(g geom.Geometry) ([]geom.Polygon, error) {
	if err := geomhelp.Validate(g); err != nil {
		return nil, err
	}
	return geomhelp.Polygons(g)
}

// step is the signed distance between the first two coordinates of dim.
func step(f *grid.Field, dim string) (float64, error) {
	coords, err := f.Coords(dim)
	if err != nil {
		return 0, err
	}
	if len(coords) < 2 {
		return 0, &grid.DimError{Dim: dim, Reason: fmt.Sprintf("needs at least 2 coordinates to derive a resolution, has %d", len(coords))}
	}
	return coords[1] - coords[0], nil
}

// TrimToBBox keeps the cells within the bounding box of g, grown by one cell on every
// side.
func TrimToBBox(f *grid.Field, g geom.Geometry, opts ...Option) (*grid.Field, error) {
	c := newConfig(opts)
	polygons, err := polygonsOf(g)
	if err != nil {
		return nil, err
	}
	return trim(f, polygons, c)
}

func trim(f *grid.Field, polygons []geom.Polygon, c *config) (*grid.Field, error) {
	bounds, err := geomhelp.Bounds(polygons)
	if err != nil {
		return nil, err
	}
	lonRes, err := step(f, c.lonDim)
	if err != nil {
		return nil, err
	}
	latRes, err := step(f, c.latDim)
	if err != nil {
		return nil, err
	}
	trimmed, err := takeBetween(f, c.lonDim, bounds.MinX()-math.Abs(lonRes), bounds.MaxX()+math.Abs(lonRes))
	if err != nil {
		return nil, err
	}
	return takeBetween(trimmed, c.latDim, bounds.MinY()-math.Abs(latRes), bounds.MaxY()+math.Abs(latRes))
}

func takeBetween(f *grid.Field, dim string, lo, hi float64) (*grid.Field, error) {
	coords, err := f.Coords(dim)
	if err != nil {
		return nil, err
	}
	var indices []int
	for i, v := range coords {
		if mathhelp.BetweenInc(v, lo, hi) {
			indices = append(indices, i)
		}
	}
	return f.Take(dim, indices)
}

// AverageOver returns the weighted mean of f over g for every slice of the non-spatial
// dimensions. The result has those dimensions only.
func AverageOver(f *grid.Field, g geom.Geometry, opts ...Option) (*grid.Field, error) {
	c := newConfig(opts)
	polygons, err := polygonsOf(g)
	if err != nil {
		return nil, err
	}
	lonRes, err := step(f, c.lonDim)
	if err != nil {
		return nil, err
	}
	latRes, err := step(f, c.latDim)
	if err != nil {
		return nil, err
	}
	return average(f, polygons, lonRes, latRes, c)
}

// AverageOverTrimmed is AverageOver on the field trimmed to the bounding box of g.
func AverageOverTrimmed(f *grid.Field, g geom.Geometry, opts ...Option) (*grid.Field, error) {
	c := newConfig(opts)
	polygons, err := polygonsOf(g)
	if err != nil {
		return nil, err
	}
	lonRes, err := step(f, c.lonDim)
	if err != nil {
		return nil, err
	}
	latRes, err := step(f, c.latDim)
	if err != nil {
		return nil, err
	}
	trimmed, err := trim(f, polygons, c)
	if err != nil {
		return nil, err
	}
	// the trimmed axes may be too short to derive a resolution from
	return average(trimmed, polygons, lonRes, latRes, c)
}

// Transform returns the affine of the lat/lon grid of f, with cell i spanning
// [coord_i - step/2, coord_i + step/2). Axes of a single coordinate use the given
// resolutions.
func Transform(lons, lats []float64, lonRes, latRes float64) grid.Affine {
	xExt := grid.ExtentOf(DefaultLonDim, lons, grid.Extent{PointWidth: lonRes})
	yExt := grid.ExtentOf(DefaultLatDim, lats, grid.Extent{PointWidth: latRes})
	return grid.AffineOf(xExt, yExt, len(lons), len(lats))
}

// Weights returns the ny x nx weights of the grid: coverage of the polygons times the
// cosine of the latitude.
func Weights(lons, lats []float64, polygons []geom.Polygon, lonRes, latRes float64, allTouched bool) []float64 {
	nx, ny := len(lons), len(lats)
	if nx == 0 || ny == 0 {
		return nil
	}
	weights := Rasterize(polygons, Transform(lons, lats, lonRes, latRes), nx, ny, allTouched)
	for row, lat := range lats {
		cos := math.Cos(mathhelp.Deg2Rad(lat))
		for col := 0; col < nx; col++ {
			weights[row*nx+col] *= cos
		}
	}
	return weights
}

func average(f *grid.Field, polygons []geom.Polygon, lonRes, latRes float64, c *config) (*grid.Field, error) {
	t, planes, err := f.Slices2D(c.latDim, c.lonDim)
	if err != nil {
		return nil, err
	}
	lons, _ := t.Coords(c.lonDim)
	lats, _ := t.Coords(c.latDim)
	weights := Weights(lons, lats, polygons, lonRes, latRes, c.allTouched)
	size := len(weights)
	means := make([]float64, planes)
	for p := range means {
		if size == 0 {
			means[p] = grid.NoData
			continue
		}
		means[p] = weightedMean(t.Values[p*size:(p+1)*size], weights)
	}
	dims := t.Dims[:len(t.Dims)-2]
	return grid.New(f.Name, append([]grid.Dim(nil), dims...), means, f.Attrs)
}

// weightedMean skips NaN values in both sums. No weight at all gives NaN.
func weightedMean(values, weights []float64) float64 {
	var sum, total float64
	for i, v := range values {
		w := weights[i]
		if w == 0 || math.IsNaN(v) {
			continue
		}
		sum += v * w
		total += w
	}
	if total == 0 {
		return grid.NoData
	}
	return sum / total
}

// PixelPolygon returns the polygon of the grid cell of f that contains (lon, lat), for
// statistics over a single pixel.
func PixelPolygon(f *grid.Field, lon, lat float64, opts ...Option) (geom.Polygon, error) {
	c := newConfig(opts)
	lonRes, err := step(f, c.lonDim)
	if err != nil {
		return nil, err
	}
	latRes, err := step(f, c.latDim)
	if err != nil {
		return nil, err
	}
	lons, _ := f.Coords(c.lonDim)
	lats, _ := f.Coords(c.latDim)
	return geomhelp.CellPolygon(
		[2]float64{lon, lat},
		[2]float64{math.Abs(lonRes), math.Abs(latRes)},
		[2]float64{lons[0], lats[0]},
	), nil
}
