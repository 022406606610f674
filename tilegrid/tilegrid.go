// Package tilegrid converts tile addresses of a quad-tree pyramid into the longitudes and
// latitudes that are sampled to render them.
package tilegrid

import (
	"fmt"
	"math"

	"github.com/go-spatial/geom/slippy"
	"github.com/iridl/pingrid/mathhelp"
)

// Projection maps a fractional tile coordinate t at zoom z to degrees.
type Projection func(t float64, z uint) float64

// OutOfRangeError reports a tile column or row outside its zoom level.
type OutOfRangeError struct {
	Axis  string
	Index uint
	Z     uint
}

func (e *OutOfRangeError) Error() string {
	if e.Z > MaxZoom {
		return fmt.Sprintf("zoom %d is out of range: max is %d", e.Z, MaxZoom)
	}
	return fmt.Sprintf("tile %s %d is out of range at zoom %d: must be below %d", e.Axis, e.Index, e.Z, mathhelp.Pow2(e.Z))
}

// MaxZoom keeps 2^z representable in the tile coordinates.
const MaxZoom = 30

// CheckAddress validates 0 <= x, y < 2^z.
func CheckAddress(tile *slippy.Tile) error {
	z := uint(tile.Z)
	if err := checkIndex("x", tile.X, z); err != nil {
		return err
	}
	return checkIndex("y", tile.Y, z)
}

// Lon is the column projection: lon = t*360/2^z - 180.
func Lon(t float64, z uint) float64 {
	return t*360/float64(mathhelp.Pow2(z)) - 180
}

// LatMercator is the inverse Web Mercator row projection: lat = atan(sinh(pi - 2*pi*t/2^z)).
func LatMercator(t float64, z uint) float64 {
	a := math.Pi - 2*math.Pi*t/float64(mathhelp.Pow2(z))
	return mathhelp.Rad2Deg(math.Atan(math.Sinh(a)))
}

// LatEquirectangular is the plain row projection: lat = t*180/2^z - 90.
func LatEquirectangular(t float64, z uint) float64 {
	return t*180/float64(mathhelp.Pow2(z)) - 90
}

// LonToTileX is the inverse of Lon.
func LonToTileX(lon float64, z uint) float64 {
	return (lon + 180) / 360 * float64(mathhelp.Pow2(z))
}

// LatToTileYMercator is the inverse of LatMercator.
func LatToTileYMercator(lat float64, z uint) float64 {
	r := mathhelp.Deg2Rad(lat)
	return (math.Pi - math.Asinh(math.Tan(r))) / (2 * math.Pi) * float64(mathhelp.Pow2(z))
}

// LatToTileYEquirectangular is the inverse of LatEquirectangular.
func LatToTileYEquirectangular(lat float64, z uint) float64 {
	return (lat + 90) / 180 * float64(mathhelp.Pow2(z))
}

func checkIndex(axis string, t, z uint) error {
	if z > MaxZoom || t >= mathhelp.Pow2(z) {
		return &OutOfRangeError{Axis: axis, Index: t, Z: z}
	}
	return nil
}

// Subdivide splits tile column (axis "x") or row (axis "y") t into n intervals of equal
// size in tile space, so that interval i+1 starts exactly where interval i ends.
func Subdivide(axis string, g Projection, t, z, n uint) ([][2]float64, error) {
	if err := checkIndex(axis, t, z); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("cannot subdivide a tile into %d parts", n)
	}
	intervals := make([][2]float64, n)
	a := g(float64(t), z)
	for i := uint(1); i <= n; i++ {
		b := g(float64(t)+float64(i)/float64(n), z)
		intervals[i-1] = [2]float64{a, b}
		a = b
	}
	return intervals, nil
}

// SampleCenters returns the centres of the n intervals of Subdivide, taken in tile space.
// For a non-linear projection these are not the midpoints in degrees.
func SampleCenters(axis string, g Projection, t, z, n uint) ([]float64, error) {
	if err := checkIndex(axis, t, z); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("cannot sample a tile with %d pixels", n)
	}
	centers := make([]float64, n)
	for i := range centers {
		centers[i] = g(float64(t)+(float64(i)+0.5)/float64(n), z)
	}
	return centers, nil
}

// TileLonExtent returns the western and eastern edge of tile column tx.
func TileLonExtent(tx, z uint) (float64, float64, error) {
	ext, err := Subdivide("x", Lon, tx, z, 1)
	if err != nil {
		return math.NaN(), math.NaN(), err
	}
	return ext[0][0], ext[0][1], nil
}

// TileLatExtent returns the northern and southern edge of Web Mercator tile row ty.
func TileLatExtent(ty, z uint) (float64, float64, error) {
	ext, err := Subdivide("y", LatMercator, ty, z, 1)
	if err != nil {
		return math.NaN(), math.NaN(), err
	}
	return ext[0][0], ext[0][1], nil
}
