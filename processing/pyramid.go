package processing

import (
	"context"
	"fmt"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/slippy"
	"github.com/iridl/pingrid/mathhelp"
	"github.com/iridl/pingrid/morton"
	"github.com/iridl/pingrid/tilegrid"
)

// PyramidSource yields every tile of the zoom levels MinZoom to MaxZoom, zoom by zoom,
// in Z-order within a zoom level. With an Extent only the tiles intersecting it are
// yielded.
type PyramidSource struct {
	Scheme  *tilegrid.Scheme
	MinZoom uint
	MaxZoom uint
	Extent  *geom.Extent
}

func (s PyramidSource) ReadTiles(ctx context.Context, addresses chan<- *slippy.Tile) error {
	defer close(addresses)
	if s.MinZoom > s.MaxZoom || s.MaxZoom > s.Scheme.MaxZoom || s.MinZoom < s.Scheme.MinZoom {
		return fmt.Errorf("zoom levels %d to %d are not within %d to %d of tiling scheme %s",
			s.MinZoom, s.MaxZoom, s.Scheme.MinZoom, s.Scheme.MaxZoom, s.Scheme.ID)
	}
	for z := s.MinZoom; z <= s.MaxZoom; z++ {
		minX, minY, maxX, maxY, ok := s.tileRange(z)
		if !ok {
			continue
		}
		for x, y := range morton.Range(minX, minY, maxX, maxY) {
			select {
			case addresses <- slippy.NewTile(z, x, y):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

func (s PyramidSource) tileRange(z uint) (minX, minY, maxX, maxY uint, ok bool) {
	if s.Extent != nil {
		return s.Scheme.TileRange(z, s.Extent)
	}
	last := mathhelp.Pow2(z) - 1
	return 0, 0, last, last, true
}

// Count returns how many tiles ReadTiles yields.
func (s PyramidSource) Count() uint64 {
	var n uint64
	for z := s.MinZoom; z <= s.MaxZoom; z++ {
		minX, minY, maxX, maxY, ok := s.tileRange(z)
		if ok {
			n += uint64(maxX-minX+1) * uint64(maxY-minY+1)
		}
	}
	return n
}
