package processing

import (
	"context"

	"github.com/go-spatial/geom/slippy"
	"github.com/iridl/pingrid/raster"
)

type RenderedTile struct {
	Address *slippy.Tile
	Tile    *raster.Tile
}

// Source sends the addresses of the tiles to render and closes the channel when done,
// also when ctx is cancelled.
type Source interface {
	ReadTiles(ctx context.Context, addresses chan<- *slippy.Tile) error
}

// Target consumes rendered tiles until the channel is closed.
type Target interface {
	WriteTiles(ctx context.Context, tiles <-chan RenderedTile) error
}

type RenderFunc func(ctx context.Context, addr *slippy.Tile) (*raster.Tile, error)
