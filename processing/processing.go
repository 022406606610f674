// Package processing takes care of the logistics around rendering many tiles: reading
// addresses from a Source, rendering them concurrently and writing them to a Target.
// Not the rendering itself.
package processing

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/go-spatial/geom/slippy"
	"golang.org/x/sync/errgroup"
)

// RenderTiles renders every address of source with render, using at most workers
// concurrent renders, and hands the tiles to target in completion order. The first
// error stops the whole batch.
func RenderTiles(ctx context.Context, source Source, target Target, render RenderFunc, workers int) error {
	if workers < 1 {
		return fmt.Errorf("need at least 1 worker, got %d", workers)
	}
	addresses := make(chan *slippy.Tile)
	rendered := make(chan RenderedTile)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return target.WriteTiles(ctx, rendered)
	})
	g.Go(func() error {
		return renderTiles(ctx, addresses, rendered, render, workers)
	})
	g.Go(func() error {
		return source.ReadTiles(ctx, addresses)
	})
	return g.Wait()
}

// renderTiles renders the incoming addresses and closes tilesOut when all are done.
func renderTiles(ctx context.Context, addresses <-chan *slippy.Tile, tilesOut chan<- RenderedTile, render RenderFunc, workers int) error {
	defer close(tilesOut)
	var received, renderedCount, emptyCount atomic.Uint64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for addr := range addresses {
		if ctx.Err() != nil {
			break
		}
		received.Add(1)
		g.Go(func() error {
			tile, err := render(ctx, addr)
			if err != nil {
				return fmt.Errorf("tile %d/%d/%d: %w", addr.Z, addr.X, addr.Y, err)
			}
			if tile.CountTransparent() == tile.Width*tile.Height {
				emptyCount.Add(1)
			}
			select {
			case tilesOut <- RenderedTile{Address: addr, Tile: tile}:
			case <-ctx.Done():
				return ctx.Err()
			}
			renderedCount.Add(1)
			return nil
		})
	}
	err := g.Wait()

	log.Printf("    total tiles: %d", received.Load())
	log.Printf("       rendered: %d", renderedCount.Load())
	log.Printf("          empty: %d", emptyCount.Load())
	return err
}
