package processing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"github.com/go-spatial/geom/slippy"
)

// DefaultPattern lays out tiles as <dir>/{z}/{x}/{y}.png.
const DefaultPattern = "{z}/{x}/{y}.png"

// DirTarget writes tiles as PNG files under Dir, at the path Pattern with {z}, {x} and
// {y} filled in.
type DirTarget struct {
	Dir     string
	Pattern string
}

func (t DirTarget) Path(addr *slippy.Tile) string {
	pattern := t.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	r := strings.NewReplacer(
		"{z}", strconv.FormatUint(uint64(addr.Z), 10),
		"{x}", strconv.FormatUint(uint64(addr.X), 10),
		"{y}", strconv.FormatUint(uint64(addr.Y), 10),
	)
	return filepath.Join(t.Dir, r.Replace(pattern))
}

func (t DirTarget) WriteTiles(_ context.Context, tiles <-chan RenderedTile) error {
	for rendered := range tiles {
		p := t.Path(rendered.Address)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
		if err := gg.SavePNG(p, rendered.Tile.NRGBA()); err != nil {
			return fmt.Errorf("writing %s: %w", p, err)
		}
	}
	return nil
}
