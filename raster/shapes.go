package raster

import (
	"fmt"
	"strings"

	"github.com/fogleman/gg"
	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/slippy"
	"github.com/iridl/pingrid/colormap"
	"github.com/iridl/pingrid/geomhelp"
	"github.com/iridl/pingrid/tilegrid"
)

// DrawAttrs says how a shape is drawn. A zero LineWidth or a transparent colour skips
// the outline or the fill.
type DrawAttrs struct {
	LineColor colormap.RGBA
	FillColor colormap.RGBA
	LineWidth float64
}

// Shape is a polygon or multipolygon in lon/lat with its drawing attributes.
type Shape struct {
	Geometry geom.Geometry
	Attrs    DrawAttrs
}

// CompositeMode is how a layer of shapes combines with the tile drawn so far.
type CompositeMode int

const (
	// Intersection keeps pixels that are opaque in both the tile so far and the layer,
	// with the colour of the layer.
	Intersection CompositeMode = iota
	// Union keeps pixels that are opaque in either, the layer drawing on top.
	Union
)

func (m CompositeMode) String() string {
	switch m {
	case Intersection:
		return "intersection"
	case Union:
		return "union"
	default:
		return fmt.Sprintf("CompositeMode(%d)", int(m))
	}
}

func ParseCompositeMode(s string) (CompositeMode, error) {
	switch strings.ToLower(s) {
	case "intersection":
		return Intersection, nil
	case "union":
		return Union, nil
	default:
		return 0, fmt.Errorf("unknown composite mode %q: want intersection or union", s)
	}
}

type compositeFunc func(dst, layer *Tile)

func (m CompositeMode) composite() (compositeFunc, error) {
	switch m {
	case Intersection:
		return intersect, nil
	case Union:
		return unite, nil
	default:
		return nil, fmt.Errorf("unknown composite mode %v", m)
	}
}

func intersect(dst, layer *Tile) {
	for i := 0; i < len(dst.Pix); i += 4 {
		if dst.Pix[i+3] != 0 && layer.Pix[i+3] != 0 {
			copy(dst.Pix[i:i+4], layer.Pix[i:i+4])
		} else {
			dst.Pix[i+3] = 0
		}
	}
}

func unite(dst, layer *Tile) {
	for i := 0; i < len(dst.Pix); i += 4 {
		if layer.Pix[i+3] != 0 {
			copy(dst.Pix[i:i+4], layer.Pix[i:i+4])
		}
	}
}

// DrawShapes draws the shapes, anti-aliased, onto a transparent tile. Rings are filled
// with the even-odd rule so holes stay empty.
func DrawShapes(scheme *tilegrid.Scheme, addr *slippy.Tile, shapes []Shape) (*Tile, error) {
	if err := tilegrid.CheckAddress(addr); err != nil {
		return nil, err
	}
	w, h := int(scheme.TileWidth), int(scheme.TileHeight)
	z := uint(addr.Z)
	project := func(pt [2]float64) (float64, float64) {
		px := (tilegrid.LonToTileX(pt[0], z) - float64(addr.X)) * float64(w)
		py := (scheme.LatToTileY(pt[1], z) - float64(addr.Y)) * float64(h)
		return px, py
	}

	dc := gg.NewContext(w, h)
	dc.SetFillRule(gg.FillRuleEvenOdd)
	for i, shape := range shapes {
		if err := geomhelp.Validate(shape.Geometry); err != nil {
			return nil, fmt.Errorf("shape %d: %w", i, err)
		}
		polygons, _ := geomhelp.Polygons(shape.Geometry)
		for _, p := range polygons {
			for _, ring := range p {
				dc.NewSubPath()
				for _, pt := range ring {
					dc.LineTo(project(pt))
				}
				dc.ClosePath()
			}
		}
		a := shape.Attrs
		if a.FillColor.A != 0 {
			dc.SetRGBA255(int(a.FillColor.R), int(a.FillColor.G), int(a.FillColor.B), int(a.FillColor.A))
			dc.FillPreserve()
		}
		if a.LineWidth > 0 && a.LineColor.A != 0 {
			dc.SetRGBA255(int(a.LineColor.R), int(a.LineColor.G), int(a.LineColor.B), int(a.LineColor.A))
			dc.SetLineWidth(a.LineWidth)
			dc.StrokePreserve()
		}
		dc.ClearPath()
	}
	return FromImage(dc.Image()), nil
}

// ShapeTile draws each set of shapes into its own layer and combines the layers in
// order with mode. Without a base tile the first layer starts the composition.
func ShapeTile(base *Tile, scheme *tilegrid.Scheme, addr *slippy.Tile, mode CompositeMode, sets ...[]Shape) (*Tile, error) {
	combine, err := mode.composite()
	if err != nil {
		return nil, err
	}
	var out *Tile
	if base != nil {
		if base.Width != int(scheme.TileWidth) || base.Height != int(scheme.TileHeight) {
			return nil, fmt.Errorf("base tile is %dx%d, scheme %s draws %dx%d", base.Width, base.Height, scheme.ID, scheme.TileWidth, scheme.TileHeight)
		}
		out = base.Clone()
	}
	for _, shapes := range sets {
		layer, err := DrawShapes(scheme, addr, shapes)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = layer
			continue
		}
		combine(out, layer)
	}
	if out == nil {
		return Background(int(scheme.TileWidth), int(scheme.TileHeight), colormap.Transparent), nil
	}
	return out, nil
}
