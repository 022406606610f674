// Package raster produces tile images: colourised data tiles sampled from a grid, vector
// tiles drawn from polygons, and compositions of both.
package raster

import (
	"image"
	"image/color"

	"github.com/iridl/pingrid/colormap"
)

// DefaultTileSize is the width and height of a tile when the tiling scheme does not say.
const DefaultTileSize = 256

// Tile is a raw image with 4 bytes per pixel in blue, green, red, alpha order. Alpha is
// straight, not premultiplied.
type Tile struct {
	Width  int
	Height int
	Pix    []byte
}

func NewTile(width, height int) *Tile {
	return &Tile{Width: width, Height: height, Pix: make([]byte, 4*width*height)}
}

func (t *Tile) offset(x, y int) int {
	return 4 * (y*t.Width + x)
}

func (t *Tile) At(x, y int) colormap.RGBA {
	i := t.offset(x, y)
	return colormap.RGBA{B: t.Pix[i], G: t.Pix[i+1], R: t.Pix[i+2], A: t.Pix[i+3]}
}

func (t *Tile) Set(x, y int, c colormap.RGBA) {
	i := t.offset(x, y)
	t.Pix[i], t.Pix[i+1], t.Pix[i+2], t.Pix[i+3] = c.B, c.G, c.R, c.A
}

// Opaque reports whether pixel (x, y) has any coverage.
func (t *Tile) Opaque(x, y int) bool {
	return t.Pix[t.offset(x, y)+3] != 0
}

// CountTransparent returns the number of pixels with zero alpha.
func (t *Tile) CountTransparent() int {
	n := 0
	for i := 3; i < len(t.Pix); i += 4 {
		if t.Pix[i] == 0 {
			n++
		}
	}
	return n
}

func (t *Tile) Clone() *Tile {
	c := &Tile{Width: t.Width, Height: t.Height, Pix: make([]byte, len(t.Pix))}
	copy(c.Pix, t.Pix)
	return c
}

// NRGBA converts the tile for image encoders.
func (t *Tile) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, t.Width, t.Height))
	for i := 0; i < len(t.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = t.Pix[i+2], t.Pix[i+1], t.Pix[i], t.Pix[i+3]
	}
	return img
}

// FromImage converts any image, typically the premultiplied output of a drawing
// context, into a tile.
func FromImage(img image.Image) *Tile {
	b := img.Bounds()
	t := NewTile(b.Dx(), b.Dy())
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			t.Set(x, y, colormap.RGBA{R: c.R, G: c.G, B: c.B, A: c.A})
		}
	}
	return t
}

// Background returns a tile filled with c.
func Background(width, height int, c colormap.RGBA) *Tile {
	t := NewTile(width, height)
	for i := 0; i < len(t.Pix); i += 4 {
		t.Pix[i], t.Pix[i+1], t.Pix[i+2], t.Pix[i+3] = c.B, c.G, c.R, c.A
	}
	return t
}
