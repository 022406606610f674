package raster

import (
	"github.com/fogleman/gg"
)

// DebugTile draws a tile that shows its own outline, diagonals and a label, for checking
// tile placement in a map client.
func DebugTile(width, height int, text string) *Tile {
	w, h := float64(width), float64(height)
	dc := gg.NewContext(width, height)
	dc.SetLineWidth(1)

	dc.SetRGBA255(255, 0, 0, 255)
	dc.DrawEllipse(w/2, h/2, w/3, h/3)
	dc.Stroke()
	if text != "" {
		dc.DrawStringAnchored(text, w/2, h/2, 0, 1)
	}

	dc.SetRGBA255(0, 255, 0, 255)
	dc.DrawRectangle(0.5, 0.5, w-1, h-1)
	dc.Stroke()

	dc.SetRGBA255(0, 0, 255, 255)
	dc.DrawLine(0, 0, w-1, h-1)
	dc.DrawLine(0, h-1, w-1, 0)
	dc.Stroke()

	return FromImage(dc.Image())
}
