package raster

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/iridl/pingrid/colormap"
	"github.com/iridl/pingrid/geomhelp"
)

type shapeJSON struct {
	WKT       string  `json:"wkt" validate:"required"`
	LineColor string  `json:"line_color"`
	FillColor string  `json:"fill_color"`
	LineWidth float64 `json:"line_width" validate:"gte=0"`
}

// UnmarshalJSON decodes {"wkt": ..., "line_color": ..., "fill_color": ..., "line_width": ...}.
// Colours are single colormap tokens such as "0xff0000" or "null"; a missing colour is
// transparent.
func (s *Shape) UnmarshalJSON(data []byte) error {
	var raw shapeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := validator.New().Struct(raw); err != nil {
		return err
	}
	g, err := geomhelp.DecodeWKT(raw.WKT)
	if err != nil {
		return err
	}
	line, err := parseColor(raw.LineColor)
	if err != nil {
		return err
	}
	fill, err := parseColor(raw.FillColor)
	if err != nil {
		return err
	}
	*s = Shape{Geometry: g, Attrs: DrawAttrs{LineColor: line, FillColor: fill, LineWidth: raw.LineWidth}}
	return nil
}

func parseColor(spec string) (colormap.RGBA, error) {
	if spec == "" {
		return colormap.Transparent, nil
	}
	palette, err := colormap.Decode(spec)
	if err != nil {
		return colormap.RGBA{}, err
	}
	if len(palette) != 1 {
		return colormap.RGBA{}, fmt.Errorf("colour %q: want a single colour, got %d", spec, len(palette))
	}
	return palette[0], nil
}

func (m CompositeMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *CompositeMode) UnmarshalText(text []byte) error {
	mode, err := ParseCompositeMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
