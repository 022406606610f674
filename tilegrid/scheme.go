package tilegrid

import (
	"embed"
	"encoding/json"
	"fmt"
	"math"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/slippy"
	"github.com/iridl/pingrid/mathhelp"
	"github.com/perimeterx/marshmallow"
)

// DefaultSchemeID is used when a caller does not name a tiling scheme.
const DefaultSchemeID = "WebMercatorQuad"

var (
	//go:embed schemes/*.json
	embeddedSchemesJSONFS embed.FS
	embeddedSchemesCache  = make(map[string]*Scheme)
	embeddedSchemesMu     sync.Mutex
)

// RowProjection names the formula that turns a tile row into a latitude.
// It must stay an alias: marshmallow leaves fields of named string types unset.
type RowProjection = string

const (
	RowMercator        RowProjection = "mercator"
	RowEquirectangular RowProjection = "equirectangular"
)

// Scheme describes a quad-tree tiling: how tile rows map to latitudes, the tile size
// in pixels and the zoom levels a client may request.
type Scheme struct {
	// Scheme identifier, as requested by the map client
	ID          string `validate:"required" json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	// Reference to an official source for this scheme
	URI string `validate:"omitempty,uri" json:"uri,omitempty"`
	// Coordinate Reference System (CRS) of the rendered images
	CRS           string        `validate:"required" json:"crs"`
	RowProjection RowProjection `validate:"required,oneof=mercator equirectangular" json:"rowProjection"`
	TileWidth     uint          `default:"256" validate:"min=1,max=4096" json:"tileWidth"`
	TileHeight    uint          `default:"256" validate:"min=1,max=4096" json:"tileHeight"`
	MinZoom       uint          `json:"minZoom"`
	MaxZoom       uint          `default:"24" validate:"gtefield=MinZoom,max=30" json:"maxZoom"`
	// Keys this package does not interpret
	Extra map[string]interface{} `json:"-"`
}

func (s *Scheme) UnmarshalJSON(data []byte) error {
	err := defaults.Set(s)
	if err != nil {
		return err
	}

	extra, err := marshmallow.Unmarshal(data, s, marshmallow.WithExcludeKnownFieldsFromMap(true))
	if err != nil {
		return err
	}
	if len(extra) > 0 {
		s.Extra = extra
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	return validate.Struct(s)
}

// LoadEmbeddedScheme returns one of the schemes shipped with this package.
func LoadEmbeddedScheme(id string) (Scheme, error) {
	var scheme Scheme
	embeddedSchemesMu.Lock()
	defer embeddedSchemesMu.Unlock()
	cached, ok := embeddedSchemesCache[id]
	if ok {
		return *cached, nil
	}
	schemeJSON, err := embeddedSchemesJSONFS.ReadFile("schemes/" + id + ".json")
	if err != nil {
		return scheme, fmt.Errorf("unknown tiling scheme %q (known: %s): %w", id, strings.Join(EmbeddedSchemeIDs(), ", "), err)
	}
	err = json.Unmarshal(schemeJSON, &scheme)
	if err != nil {
		return scheme, fmt.Errorf("tiling scheme %q: %w", id, err)
	}
	embeddedSchemesCache[id] = &scheme
	return scheme, nil
}

// EmbeddedSchemeIDs lists the ids accepted by LoadEmbeddedScheme.
func EmbeddedSchemeIDs() []string {
	entries, err := embeddedSchemesJSONFS.ReadDir("schemes")
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())))
	}
	sort.Strings(ids)
	return ids
}

// Rows returns the row projection of the scheme.
func (s *Scheme) Rows() Projection {
	if s.RowProjection == RowEquirectangular {
		return LatEquirectangular
	}
	return LatMercator
}

// LatToTileY is the inverse of Rows.
func (s *Scheme) LatToTileY(lat float64, z uint) float64 {
	if s.RowProjection == RowEquirectangular {
		return LatToTileYEquirectangular(lat, z)
	}
	return LatToTileYMercator(lat, z)
}

func (s *Scheme) checkTile(tile *slippy.Tile) error {
	z := uint(tile.Z)
	if z < s.MinZoom || z > s.MaxZoom {
		return &OutOfRangeError{Axis: "zoom", Index: z, Z: z}
	}
	return CheckAddress(tile)
}

// PixelCenters returns the longitudes of the pixel columns and the latitudes of the
// pixel rows of a tile, both in image order.
func (s *Scheme) PixelCenters(tile *slippy.Tile) (lons, lats []float64, err error) {
	if err = s.checkTile(tile); err != nil {
		return nil, nil, err
	}
	z := uint(tile.Z)
	lons, err = SampleCenters("x", Lon, tile.X, z, s.TileWidth)
	if err != nil {
		return nil, nil, err
	}
	lats, err = SampleCenters("y", s.Rows(), tile.Y, z, s.TileHeight)
	if err != nil {
		return nil, nil, err
	}
	return lons, lats, nil
}

// Bounds returns the lon/lat extent of a tile.
func (s *Scheme) Bounds(tile *slippy.Tile) (*geom.Extent, error) {
	if err := s.checkTile(tile); err != nil {
		return nil, err
	}
	z := uint(tile.Z)
	lon0, lon1 := Lon(float64(tile.X), z), Lon(float64(tile.X+1), z)
	lat0, lat1 := s.Rows()(float64(tile.Y), z), s.Rows()(float64(tile.Y+1), z)
	return &geom.Extent{lon0, math.Min(lat0, lat1), lon1, math.Max(lat0, lat1)}, nil
}

// TileAt returns the tile at zoom z that contains the point (lon, lat).
func (s *Scheme) TileAt(z uint, lon, lat float64) (*slippy.Tile, bool) {
	if z < s.MinZoom || z > s.MaxZoom {
		return nil, false
	}
	x := math.Floor(LonToTileX(lon, z))
	y := math.Floor(s.LatToTileY(lat, z))
	n := float64(mathhelp.Pow2(z))
	if math.IsNaN(x) || math.IsNaN(y) || x < 0 || y < 0 || x >= n || y >= n {
		return nil, false
	}
	return slippy.NewTile(z, uint(x), uint(y)), true
}

// TileRange returns the inclusive column and row ranges of the tiles at zoom z that
// intersect the extent. ok is false when no tile does.
func (s *Scheme) TileRange(z uint, extent *geom.Extent) (minX, minY, maxX, maxY uint, ok bool) {
	if z < s.MinZoom || z > s.MaxZoom || z > MaxZoom {
		return 0, 0, 0, 0, false
	}
	last := float64(mathhelp.Pow2(z) - 1)
	clampTile := func(t float64) float64 {
		return mathhelp.Clamp(math.Floor(t), 0, last)
	}
	x0, x1 := LonToTileX(extent.MinX(), z), LonToTileX(extent.MaxX(), z)
	y0, y1 := s.LatToTileY(extent.MinY(), z), s.LatToTileY(extent.MaxY(), z)
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if x1 < 0 || x0 > last+1 || y1 < 0 || y0 > last+1 || math.IsNaN(x0+x1+y0+y1) {
		return 0, 0, 0, 0, false
	}
	return uint(clampTile(x0)), uint(clampTile(y0)), uint(clampTile(x1)), uint(clampTile(y1)), true
}
