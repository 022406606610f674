package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"path/filepath"

	"github.com/carlmjohnson/versioninfo"
	"github.com/fogleman/gg"
	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/slippy"
	"github.com/iancoleman/strcase"
	"github.com/iridl/pingrid/colormap"
	"github.com/iridl/pingrid/engine"
	"github.com/iridl/pingrid/geomhelp"
	"github.com/iridl/pingrid/grid"
	"github.com/iridl/pingrid/processing"
	"github.com/iridl/pingrid/raster"
	"github.com/iridl/pingrid/zonal"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const SCHEME string = `scheme`
const TILESIZE string = `tileSize`
const LONDIM string = `lonDim`
const LATDIM string = `latDim`
const FIELD string = `field`
const CLIP string = `clip`
const POLYGON string = `polygon`
const ALLTOUCHED string = `allTouched`
const SHAPES string = `shapes`
const MODE string = `mode`
const BACKGROUND string = `background`
const ZOOM string = `z`
const COLUMN string = `x`
const ROW string = `y`
const LON string = `lon`
const LAT string = `lat`
const OUT string = `out`
const MINZOOM string = `minZoom`
const MAXZOOM string = `maxZoom`
const WORKERS string = `workers`
const PATTERN string = `pattern`
const METRICSADDR string = `metricsAddr`
const COLORMAP string = `colormap`

func envVars(name string) []string {
	return []string{strcase.ToScreamingSnake("pingrid_" + name)}
}

//nolint:funlen
func main() {
	app := cli.NewApp()
	app.Name = "pingrid"
	app.Usage = "Render gridded fields to map tiles and compute zonal statistics"
	app.Version = versioninfo.Short()

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    SCHEME,
			Usage:   "ID of a (built-in) tiling scheme. E.g.: WebMercatorQuad, EquirectangularQuad",
			Value:   "WebMercatorQuad",
			EnvVars: envVars(SCHEME),
		},
		&cli.UintFlag{
			Name:    TILESIZE,
			Usage:   "Tile size in pixels, overriding the tiling scheme",
			EnvVars: envVars(TILESIZE),
		},
		&cli.StringFlag{
			Name:    LONDIM,
			Usage:   "Name of the longitude dimension of the field",
			Value:   "lon",
			EnvVars: envVars(LONDIM),
		},
		&cli.StringFlag{
			Name:    LATDIM,
			Usage:   "Name of the latitude dimension of the field",
			Value:   "lat",
			EnvVars: envVars(LATDIM),
		},
	}

	fieldFlag := &cli.StringFlag{
		Name:     FIELD,
		Aliases:  []string{"f"},
		Usage:    "Field JSON file: {name, dims: [{name, coords}], values, attrs: {colormap, scale_min, scale_max}}",
		Required: true,
		EnvVars:  envVars(FIELD),
	}
	tileFlags := []cli.Flag{
		&cli.UintFlag{Name: ZOOM, Usage: "Zoom level", Required: true},
		&cli.UintFlag{Name: COLUMN, Usage: "Tile column", Required: true},
		&cli.UintFlag{Name: ROW, Usage: "Tile row", Required: true},
		&cli.StringFlag{Name: OUT, Aliases: []string{"o"}, Usage: "Output PNG", Required: true},
	}

	app.Commands = []*cli.Command{
		{
			Name:  "tile",
			Usage: "Render one tile of a field",
			Flags: append([]cli.Flag{
				fieldFlag,
				&cli.StringFlag{Name: CLIP, Usage: "WKT (multi)polygon outside of which the tile is transparent", EnvVars: envVars(CLIP)},
			}, tileFlags...),
			Action: func(c *cli.Context) error {
				e, err := newEngine(c, false)
				if err != nil {
					return err
				}
				f, err := readField(c.String(FIELD))
				if err != nil {
					return err
				}
				var clip geom.Geometry
				if c.String(CLIP) != "" {
					if clip, err = geomhelp.DecodeWKT(c.String(CLIP)); err != nil {
						return err
					}
				}
				tile, err := e.Tile(c.Context, f, tileAddress(c), clip)
				if err != nil {
					return err
				}
				return savePNG(c.String(OUT), tile)
			},
		},
		{
			Name:  "shapes",
			Usage: "Draw sets of shapes onto one tile",
			Flags: append([]cli.Flag{
				&cli.StringFlag{
					Name:     SHAPES,
					Aliases:  []string{"s"},
					Usage:    `Shapes JSON file: {"sets": [[{"wkt", "line_color", "fill_color", "line_width"}, ...], ...]}`,
					Required: true,
					EnvVars:  envVars(SHAPES),
				},
				&cli.StringFlag{Name: MODE, Usage: "How sets combine: intersection or union", Value: "union", EnvVars: envVars(MODE)},
				&cli.StringFlag{Name: BACKGROUND, Usage: "Colour of the tile the sets are drawn onto, e.g. 0xffffff. Without it the first set starts the tile"},
			}, tileFlags...),
			Action: func(c *cli.Context) error {
				e, err := newEngine(c, false)
				if err != nil {
					return err
				}
				mode, err := raster.ParseCompositeMode(c.String(MODE))
				if err != nil {
					return err
				}
				sets, err := readShapes(c.String(SHAPES))
				if err != nil {
					return err
				}
				var base *raster.Tile
				if c.String(BACKGROUND) != "" {
					palette, err := colormap.Decode(c.String(BACKGROUND))
					if err != nil {
						return err
					}
					scheme := e.Scheme()
					base = raster.Background(int(scheme.TileWidth), int(scheme.TileHeight), palette[0])
				}
				tile, err := e.ShapeTile(base, tileAddress(c), mode, sets...)
				if err != nil {
					return err
				}
				return savePNG(c.String(OUT), tile)
			},
		},
		{
			Name:  "debug",
			Usage: "Render a tile showing its own outline and address",
			Flags: tileFlags,
			Action: func(c *cli.Context) error {
				e, err := newEngine(c, false)
				if err != nil {
					return err
				}
				addr := tileAddress(c)
				scheme := e.Scheme()
				text := fmt.Sprintf("%d/%d/%d", addr.Z, addr.X, addr.Y)
				return savePNG(c.String(OUT), raster.DebugTile(int(scheme.TileWidth), int(scheme.TileHeight), text))
			},
		},
		{
			Name:  "zonal",
			Usage: "Print the area-weighted mean of a field over a polygon, per slice",
			Flags: []cli.Flag{
				fieldFlag,
				&cli.StringFlag{Name: POLYGON, Aliases: []string{"p"}, Usage: "WKT (multi)polygon", Required: true, EnvVars: envVars(POLYGON)},
				&cli.BoolFlag{Name: ALLTOUCHED, Usage: "Count every cell the polygon touches, not only those with their centre inside", EnvVars: envVars(ALLTOUCHED)},
			},
			Action: func(c *cli.Context) error {
				e, err := newEngine(c, false)
				if err != nil {
					return err
				}
				f, err := readField(c.String(FIELD))
				if err != nil {
					return err
				}
				polygon, err := geomhelp.DecodeWKT(c.String(POLYGON))
				if err != nil {
					return err
				}
				result, err := e.Zonal(f, polygon, c.Bool(ALLTOUCHED))
				if err != nil {
					return err
				}
				return writeYAML(c.App.Writer, zonal.ToSeries(result))
			},
		},
		{
			Name:  "pixel",
			Usage: "Print the value of the grid cell at a point, per slice",
			Flags: []cli.Flag{
				fieldFlag,
				&cli.Float64Flag{Name: LON, Usage: "Longitude", Required: true},
				&cli.Float64Flag{Name: LAT, Usage: "Latitude", Required: true},
			},
			Action: func(c *cli.Context) error {
				e, err := newEngine(c, false)
				if err != nil {
					return err
				}
				f, err := readField(c.String(FIELD))
				if err != nil {
					return err
				}
				result, err := e.ZonalPixel(f, c.Float64(LON), c.Float64(LAT))
				if err != nil {
					return err
				}
				return writeYAML(c.App.Writer, zonal.ToSeries(result))
			},
		},
		{
			Name:  "pyramid",
			Usage: "Render all tiles of a range of zoom levels into a directory",
			Flags: []cli.Flag{
				fieldFlag,
				&cli.UintFlag{Name: MINZOOM, Usage: "First zoom level", Value: 0, EnvVars: envVars(MINZOOM)},
				&cli.UintFlag{Name: MAXZOOM, Usage: "Last zoom level", Required: true, EnvVars: envVars(MAXZOOM)},
				&cli.IntFlag{Name: WORKERS, Aliases: []string{"w"}, Usage: "Number of tiles rendered concurrently", Value: 4, EnvVars: envVars(WORKERS)},
				&cli.StringFlag{Name: OUT, Aliases: []string{"o"}, Usage: "Output directory", Required: true, EnvVars: envVars(OUT)},
				&cli.StringFlag{Name: PATTERN, Usage: "Path of a tile in the output directory", Value: processing.DefaultPattern, EnvVars: envVars(PATTERN)},
				&cli.StringFlag{Name: METRICSADDR, Usage: "Serve prometheus metrics on this address while rendering, e.g. :9090", EnvVars: envVars(METRICSADDR)},
			},
			Action: func(c *cli.Context) error {
				e, err := newEngine(c, c.String(METRICSADDR) != "")
				if err != nil {
					return err
				}
				f, err := readField(c.String(FIELD))
				if err != nil {
					return err
				}
				if addr := c.String(METRICSADDR); addr != "" {
					serveMetrics(addr)
				}
				scheme := e.Scheme()
				source := processing.PyramidSource{
					Scheme:  &scheme,
					MinZoom: c.Uint(MINZOOM),
					MaxZoom: c.Uint(MAXZOOM),
					Extent:  fieldExtent(f, c.String(LONDIM), c.String(LATDIM)),
				}
				target := processing.DirTarget{Dir: c.String(OUT), Pattern: c.String(PATTERN)}
				render := func(ctx context.Context, addr *slippy.Tile) (*raster.Tile, error) {
					return e.Tile(ctx, f, addr, nil)
				}

				log.Printf("=== start rendering %d tiles ===", source.Count())
				if err := processing.RenderTiles(c.Context, source, target, render, c.Int(WORKERS)); err != nil {
					return err
				}
				log.Println("=== done rendering ===")
				return nil
			},
		},
		{
			Name:  "colorscale",
			Usage: "Print the colorscale stops of a colormap spec",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: COLORMAP, Aliases: []string{"c"}, Usage: "Colormap spec, e.g. \"0xff0000 [128] 0x0000ff [128]\"", Required: true},
			},
			Action: func(c *cli.Context) error {
				lut, err := colormap.Parse(c.String(COLORMAP))
				if err != nil {
					return err
				}
				return writeYAML(c.App.Writer, lut.Colorscale())
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func newEngine(c *cli.Context, withMetrics bool) (*engine.Engine, error) {
	return engine.New(
		engine.WithScheme(c.String(SCHEME)),
		engine.WithTileSize(c.Uint(TILESIZE)),
		engine.WithDims(c.String(LONDIM), c.String(LATDIM)),
		engine.WithMetrics(withMetrics),
	)
}

func tileAddress(c *cli.Context) *slippy.Tile {
	return slippy.NewTile(c.Uint(ZOOM), c.Uint(COLUMN), c.Uint(ROW))
}

func readField(path string) (*grid.Field, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading field: %w", err)
	}
	var f grid.Field
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error decoding field %s: %w", path, err)
	}
	return &f, nil
}

type shapesFile struct {
	Sets [][]raster.Shape `json:"sets"`
}

func readShapes(path string) ([][]raster.Shape, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading shapes: %w", err)
	}
	var shapes shapesFile
	if err := json.Unmarshal(data, &shapes); err != nil {
		return nil, fmt.Errorf("error decoding shapes %s: %w", path, err)
	}
	return shapes.Sets, nil
}

// fieldExtent is the lon/lat extent of the cells of f, or nil when it is unknown.
func fieldExtent(f *grid.Field, lonDim, latDim string) *geom.Extent {
	lon, err := f.Extent(lonDim, grid.Unknown(lonDim))
	if err != nil {
		return nil
	}
	lat, err := f.Extent(latDim, grid.Unknown(latDim))
	if err != nil {
		return nil
	}
	extent := geom.NewExtent([2]float64{lon.Min(), lat.Min()}, [2]float64{lon.Max(), lat.Max()})
	if math.IsNaN(extent.Area()) || extent.Area() == 0 {
		return nil
	}
	return extent
}

func savePNG(path string, tile *raster.Tile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return gg.SavePNG(path, tile.NRGBA())
}

func writeYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		err := http.ListenAndServe(addr, mux)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server stopped: %s", err)
		}
	}()
}
