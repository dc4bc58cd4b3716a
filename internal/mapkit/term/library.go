// Package term implements the mapkit contract on a character grid: Braille
// basemap, badge markers and screen-cell clustering.
package term

import (
	"context"
	"fmt"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"

	"github.com/rendis/pinmap/internal/mapkit"
)

const (
	defaultCellCols = 6
	defaultCellRows = 3
)

// LoadOptions configures the terminal library.
type LoadOptions struct {
	// Shapefile is an optional ESRI shapefile (coastlines, borders) drawn
	// under the markers. A configured but unreadable file fails the load.
	Shapefile string
	// ClusterCellCols/Rows is the screen area merged into one cluster.
	ClusterCellCols int
	ClusterCellRows int
}

// Library creates terminal map primitives.
type Library struct {
	basemap  orb.MultiLineString
	cellCols int
	cellRows int
}

// Load builds the library, reading the basemap if one is configured.
func Load(ctx context.Context, opts LoadOptions) (*Library, error) {
	lib := &Library{
		cellCols: opts.ClusterCellCols,
		cellRows: opts.ClusterCellRows,
	}
	if lib.cellCols <= 0 {
		lib.cellCols = defaultCellCols
	}
	if lib.cellRows <= 0 {
		lib.cellRows = defaultCellRows
	}

	if opts.Shapefile != "" {
		lines, err := loadShapefile(ctx, opts.Shapefile)
		if err != nil {
			return nil, fmt.Errorf("loading basemap %s: %w", opts.Shapefile, err)
		}
		lib.basemap = lines
	}
	return lib, nil
}

// Loader adapts Load to mapkit.Loader.
func Loader(opts LoadOptions) mapkit.Loader {
	return func(ctx context.Context) (mapkit.Library, error) {
		lib, err := Load(ctx, opts)
		if err != nil {
			return nil, err
		}
		return lib, nil
	}
}

// Basemap returns the loaded basemap lines.
func (l *Library) Basemap() orb.MultiLineString {
	return l.basemap
}

func (l *Library) NewSurface(opts mapkit.SurfaceOptions) mapkit.Surface {
	return newSurface(l, opts)
}

func (l *Library) NewMarker(opts mapkit.MarkerOptions) mapkit.Marker {
	return newMarker(opts)
}

func (l *Library) NewClusterer(s mapkit.Surface, render mapkit.ClusterRenderer) mapkit.Clusterer {
	ts, ok := s.(*Surface)
	if !ok {
		panic(fmt.Sprintf("term: clusterer needs a *term.Surface, got %T", s))
	}
	c := &Clusterer{
		surface:  ts,
		render:   render,
		cellCols: l.cellCols,
		cellRows: l.cellRows,
	}
	ts.clusterers = append(ts.clusterers, c)
	return c
}

// loadShapefile converts every polyline/polygon part into a line string.
func loadShapefile(ctx context.Context, path string) (orb.MultiLineString, error) {
	shape, err := shp.Open(path)
	if err != nil {
		return nil, err
	}
	defer shape.Close()

	var lines orb.MultiLineString
	for shape.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_, p := shape.Shape()

		var points []shp.Point
		var parts []int32
		switch g := p.(type) {
		case *shp.PolyLine:
			points, parts = g.Points, g.Parts
		case *shp.Polygon:
			points, parts = g.Points, g.Parts
		default:
			continue
		}

		for i, start := range parts {
			end := int32(len(points))
			if i+1 < len(parts) {
				end = parts[i+1]
			}
			if start < 0 || end > int32(len(points)) || start >= end {
				continue
			}
			ls := make(orb.LineString, 0, end-start)
			for _, pt := range points[start:end] {
				ls = append(ls, orb.Point{pt.X, pt.Y})
			}
			lines = append(lines, ls)
		}
	}
	if err := shape.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
