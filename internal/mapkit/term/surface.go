package term

import (
	"math"

	"github.com/rendis/pinmap/internal/mapkit"
)

const (
	MinZoom = 1
	MaxZoom = 18

	// colsPerTile is how many character columns one 256px map tile spans.
	colsPerTile = 32
)

// Surface is a map drawn on a character grid. Its root visual belongs to at
// most one host at a time; View returns nothing for any other host.
type Surface struct {
	lib    *Library
	center mapkit.LatLng
	zoom   int
	width  int
	height int
	host   string

	listeners map[int]func(mapkit.InteractionEvent)
	nextID    int

	direct     []*Marker // markers placed with SetMap
	clusterers []*Clusterer

	hits []hit // badge areas from the last render
}

type hit struct {
	row, col0, col1 int
	cluster         *mapkit.Cluster
	marker          *Marker
}

func newSurface(lib *Library, opts mapkit.SurfaceOptions) *Surface {
	return &Surface{
		lib:       lib,
		center:    opts.Center,
		zoom:      clampZoom(opts.Zoom),
		listeners: make(map[int]func(mapkit.InteractionEvent)),
	}
}

func clampZoom(z int) int {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

func (s *Surface) Center() mapkit.LatLng {
	return s.center
}

func (s *Surface) Zoom() int {
	return s.zoom
}

func (s *Surface) SetCenter(c mapkit.LatLng) {
	s.center = c
}

func (s *Surface) SetZoom(z int) {
	s.zoom = clampZoom(z)
}

func (s *Surface) FocusOn(center mapkit.LatLng, zoom int) {
	s.center = center
	s.zoom = clampZoom(zoom)
}

func (s *Surface) OnInteraction(fn func(mapkit.InteractionEvent)) func() {
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() { delete(s.listeners, id) }
}

func (s *Surface) Attach(hostID string) {
	s.host = hostID
}

func (s *Surface) Detach() {
	s.host = ""
}

func (s *Surface) Host() string {
	return s.host
}

// SetSize sets the viewport in character cells.
func (s *Surface) SetSize(width, height int) {
	s.width = width
	s.height = height
}

func (s *Surface) Size() (int, int) {
	return s.width, s.height
}

func (s *Surface) emit(ev mapkit.InteractionEvent) {
	for _, fn := range s.listeners {
		fn(ev)
	}
}

// degPerCol is the longitude covered by one column at the current zoom.
func (s *Surface) degPerCol() float64 {
	return 360.0 / math.Pow(2, float64(s.zoom)) / colsPerTile
}

// latPerRow is the latitude covered by one row. A terminal cell is about
// twice as tall as it is wide, and 1° of longitude shrinks with cos(lat).
func (s *Surface) latPerRow() float64 {
	cosLat := math.Cos(s.center.Lat * math.Pi / 180)
	if cosLat < 0.05 {
		cosLat = 0.05
	}
	return 2 * s.degPerCol() * cosLat
}

// Project converts a coordinate to fractional cell coordinates.
func (s *Surface) Project(ll mapkit.LatLng) (x, y float64) {
	x = float64(s.width)/2 + (ll.Lng-s.center.Lng)/s.degPerCol()
	y = float64(s.height)/2 - (ll.Lat-s.center.Lat)/s.latPerRow()
	return x, y
}

// Unproject converts a cell back to a coordinate (cell center).
func (s *Surface) Unproject(col, row int) mapkit.LatLng {
	x := float64(col) + 0.5 - float64(s.width)/2
	y := float64(row) + 0.5 - float64(s.height)/2
	return mapkit.LatLng{
		Lat: s.center.Lat - y*s.latPerRow(),
		Lng: s.center.Lng + x*s.degPerCol(),
	}
}

// Click resolves a click at a cell. A single-marker badge fires that
// marker's click, a multi-marker badge zooms into the cluster, and empty map
// emits an interaction event.
func (s *Surface) Click(col, row int) {
	for i := len(s.hits) - 1; i >= 0; i-- {
		h := s.hits[i]
		if h.row != row || col < h.col0 || col > h.col1 {
			continue
		}
		switch {
		case h.marker != nil:
			h.marker.Click()
		case h.cluster != nil && h.cluster.Count == 1:
			clickMarker(h.cluster.Markers[0])
		case h.cluster != nil:
			s.FocusOn(h.cluster.Position, s.zoom+2)
		}
		return
	}
	s.emit(mapkit.InteractionEvent{Kind: mapkit.InteractionClick, Position: s.Unproject(col, row)})
}

// Drag pans the map by a cell delta, following the pointer.
func (s *Surface) Drag(dCols, dRows int) {
	if dCols == 0 && dRows == 0 {
		return
	}
	s.center.Lng -= float64(dCols) * s.degPerCol()
	s.center.Lat += float64(dRows) * s.latPerRow()
	s.center.Lat = math.Max(-85, math.Min(85, s.center.Lat))
	s.emit(mapkit.InteractionEvent{Kind: mapkit.InteractionDrag, Position: s.center})
}

// Scroll zooms by delta levels.
func (s *Surface) Scroll(delta int) {
	if delta == 0 {
		return
	}
	s.SetZoom(s.zoom + delta)
	s.emit(mapkit.InteractionEvent{Kind: mapkit.InteractionZoom, Position: s.center})
}

func (s *Surface) addDirect(m *Marker) {
	for _, d := range s.direct {
		if d == m {
			return
		}
	}
	s.direct = append(s.direct, m)
}

func (s *Surface) removeDirect(m *Marker) {
	for i, d := range s.direct {
		if d == m {
			s.direct = append(s.direct[:i], s.direct[i+1:]...)
			return
		}
	}
}

func latLng(lat, lng float64) mapkit.LatLng {
	return mapkit.LatLng{Lat: lat, Lng: lng}
}

func clickMarker(m mapkit.Marker) {
	if c, ok := m.(interface{ Click() }); ok {
		c.Click()
	}
}
