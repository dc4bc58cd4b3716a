package term

import "github.com/rendis/pinmap/internal/mapkit"

// Marker is a map point. It can live in a clusterer or be placed on a
// surface directly (user location, ephemeral search hits).
type Marker struct {
	id       string
	pos      mapkit.LatLng
	glyph    string
	color    string
	surface  *Surface
	handlers []func()
}

func newMarker(opts mapkit.MarkerOptions) *Marker {
	glyph := opts.Glyph
	if glyph == "" {
		glyph = "●"
	}
	return &Marker{id: opts.ID, pos: opts.Position, glyph: glyph, color: opts.Color}
}

func (m *Marker) ID() string {
	return m.id
}

func (m *Marker) Position() mapkit.LatLng {
	return m.pos
}

func (m *Marker) SetPosition(p mapkit.LatLng) {
	m.pos = p
}

func (m *Marker) SetMap(s mapkit.Surface) {
	if m.surface != nil {
		m.surface.removeDirect(m)
		m.surface = nil
	}
	ts, ok := s.(*Surface)
	if !ok || ts == nil {
		return
	}
	m.surface = ts
	ts.addDirect(m)
}

func (m *Marker) OnClick(fn func()) {
	m.handlers = append(m.handlers, fn)
}

// Click fires the marker's click handlers.
func (m *Marker) Click() {
	for _, fn := range m.handlers {
		fn()
	}
}
