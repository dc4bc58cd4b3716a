package selection

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/pinmap/internal/engine/sheet"
	"github.com/rendis/pinmap/internal/model"
)

type fakeMap struct {
	focus     []model.LatLng
	zooms     []int
	ephemeral map[string]model.LatLng
}

func (m *fakeMap) FocusOn(pos model.LatLng, zoom int) {
	m.focus = append(m.focus, pos)
	m.zooms = append(m.zooms, zoom)
}

func (m *fakeMap) ShowEphemeral(id string, pos model.LatLng) func() {
	m.ephemeral[id] = pos
	return func() { delete(m.ephemeral, id) }
}

type fakeSheet struct{ snaps []sheet.Snap }

func (s *fakeSheet) SnapTo(sn sheet.Snap) { s.snaps = append(s.snaps, sn) }

type fakeSearch struct{ cleared int }

func (s *fakeSearch) ClearSearch() { s.cleared++ }

var (
	cafe = model.Place{ID: "cafe", Name: "Cafe", Lat: 37.5665, Lng: 126.9780}
	park = model.Place{ID: "park", Name: "Park", Lat: 35.1796, Lng: 129.0756}
)

func newCoordinator(t *testing.T) (*Coordinator, *fakeMap, *fakeSheet, *fakeSearch) {
	t.Helper()
	m := &fakeMap{ephemeral: make(map[string]model.LatLng)}
	sh := &fakeSheet{}
	se := &fakeSearch{}
	catalog := map[string]model.Place{cafe.ID: cafe, park.ID: park}
	c := NewCoordinator(Deps{
		Map:    m,
		Sheet:  sh,
		Search: se,
		Lookup: func(id string) (model.Place, bool) {
			p, ok := catalog[id]
			return p, ok
		},
		Stats: func(id string) model.PlaceStats {
			if id == cafe.ID {
				return model.PlaceStats{PostCount: 4, TotalLikes: 9}
			}
			return model.PlaceStats{}
		},
		User: func() model.LatLng { return cafe.Location() },
	})
	return c, m, sh, se
}

func TestSelectCatalogPlace(t *testing.T) {
	c, m, sh, se := newCoordinator(t)
	c.Preview(park)

	var events []model.BannerPlace
	c.OnSelect(func(b model.BannerPlace) { events = append(events, b) })

	c.SelectCatalogPlace(park)

	b, ok := c.Banner()
	require.True(t, ok)
	assert.Equal(t, model.BannerRegistered, b.Kind)
	assert.Equal(t, "park", b.ID())
	assert.InDelta(t, 325, b.Place.Distance, 5)

	_, ok = c.Card()
	assert.False(t, ok, "selecting clears the preview card")

	assert.Equal(t, []model.LatLng{park.Location()}, m.focus)
	assert.Equal(t, []int{FocusZoom}, m.zooms)
	assert.Equal(t, []sheet.Snap{sheet.Peek}, sh.snaps)
	assert.Equal(t, 1, se.cleared)
	require.Len(t, events, 1)
	assert.Equal(t, "park", events[0].ID())
}

func TestSelectCatalogPlaceCarriesStats(t *testing.T) {
	c, _, _, _ := newCoordinator(t)
	c.SelectCatalogPlace(cafe)
	b, _ := c.Banner()
	assert.Equal(t, 4, b.Stats.PostCount)
	assert.Zero(t, b.Place.Distance)
}

func TestSelectExternalPlaceReplacesEphemeral(t *testing.T) {
	c, m, sh, se := newCoordinator(t)
	first := model.SearchResult{ID: "r1", Name: "Tower", Lat: 37.55, Lng: 126.98}
	second := model.SearchResult{ID: "r2", Name: "Bridge", Lat: 37.51, Lng: 126.99}

	c.SelectExternalPlace(first)
	c.SelectExternalPlace(second)

	require.Len(t, m.ephemeral, 1)
	for id, pos := range m.ephemeral {
		assert.True(t, strings.HasPrefix(id, "search-"))
		assert.Equal(t, model.LatLng{Lat: 37.51, Lng: 126.99}, pos)
	}

	b, ok := c.Banner()
	require.True(t, ok)
	assert.Equal(t, model.BannerUnregistered, b.Kind)
	assert.Equal(t, "Bridge", b.Name())
	assert.Len(t, m.focus, 2)
	assert.Empty(t, sh.snaps)
	assert.Equal(t, 2, se.cleared)
}

func TestCatalogSelectionDropsEphemeral(t *testing.T) {
	c, m, _, _ := newCoordinator(t)
	c.SelectExternalPlace(model.SearchResult{ID: "r1", Lat: 1, Lng: 2})
	c.SelectCatalogPlace(cafe)
	assert.Empty(t, m.ephemeral)
}

func TestCloseBannerIsIdempotent(t *testing.T) {
	c, m, _, _ := newCoordinator(t)
	c.SelectExternalPlace(model.SearchResult{ID: "r1", Lat: 1, Lng: 2})

	c.CloseBanner()
	c.CloseBanner()

	_, ok := c.Banner()
	assert.False(t, ok)
	assert.Empty(t, m.ephemeral)
}

func TestHandleMarkerClick(t *testing.T) {
	c, _, _, _ := newCoordinator(t)
	assert.False(t, c.HandleMarkerClick("missing"))
	_, ok := c.Banner()
	assert.False(t, ok)

	assert.True(t, c.HandleMarkerClick("cafe"))
	b, _ := c.Banner()
	assert.Equal(t, "Cafe", b.Name())
}

func TestMarkerClicksThroughBus(t *testing.T) {
	c, _, _, _ := newCoordinator(t)
	bus := NewBus()
	unsubscribe := bus.SubscribeAll(func(id string) { c.HandleMarkerClick(id) })

	bus.Emit("park")
	b, _ := c.Banner()
	assert.Equal(t, "park", b.ID())

	unsubscribe()
	c.CloseBanner()
	bus.Emit("cafe")
	_, ok := c.Banner()
	assert.False(t, ok)
}

func TestPreview(t *testing.T) {
	c, _, _, _ := newCoordinator(t)
	c.Preview(park)
	card, ok := c.Card()
	require.True(t, ok)
	assert.Equal(t, "park", card.ID)
	_, ok = c.Banner()
	assert.False(t, ok)
}

func TestZeroDepsDoNotPanic(t *testing.T) {
	c := NewCoordinator(Deps{})
	assert.NotPanics(t, func() {
		c.SelectCatalogPlace(cafe)
		c.SelectExternalPlace(model.SearchResult{ID: "r"})
		c.CloseBanner()
		c.HandleMarkerClick("cafe")
	})
}
