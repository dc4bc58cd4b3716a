package views

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/pinmap/internal/engine/geo"
	"github.com/rendis/pinmap/internal/engine/mapcache"
	"github.com/rendis/pinmap/internal/engine/selection"
	"github.com/rendis/pinmap/internal/engine/sheet"
	"github.com/rendis/pinmap/internal/mapkit/term"
	"github.com/rendis/pinmap/internal/model"
	"github.com/rendis/pinmap/internal/notify"
)

var seoul = model.LatLng{Lat: 37.5665, Lng: 126.9780}

var testPlaces = []model.Place{
	{ID: "far", Name: "Busan Market", Lat: 35.1796, Lng: 129.0756},
	{ID: "near", Name: "City Hall Cafe", Lat: 37.5663, Lng: 126.9779},
	{ID: "tokyo", Name: "Tokyo Tower", Lat: 35.6586, Lng: 139.7454, Country: "일본"},
	{ID: "paris", Name: "Louvre", Lat: 48.8606, Lng: 2.3376, Country: "프랑스"},
}

var testPosts = []model.Post{
	{ID: "p1", PlaceID: "far", Likes: 3},
	{ID: "p2", PlaceID: "far", Likes: 4},
}

type fakeCatalog struct {
	places []model.Place
	posts  []model.Post
	err    error
}

func (c fakeCatalog) LoadPlaces(context.Context) ([]model.Place, error) { return c.places, c.err }
func (c fakeCatalog) LoadPosts(context.Context) ([]model.Post, error) { return c.posts, nil }
func (c fakeCatalog) Close() error { return nil }

type fixedLocator struct{ pos model.LatLng }

func (l fixedLocator) Position() model.LatLng { return l.pos }
func (l fixedLocator) Locate(context.Context, bool) (model.LatLng, error) {
	return l.pos, nil
}

type fakeSearcher struct{ results []model.SearchResult }

func (s fakeSearcher) Search(context.Context, string, *model.LatLng) []model.SearchResult {
	return s.results
}

type harness struct {
	m       *MapModel
	cache   *mapcache.Cache
	bus     *selection.Bus
	notices *notify.Queue
}

func newHarness(t *testing.T, cat fakeCatalog, searcher Searcher) *harness {
	t.Helper()
	countries, err := geo.NewCountryStore()
	require.NoError(t, err)

	bus := selection.NewBus()
	cache := mapcache.New(mapcache.Options{
		Loader: term.Loader(term.LoadOptions{}),
		Center: seoul,
		Zoom:   13,
		Clicks: bus,
	})
	notices := notify.NewQueue(8)

	m := NewMapModel(MapDeps{
		Cache:     cache,
		Bus:       bus,
		Countries: countries,
		Locator:   fixedLocator{pos: seoul},
		Searcher:  searcher,
		Notices:   notices,
		OpenCatalog: func(string) (Catalog, error) {
			return cat, nil
		},
		CellPx: 16,
		FPS:    60,
	}, "test.db")
	t.Cleanup(m.Close)

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 42})
	return &harness{m: m, cache: cache, bus: bus, notices: notices}
}

// load runs the catalog and marker commands synchronously.
func (h *harness) load(t *testing.T) {
	t.Helper()
	h.m.Update(h.m.loadCatalogCmd()())
	h.m.Update(h.m.ensureMarkersCmd(h.m.places)())
	require.True(t, h.cache.Ready())
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func listIDs(m *MapModel) []string {
	var ids []string
	for _, p := range m.List() {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestMapLoadsDomesticNearestFirst(t *testing.T) {
	h := newHarness(t, fakeCatalog{places: testPlaces, posts: testPosts}, nil)
	h.load(t)

	assert.Equal(t, []string{"near", "far"}, listIDs(h.m))
	assert.Len(t, h.cache.Clusterer().Markers(), 2)
	assert.Contains(t, h.m.View(), "City Hall Cafe")
}

func TestMapSortAndRegion(t *testing.T) {
	h := newHarness(t, fakeCatalog{places: testPlaces, posts: testPosts}, nil)
	h.load(t)

	h.m.Update(key("s"))
	assert.Equal(t, model.SortNewest, h.m.SortMode())
	h.m.Update(key("s"))
	assert.Equal(t, model.SortPopular, h.m.SortMode())
	assert.Equal(t, []string{"far", "near"}, listIDs(h.m))

	h.m.Update(key("tab"))
	assert.Equal(t, model.RegionInternational, h.m.Region())
	assert.ElementsMatch(t, []string{"tokyo", "paris"}, listIDs(h.m))
	assert.Len(t, h.cache.Clusterer().Markers(), 2)
}

func TestMapCountryPicker(t *testing.T) {
	h := newHarness(t, fakeCatalog{places: testPlaces}, nil)
	h.load(t)

	// The picker only opens for the international view.
	h.m.Update(key("c"))
	assert.Equal(t, focusList, h.m.focus)

	h.m.Update(key("tab"))
	h.m.Update(key("c"))
	require.Equal(t, focusCountry, h.m.focus)

	h.m.Update(countryPickedMsg{Name: "일본"})
	assert.Equal(t, "일본", h.m.Country())
	assert.Equal(t, []string{"tokyo"}, listIDs(h.m))

	// Back to domestic drops the country filter.
	h.m.Update(key("tab"))
	assert.Empty(t, h.m.Country())
}

func TestMapCatalogErrorRendersEmptyWithToast(t *testing.T) {
	h := newHarness(t, fakeCatalog{err: errors.New("disk on fire")}, nil)
	h.m.Update(h.m.loadCatalogCmd()())

	assert.Empty(t, h.m.List())
	assert.True(t, h.m.loaded)
	assert.Equal(t, 1, h.m.toasts.Len())
	assert.Contains(t, h.m.View(), "Could not load catalog")
}

func TestMapMarkerClickOpensBanner(t *testing.T) {
	h := newHarness(t, fakeCatalog{places: testPlaces, posts: testPosts}, nil)
	h.load(t)
	h.m.Update(key("f"))
	require.Equal(t, sheet.Full, h.m.Snap())

	h.bus.Emit("far")

	b, ok := h.m.Coordinator().Banner()
	require.True(t, ok)
	assert.Equal(t, model.BannerRegistered, b.Kind)
	assert.Equal(t, "far", b.ID())
	assert.Equal(t, 2, b.Stats.PostCount)
	assert.Equal(t, sheet.Peek, h.m.Snap())

	h.m.Update(key("x"))
	_, ok = h.m.Coordinator().Banner()
	assert.False(t, ok)
}

func TestMapListEnterSelects(t *testing.T) {
	h := newHarness(t, fakeCatalog{places: testPlaces}, nil)
	h.load(t)

	h.m.Update(key("enter"))
	b, ok := h.m.Coordinator().Banner()
	require.True(t, ok)
	assert.Equal(t, "near", b.ID())
	assert.InDelta(t, 37.5663, h.cache.Surface().Center().Lat, 1e-9)
}

func TestMapSearchFlow(t *testing.T) {
	results := []model.SearchResult{{ID: "node/1", Name: "Gyeongbokgung", Lat: 37.5796, Lng: 126.9770}}
	h := newHarness(t, fakeCatalog{places: testPlaces}, fakeSearcher{results: results})
	h.load(t)

	h.m.Update(key("/"))
	require.Equal(t, focusSearch, h.m.focus)
	for _, r := range "cafe" {
		h.m.Update(key(string(r)))
	}
	assert.Equal(t, []string{"near"}, listIDs(h.m))

	h.m.Update(h.m.searchCmd("cafe")())
	require.Equal(t, focusResults, h.m.focus)

	h.m.Update(key("enter"))
	b, ok := h.m.Coordinator().Banner()
	require.True(t, ok)
	assert.Equal(t, model.BannerUnregistered, b.Kind)
	assert.Equal(t, "Gyeongbokgung", b.Name())

	// Selecting clears the search.
	assert.Equal(t, focusList, h.m.focus)
	assert.Empty(t, h.m.filter.Value())
	assert.Equal(t, []string{"near", "far"}, listIDs(h.m))
}

func TestMapSearchNoResultsNotifies(t *testing.T) {
	h := newHarness(t, fakeCatalog{places: testPlaces}, fakeSearcher{})
	h.load(t)

	h.m.Update(h.m.searchCmd("nowhere")())
	assert.NotEqual(t, focusResults, h.m.focus)
	assert.Equal(t, 1, h.m.toasts.Len())
}

func TestMapInteractionCollapsesSheet(t *testing.T) {
	h := newHarness(t, fakeCatalog{places: testPlaces}, nil)
	h.load(t)
	require.Equal(t, sheet.Half, h.m.Snap())

	h.m.Update(key("+"))
	assert.Equal(t, sheet.Peek, h.m.Snap())
}

func TestMapHandleDrag(t *testing.T) {
	h := newHarness(t, fakeCatalog{places: testPlaces}, nil)
	h.load(t)

	top := h.m.sheetTop()
	h.m.Update(tea.MouseMsg{X: 10, Y: top, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, sheet.Dragging, h.m.engine.State())

	h.m.Update(tea.MouseMsg{X: 10, Y: 2, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	h.m.Update(tea.MouseMsg{X: 10, Y: 2, Action: tea.MouseActionRelease})
	assert.Equal(t, sheet.Full, h.m.Snap())
}

func TestMapDropsMessagesForOtherMounts(t *testing.T) {
	h := newHarness(t, fakeCatalog{places: testPlaces}, nil)

	h.m.Update(catalogLoadedMsg{Mount: "someone-else", Places: testPlaces})
	assert.False(t, h.m.loaded)

	msg := h.m.loadCatalogCmd()()
	h.m.Close()
	h.m.Update(msg)
	assert.False(t, h.m.loaded)
}

func TestMapRemountKeepsSurface(t *testing.T) {
	h := newHarness(t, fakeCatalog{places: testPlaces}, nil)
	h.load(t)
	surface := h.cache.Surface()
	first := h.m.mount
	h.m.Close()
	assert.False(t, first.Alive())

	again := NewMapModel(h.m.deps, "test.db")
	t.Cleanup(again.Close)
	assert.True(t, again.ready, "markers survive the unmount")
	again.Update(tea.WindowSizeMsg{Width: 100, Height: 42})
	again.Update(again.ensureSurfaceCmd()())
	assert.Same(t, surface, h.cache.Surface())
	assert.True(t, again.mount.Alive())
	assert.True(t, again.ready)
	assert.NotContains(t, again.View(), "Loading map...")
}
