package selection

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/rendis/pinmap/internal/engine/sheet"
	"github.com/rendis/pinmap/internal/engine/spatial"
	"github.com/rendis/pinmap/internal/model"
)

// FocusZoom is the zoom the map jumps to when a place is selected.
const FocusZoom = 16

// MapControl is the part of the map a selection drives.
type MapControl interface {
	FocusOn(pos model.LatLng, zoom int)
	// ShowEphemeral draws a marker that belongs to no catalog place.
	ShowEphemeral(id string, pos model.LatLng) (remove func())
}

type SheetControl interface {
	SnapTo(sheet.Snap)
}

type SearchControl interface {
	ClearSearch()
}

// Deps wires a Coordinator to its surroundings. Lookup, Stats and User are
// read at call time so they always see the latest catalog load.
type Deps struct {
	Map    MapControl
	Sheet  SheetControl
	Search SearchControl

	Lookup func(placeID string) (model.Place, bool)
	Stats  func(placeID string) model.PlaceStats
	User   func() model.LatLng

	Logger *slog.Logger
}

// Coordinator turns clicks on markers, list rows and search results into a
// banner, a map focus and a collapsed sheet.
type Coordinator struct {
	deps Deps

	banner          *model.BannerPlace
	card            *model.DisplayPlace
	removeEphemeral func()

	listeners map[int]func(model.BannerPlace)
	nextID    int
}

func NewCoordinator(deps Deps) *Coordinator {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	return &Coordinator{
		deps:      deps,
		listeners: make(map[int]func(model.BannerPlace)),
	}
}

// SelectCatalogPlace shows the banner for a registered place.
func (c *Coordinator) SelectCatalogPlace(p model.Place) {
	dp := spatial.WithDistance(p, c.user())
	var stats model.PlaceStats
	if c.deps.Stats != nil {
		stats = c.deps.Stats(p.ID)
	}

	c.dropEphemeral()
	c.card = nil
	c.banner = &model.BannerPlace{
		Kind:  model.BannerRegistered,
		Place: &dp,
		Stats: stats,
	}

	c.focus(p.Location())
	if c.deps.Sheet != nil {
		c.deps.Sheet.SnapTo(sheet.Peek)
	}
	c.clearSearch()
	c.deps.Logger.Debug("place selected", "place", p.ID, "kind", model.BannerRegistered)
	c.notify()
}

// SelectExternalPlace shows the banner for a search result that is not in
// the catalog, with its own marker.
func (c *Coordinator) SelectExternalPlace(r model.SearchResult) {
	c.dropEphemeral()
	result := r
	c.banner = &model.BannerPlace{
		Kind:   model.BannerUnregistered,
		Result: &result,
	}

	pos := model.LatLng{Lat: r.Lat, Lng: r.Lng}
	c.focus(pos)
	if c.deps.Map != nil {
		c.removeEphemeral = c.deps.Map.ShowEphemeral("search-"+uuid.NewString(), pos)
	}
	c.clearSearch()
	c.deps.Logger.Debug("place selected", "result", r.ID, "kind", model.BannerUnregistered)
	c.notify()
}

// CloseBanner clears the banner and its ephemeral marker. Safe to repeat.
func (c *Coordinator) CloseBanner() {
	c.dropEphemeral()
	c.banner = nil
}

// HandleMarkerClick resolves a clicked marker against the catalog. It reports
// false for ids the catalog does not know.
func (c *Coordinator) HandleMarkerClick(placeID string) bool {
	if c.deps.Lookup == nil {
		return false
	}
	p, ok := c.deps.Lookup(placeID)
	if !ok {
		c.deps.Logger.Debug("marker click for unknown place", "place", placeID)
		return false
	}
	c.SelectCatalogPlace(p)
	return true
}

// Preview sets the compact selection card without opening the banner.
func (c *Coordinator) Preview(p model.Place) {
	dp := spatial.WithDistance(p, c.user())
	c.card = &dp
}

// Banner returns the live banner, if any.
func (c *Coordinator) Banner() (model.BannerPlace, bool) {
	if c.banner == nil {
		return model.BannerPlace{}, false
	}
	return *c.banner, true
}

// Card returns the preview card, if any.
func (c *Coordinator) Card() (model.DisplayPlace, bool) {
	if c.card == nil {
		return model.DisplayPlace{}, false
	}
	return *c.card, true
}

// OnSelect registers a listener for the "place selected" event.
func (c *Coordinator) OnSelect(fn func(model.BannerPlace)) (remove func()) {
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() { delete(c.listeners, id) }
}

func (c *Coordinator) notify() {
	b := *c.banner
	for _, fn := range c.listeners {
		fn(b)
	}
}

func (c *Coordinator) focus(pos model.LatLng) {
	if c.deps.Map != nil {
		c.deps.Map.FocusOn(pos, FocusZoom)
	}
}

func (c *Coordinator) clearSearch() {
	if c.deps.Search != nil {
		c.deps.Search.ClearSearch()
	}
}

func (c *Coordinator) user() model.LatLng {
	if c.deps.User == nil {
		return model.LatLng{}
	}
	return c.deps.User()
}

func (c *Coordinator) dropEphemeral() {
	if c.removeEphemeral != nil {
		c.removeEphemeral()
		c.removeEphemeral = nil
	}
}
