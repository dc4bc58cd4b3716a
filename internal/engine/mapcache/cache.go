// Package mapcache keeps one map surface, its markers and its clusterer alive
// for the whole process. Screens mount and unmount against it; nothing it
// creates is recreated on the next mount.
package mapcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rendis/pinmap/internal/engine/pin"
	"github.com/rendis/pinmap/internal/mapkit"
	"github.com/rendis/pinmap/internal/model"
)

// ErrUnavailable is returned once the map library failed to load. The
// failure is final; the cache never becomes ready.
var ErrUnavailable = errors.New("map library unavailable")

// User marker look.
const (
	UserGlyph      = "◉"
	UserColor      = "#3B82F6"
	EphemeralGlyph = "◆"
	EphemeralColor = "#A855F7"
)

// Emitter receives marker clicks by place id.
type Emitter interface {
	Emit(placeID string)
}

// Options configures a Cache.
type Options struct {
	Loader mapkit.Loader
	Center model.LatLng
	Zoom   int
	// Render is the clusterer render hook. Defaults to pin.Render.
	Render mapkit.ClusterRenderer
	Clicks Emitter
	Logger *slog.Logger
}

// Hooks are the callbacks of the current mount.
type Hooks struct {
	// OnMapInteraction fires for direct interaction with the map itself.
	OnMapInteraction func(mapkit.InteractionEvent)
}

// Cache is the process-wide map state. Construct one and inject it.
type Cache struct {
	opts Options
	log  *slog.Logger

	initMu sync.Mutex // serializes library loading

	mu        sync.Mutex
	attempted bool
	loadErr   error
	lib       mapkit.Library
	surface   mapkit.Surface
	clusterer mapkit.Clusterer
	markers   map[string]mapkit.Marker
	order     []string
	user      mapkit.Marker
	userPos   *model.LatLng
	ready     bool
	mount     *Mount
}

func New(opts Options) *Cache {
	if opts.Render == nil {
		opts.Render = pin.Render
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Cache{
		opts:    opts,
		log:     log.With("component", "mapcache"),
		markers: make(map[string]mapkit.Marker),
	}
}

// EnsureSurface loads the library and creates the surface and clusterer on
// the first call. Later calls return immediately with the first outcome.
func (c *Cache) EnsureSurface(ctx context.Context) error {
	c.initMu.Lock()
	defer c.initMu.Unlock()

	c.mu.Lock()
	if c.attempted {
		err := c.loadErr
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	var lib mapkit.Library
	err := ErrUnavailable
	if c.opts.Loader != nil {
		lib, err = c.opts.Loader(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempted = true
	if err != nil {
		if !errors.Is(err, ErrUnavailable) {
			err = fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		c.loadErr = err
		c.log.Error("map library load failed", "error", err)
		return err
	}

	c.lib = lib
	c.surface = lib.NewSurface(mapkit.SurfaceOptions{
		Center: toMapkit(c.opts.Center),
		Zoom:   c.opts.Zoom,
	})
	c.surface.OnInteraction(c.forwardInteraction)
	c.clusterer = lib.NewClusterer(c.surface, c.opts.Render)
	if c.userPos != nil {
		c.placeUserLocked(*c.userPos)
	}
	if c.mount != nil {
		c.surface.Attach(c.mount.hostID)
	}
	c.log.Info("map surface created", "center", c.opts.Center, "zoom", c.opts.Zoom)
	return nil
}

// EnsureMarkers creates a marker for every place id not seen before. It is a
// no-op until the surface exists.
func (c *Cache) EnsureMarkers(places []model.Place) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lib == nil {
		return 0
	}

	created := 0
	for _, p := range places {
		if _, ok := c.markers[p.ID]; ok {
			continue
		}
		id := p.ID
		m := c.lib.NewMarker(mapkit.MarkerOptions{
			ID:       id,
			Position: toMapkit(p.Location()),
		})
		m.OnClick(func() { c.emitClick(id) })
		c.markers[id] = m
		c.order = append(c.order, id)
		created++
	}
	if created > 0 {
		c.log.Debug("markers created", "created", created, "total", len(c.markers))
	}
	return created
}

// EnsureReady is EnsureSurface followed by EnsureMarkers. Once it succeeds
// the cache reports ready.
func (c *Cache) EnsureReady(ctx context.Context, places []model.Place) error {
	if err := c.EnsureSurface(ctx); err != nil {
		return err
	}
	c.EnsureMarkers(places)

	c.mu.Lock()
	c.ready = true
	c.mu.Unlock()
	return nil
}

// Mount re-parents the surface into hostID. Any previous mount stops being
// alive.
func (c *Cache) Mount(hostID string, hooks Hooks) *Mount {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := &Mount{id: uuid.NewString(), hostID: hostID, hooks: hooks, cache: c}
	c.mount = m
	if c.surface != nil {
		c.surface.Attach(hostID)
	}
	c.log.Debug("mounted", "host", hostID, "mount", m.id)
	return m
}

// SetUserLocation creates the user marker on first use and moves it after.
// Before the surface exists the position is kept and applied on creation.
func (c *Cache) SetUserLocation(pos model.LatLng) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userPos = &pos
	if c.lib != nil {
		c.placeUserLocked(pos)
	}
}

func (c *Cache) placeUserLocked(pos model.LatLng) {
	if c.user == nil {
		c.user = c.lib.NewMarker(mapkit.MarkerOptions{
			ID:       "user",
			Position: toMapkit(pos),
			Glyph:    UserGlyph,
			Color:    UserColor,
		})
		c.user.SetMap(c.surface)
		return
	}
	c.user.SetPosition(toMapkit(pos))
}

// FocusOn moves the map. It is ignored before the surface exists.
func (c *Cache) FocusOn(pos model.LatLng, zoom int) {
	c.mu.Lock()
	s := c.surface
	c.mu.Unlock()
	if s != nil {
		s.FocusOn(toMapkit(pos), zoom)
	}
}

// ShowEphemeral draws a standalone marker that is not part of the index.
func (c *Cache) ShowEphemeral(id string, pos model.LatLng) (remove func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lib == nil {
		return func() {}
	}
	m := c.lib.NewMarker(mapkit.MarkerOptions{
		ID:       id,
		Position: toMapkit(pos),
		Glyph:    EphemeralGlyph,
		Color:    EphemeralColor,
	})
	m.SetMap(c.surface)
	return func() { m.SetMap(nil) }
}

// Ready reports whether the surface and markers were created.
func (c *Cache) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// Err returns the library load failure, if any.
func (c *Cache) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}

func (c *Cache) Surface() mapkit.Surface {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface
}

func (c *Cache) Clusterer() mapkit.Clusterer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clusterer
}

func (c *Cache) Marker(placeID string) (mapkit.Marker, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.markers[placeID]
	return m, ok
}

func (c *Cache) MarkerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.markers)
}

func (c *Cache) forwardInteraction(ev mapkit.InteractionEvent) {
	c.mu.Lock()
	m := c.mount
	c.mu.Unlock()
	if m != nil && m.hooks.OnMapInteraction != nil {
		m.hooks.OnMapInteraction(ev)
	}
}

func (c *Cache) emitClick(placeID string) {
	if c.opts.Clicks != nil {
		c.opts.Clicks.Emit(placeID)
	}
}

func toMapkit(ll model.LatLng) mapkit.LatLng {
	return mapkit.LatLng{Lat: ll.Lat, Lng: ll.Lng}
}
