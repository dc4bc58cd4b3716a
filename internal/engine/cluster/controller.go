// Package cluster decides which cached markers the clusterer shows and where
// the map looks, from the current region and country selection.
package cluster

import (
	"log/slog"

	"github.com/rendis/pinmap/internal/engine/geo"
	"github.com/rendis/pinmap/internal/engine/spatial"
	"github.com/rendis/pinmap/internal/mapkit"
	"github.com/rendis/pinmap/internal/model"
)

// DomesticZoom is the zoom used around the user in the domestic view.
const DomesticZoom = 13

// Markers is the cache the controller reads from.
type Markers interface {
	Surface() mapkit.Surface
	Clusterer() mapkit.Clusterer
	Marker(placeID string) (mapkit.Marker, bool)
}

// Presets resolves a country filter to a map view.
type Presets interface {
	Preset(name string) (geo.Country, bool)
}

// State is everything the visible marker set depends on. CatalogVersion
// changes whenever Places is replaced.
type State struct {
	Ready          bool
	Region         model.Region
	Country        string
	CatalogVersion int
	Places         []model.Place
	User           model.LatLng
}

func (s State) key() stateKey {
	return stateKey{
		ready:   s.Ready,
		region:  s.Region,
		country: s.Country,
		version: s.CatalogVersion,
		user:    s.User,
	}
}

type stateKey struct {
	ready   bool
	region  model.Region
	country string
	version int
	user    model.LatLng
}

// Target is a map view.
type Target struct {
	Center mapkit.LatLng
	Zoom   int
}

// Applied describes one sync.
type Applied struct {
	Target  Target
	Visible []string // place ids handed to the clusterer, in catalog order
}

// Controller syncs the clusterer with selection state.
type Controller struct {
	markers Markers
	presets Presets
	log     *slog.Logger

	last   stateKey
	synced bool
}

func NewController(markers Markers, presets Presets, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		markers: markers,
		presets: presets,
		log:     logger.With("component", "cluster"),
	}
}

// Sync re-targets the map and resets the clusterer when the state changed
// since the last applied sync. It reports false when nothing was done.
func (c *Controller) Sync(s State) (Applied, bool) {
	if !s.Ready {
		return Applied{}, false
	}
	k := s.key()
	if c.synced && k == c.last {
		return Applied{}, false
	}
	surface := c.markers.Surface()
	clusterer := c.markers.Clusterer()
	if surface == nil || clusterer == nil {
		return Applied{}, false
	}

	target := c.Target(s)
	surface.FocusOn(target.Center, target.Zoom)

	visible := make([]mapkit.Marker, 0, len(s.Places))
	ids := make([]string, 0, len(s.Places))
	for _, p := range s.Places {
		if !spatial.InRegion(p, s.Region, s.Country) {
			continue
		}
		m, ok := c.markers.Marker(p.ID)
		if !ok {
			continue
		}
		visible = append(visible, m)
		ids = append(ids, p.ID)
	}
	clusterer.SetMarkers(visible)

	c.last = k
	c.synced = true
	c.log.Debug("clusterer synced",
		"region", s.Region,
		"country", s.Country,
		"visible", len(ids),
		"zoom", target.Zoom,
	)
	return Applied{Target: target, Visible: ids}, true
}

// Target picks the view for a state: the user in the domestic view, the
// country preset when one is selected, the world otherwise.
func (c *Controller) Target(s State) Target {
	if s.Region == model.RegionDomestic {
		return Target{
			Center: mapkit.LatLng{Lat: s.User.Lat, Lng: s.User.Lng},
			Zoom:   DomesticZoom,
		}
	}
	if s.Country != "" && c.presets != nil {
		if p, ok := c.presets.Preset(s.Country); ok {
			return Target{
				Center: mapkit.LatLng{Lat: p.Center.Lat(), Lng: p.Center.Lon()},
				Zoom:   p.Zoom,
			}
		}
		c.log.Warn("no preset for country", "country", s.Country)
	}
	return Target{
		Center: mapkit.LatLng{Lat: geo.WorldCenter.Lat(), Lng: geo.WorldCenter.Lon()},
		Zoom:   geo.WorldZoom,
	}
}

// Reset forces the next Sync to apply.
func (c *Controller) Reset() {
	c.synced = false
}
