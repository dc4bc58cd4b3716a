package spatial

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/rendis/pinmap/internal/engine/geo"
	"github.com/rendis/pinmap/internal/model"
)

// Query holds every input of the list pipeline.
type Query struct {
	Places  []model.Place
	User    model.LatLng
	Region  model.Region
	Country string // international only; empty means all countries
	Search  string
	Sort    model.SortMode
	Stats   map[string]model.PlaceStats
}

// FilterSort keeps the places inside the region whose name matches the
// search, annotating each with its distance from the user, then sorts them.
// The sort is stable so ties keep catalog order.
func FilterSort(q Query) []model.DisplayPlace {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(q.Search))

	out := make([]model.DisplayPlace, 0, len(q.Places))
	for _, p := range q.Places {
		if !InRegion(p, q.Region, q.Country) {
			continue
		}
		if needle != "" && !strings.Contains(fold.String(p.Name), needle) {
			continue
		}
		out = append(out, model.DisplayPlace{
			Place:    p,
			Distance: geo.DistanceKm(q.User.Lat, q.User.Lng, p.Lat, p.Lng),
		})
	}

	Sort(out, q.Sort, q.Stats)
	return out
}

// Sort orders places in place. Missing stats count as zero posts and as the
// oldest possible post time.
func Sort(places []model.DisplayPlace, mode model.SortMode, stats map[string]model.PlaceStats) {
	switch mode {
	case model.SortPopular:
		sort.SliceStable(places, func(i, j int) bool {
			return stats[places[i].ID].PostCount > stats[places[j].ID].PostCount
		})
	case model.SortNewest:
		sort.SliceStable(places, func(i, j int) bool {
			return stats[places[i].ID].LatestPostAt.After(stats[places[j].ID].LatestPostAt)
		})
	default:
		sort.SliceStable(places, func(i, j int) bool {
			return places[i].Distance < places[j].Distance
		})
	}
}

// WithDistance annotates a single place, for selections made outside the list.
func WithDistance(p model.Place, user model.LatLng) model.DisplayPlace {
	return model.DisplayPlace{
		Place:    p,
		Distance: geo.DistanceKm(user.Lat, user.Lng, p.Lat, p.Lng),
	}
}
