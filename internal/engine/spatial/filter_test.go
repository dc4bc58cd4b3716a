package spatial

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/pinmap/internal/model"
)

var user = model.LatLng{Lat: 37.5665, Lng: 126.9780}

// placeAt returns a place roughly km kilometers north of the user.
func placeAt(id string, km float64) model.Place {
	return model.Place{ID: id, Name: "place " + id, Lat: user.Lat + km/111.195, Lng: user.Lng}
}

func ids(places []model.DisplayPlace) []string {
	out := make([]string, len(places))
	for i, p := range places {
		out[i] = p.ID
	}
	return out
}

func TestFilterSortNearest(t *testing.T) {
	catalog := []model.Place{placeAt("b", 2), placeAt("c", 10), placeAt("a", 0.5)}

	got := FilterSort(Query{Places: catalog, User: user, Sort: model.SortNearest})
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "c"}, ids(got))
	assert.InDelta(t, 0.5, got[0].Distance, 0.01)
	assert.InDelta(t, 2, got[1].Distance, 0.01)
	assert.InDelta(t, 10, got[2].Distance, 0.01)
}

func TestFilterSortPopular(t *testing.T) {
	catalog := []model.Place{placeAt("a", 0.5), placeAt("b", 2), placeAt("c", 10)}
	stats := map[string]model.PlaceStats{
		"a": {PostCount: 1},
		"b": {PostCount: 5},
		// "c" has no stats: counts as zero
	}

	got := FilterSort(Query{Places: catalog, User: user, Sort: model.SortPopular, Stats: stats})
	assert.Equal(t, []string{"b", "a", "c"}, ids(got))
}

func TestFilterSortNewestMissingIsOldest(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	catalog := []model.Place{placeAt("none", 1), placeAt("old", 2), placeAt("new", 3)}
	stats := map[string]model.PlaceStats{
		"old": {PostCount: 1, LatestPostAt: now.Add(-48 * time.Hour)},
		"new": {PostCount: 1, LatestPostAt: now},
	}

	got := FilterSort(Query{Places: catalog, User: user, Sort: model.SortNewest, Stats: stats})
	assert.Equal(t, []string{"new", "old", "none"}, ids(got))
}

func TestFilterSortStableTies(t *testing.T) {
	catalog := []model.Place{placeAt("x", 1), placeAt("y", 2), placeAt("z", 3)}
	got := FilterSort(Query{Places: catalog, User: user, Sort: model.SortPopular})
	assert.Equal(t, []string{"x", "y", "z"}, ids(got))
}

func TestFilterSortSearch(t *testing.T) {
	catalog := []model.Place{
		{ID: "1", Name: "Blue Bottle Coffee"},
		{ID: "2", Name: "경복궁"},
		{ID: "3", Name: "Coffee Libre"},
	}

	got := FilterSort(Query{Places: catalog, User: user, Search: "  COFFEE "})
	assert.ElementsMatch(t, []string{"1", "3"}, ids(got))

	got = FilterSort(Query{Places: catalog, User: user, Search: "복궁"})
	assert.Equal(t, []string{"2"}, ids(got))

	got = FilterSort(Query{Places: catalog, User: user, Search: "tea"})
	assert.Empty(t, got)
}

func TestFilterSortCountry(t *testing.T) {
	catalog := []model.Place{
		{ID: "seoul"},
		{ID: "tokyo", Country: "일본"},
		{ID: "osaka", Country: "일본"},
		{ID: "paris", Country: "프랑스"},
	}

	all := FilterSort(Query{Places: catalog, User: user, Region: model.RegionInternational})
	assert.ElementsMatch(t, []string{"tokyo", "osaka", "paris"}, ids(all))

	jp := FilterSort(Query{Places: catalog, User: user, Region: model.RegionInternational, Country: "일본"})
	assert.ElementsMatch(t, []string{"tokyo", "osaka"}, ids(jp))

	// the country filter does not apply to the domestic view
	dom := FilterSort(Query{Places: catalog, User: user, Region: model.RegionDomestic, Country: "일본"})
	assert.Equal(t, []string{"seoul"}, ids(dom))
}

func TestRegionsPartitionCatalog(t *testing.T) {
	countries := []string{"", " ", "한국", "일본", "미국"}
	flags := []*bool{nil, model.Bool(true), model.Bool(false)}
	r := rand.New(rand.NewPCG(7, 11))

	for round := 0; round < 20; round++ {
		var catalog []model.Place
		n := r.IntN(40)
		for i := 0; i < n; i++ {
			catalog = append(catalog, model.Place{
				ID:         fmt.Sprintf("%d-%d", round, i),
				Lat:        r.Float64()*180 - 90,
				Lng:        r.Float64()*360 - 180,
				Country:    countries[r.IntN(len(countries))],
				IsDomestic: flags[r.IntN(len(flags))],
			})
		}

		dom := FilterSort(Query{Places: catalog, User: user, Region: model.RegionDomestic})
		intl := FilterSort(Query{Places: catalog, User: user, Region: model.RegionInternational})

		seen := make(map[string]int)
		for _, p := range append(dom, intl...) {
			seen[p.ID]++
		}
		require.Len(t, seen, len(catalog))
		for id, c := range seen {
			assert.Equal(t, 1, c, "place %s appears in both regions", id)
		}
	}
}
