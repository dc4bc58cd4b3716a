package geo

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

//go:embed geodata/countries.geojson
var countriesFS embed.FS

// World view used when the international map has no country selected.
var (
	WorldCenter = orb.Point{127.0, 20.0}
	WorldZoom   = 2
)

// Country is a map preset for one country.
type Country struct {
	Name    string    // display name (canonical)
	Aliases []string  // short names: ISO codes, English name...
	Center  orb.Point // [lng, lat]
	Zoom    int
}

// CountryStore indexes the embedded country presets.
type CountryStore struct {
	countries []Country
	byKey     map[string]int // normalized name or alias -> index
}

// NewCountryStore parses the embedded preset collection.
func NewCountryStore() (*CountryStore, error) {
	data, err := countriesFS.ReadFile("geodata/countries.geojson")
	if err != nil {
		return nil, fmt.Errorf("reading embedded geojson: %w", err)
	}
	return ParseCountries(data)
}

// ParseCountries builds a store from a GeoJSON FeatureCollection of Point
// features carrying name, aliases and zoom properties.
func ParseCountries(data []byte) (*CountryStore, error) {
	fc := &geojson.FeatureCollection{}
	if err := json.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("parsing geojson: %w", err)
	}

	store := &CountryStore{byKey: make(map[string]int)}
	for _, f := range fc.Features {
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			return nil, fmt.Errorf("unexpected geometry type %T", f.Geometry)
		}
		name := f.Properties.MustString("name", "")
		if name == "" {
			continue
		}
		c := Country{
			Name:   name,
			Center: p,
			Zoom:   f.Properties.MustInt("zoom", 5),
		}
		if raw, ok := f.Properties["aliases"].([]interface{}); ok {
			for _, a := range raw {
				if s, ok := a.(string); ok && s != "" {
					c.Aliases = append(c.Aliases, s)
				}
			}
		}
		store.countries = append(store.countries, c)
	}

	sort.SliceStable(store.countries, func(i, j int) bool {
		return store.countries[i].Name < store.countries[j].Name
	})
	for i, c := range store.countries {
		store.byKey[normalize(c.Name)] = i
		for _, a := range c.Aliases {
			store.byKey[normalize(a)] = i
		}
	}
	return store, nil
}

// List returns all presets sorted by display name.
func (s *CountryStore) List() []Country {
	out := make([]Country, len(s.countries))
	copy(out, s.countries)
	return out
}

// Preset returns the preset for an exact display name or alias.
func (s *CountryStore) Preset(name string) (Country, bool) {
	idx, ok := s.byKey[normalize(strings.TrimSpace(name))]
	if !ok {
		return Country{}, false
	}
	return s.countries[idx], true
}

// Resolve maps a name or alias to the canonical display name.
func (s *CountryStore) Resolve(input string) (string, bool) {
	c, ok := s.Preset(input)
	if !ok {
		return "", false
	}
	return c.Name, true
}

// Match returns the countries whose display name or any alias contains the
// query, ignoring case and accents. An empty query matches nothing.
// limit <= 0 means no limit.
func (s *CountryStore) Match(query string, limit int) []Country {
	q := normalize(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var matches []Country
	for _, c := range s.countries {
		if !countryMatches(c, q) {
			continue
		}
		matches = append(matches, c)
		if limit > 0 && len(matches) >= limit {
			break
		}
	}
	return matches
}

func countryMatches(c Country, q string) bool {
	if strings.Contains(normalize(c.Name), q) {
		return true
	}
	for _, a := range c.Aliases {
		if strings.Contains(normalize(a), q) {
			return true
		}
	}
	return false
}

// normalize removes accents/diacritics and lowercases text for fuzzy matching.
func normalize(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}), norm.NFC)
	result, _, _ := transform.String(t, strings.ToLower(s))
	return result
}
