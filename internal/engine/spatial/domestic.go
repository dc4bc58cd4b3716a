// Package spatial classifies, filters and orders catalog places.
package spatial

import (
	"strings"

	"github.com/rendis/pinmap/internal/model"
)

// HomeCountry is the country name stored for domestic places.
const HomeCountry = "한국"

// IsDomestic applies the domestic decision table:
//
//	is_domestic=false           -> international
//	country set and not Korea   -> international
//	anything else               -> domestic
//
// A blank country counts as absent.
func IsDomestic(p model.Place) bool {
	if p.IsDomestic != nil && !*p.IsDomestic {
		return false
	}
	country := strings.TrimSpace(p.Country)
	return country == "" || country == HomeCountry
}

// InRegion reports whether p belongs to the given region view. For the
// international view a non-empty country restricts the match further.
// The list and the map both call this; they must never disagree.
func InRegion(p model.Place, region model.Region, country string) bool {
	domestic := IsDomestic(p)
	if region == model.RegionDomestic {
		return domestic
	}
	if domestic {
		return false
	}
	if country == "" {
		return true
	}
	return strings.TrimSpace(p.Country) == country
}
