package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two points using the
// haversine formula.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLng := (lng2 - lng1) * math.Pi / 180.0
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180.0)*math.Cos(lat2*math.Pi/180.0)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// FormatDistance renders a distance for display: meters below 1 km,
// otherwise kilometers with one decimal.
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%dm", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1fkm", km)
}

// Bound returns the bounding box of the given lat/lng pairs.
// orb points are [lng, lat].
func Bound(latlngs [][2]float64) orb.Bound {
	if len(latlngs) == 0 {
		return orb.Bound{}
	}
	b := orb.Point{latlngs[0][1], latlngs[0][0]}.Bound()
	for _, ll := range latlngs[1:] {
		b = b.Extend(orb.Point{ll[1], ll[0]})
	}
	return b
}
