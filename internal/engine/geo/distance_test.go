package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	// Seoul City Hall -> Busan Station
	d := DistanceKm(37.5663, 126.9779, 35.1151, 129.0415)
	assert.InDelta(t, 325, d, 5)

	assert.Zero(t, DistanceKm(37.5, 127.0, 37.5, 127.0))
}

func TestDistanceKmSymmetric(t *testing.T) {
	pairs := [][4]float64{
		{37.5663, 126.9779, 35.1151, 129.0415},
		{0, 0, 0, 180},
		{-33.86, 151.21, 51.5, -0.12},
		{89.9, 10, -89.9, -170},
	}
	for _, p := range pairs {
		ab := DistanceKm(p[0], p[1], p[2], p[3])
		ba := DistanceKm(p[2], p[3], p[0], p[1])
		assert.InDelta(t, ab, ba, 1e-9)
		assert.Zero(t, DistanceKm(p[0], p[1], p[0], p[1]))
	}
}

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		km   float64
		want string
	}{
		{0, "0m"},
		{0.5, "500m"},
		{0.9996, "1000m"},
		{1.0, "1.0km"},
		{12.34, "12.3km"},
		{250, "250.0km"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDistance(tt.km), "km=%v", tt.km)
	}
}

func TestBound(t *testing.T) {
	b := Bound([][2]float64{{37.5, 127.0}, {35.1, 129.0}, {36.0, 126.5}})
	assert.Equal(t, 126.5, b.Min.Lon())
	assert.Equal(t, 35.1, b.Min.Lat())
	assert.Equal(t, 129.0, b.Max.Lon())
	assert.Equal(t, 37.5, b.Max.Lat())

	assert.True(t, Bound(nil).IsZero())
}
