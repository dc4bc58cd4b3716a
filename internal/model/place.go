package model

import "time"

// Place is a geotagged point of interest from the catalog.
type Place struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Country    string    `json:"country,omitempty"`     // empty means absent
	IsDomestic *bool     `json:"is_domestic,omitempty"` // nil means unset
	Address    string    `json:"address,omitempty"`
	Region     string    `json:"region,omitempty"`
	District   string    `json:"district,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Post is the slice of a user post the map needs: where, how liked, when.
type Post struct {
	ID        string    `json:"id"`
	PlaceID   string    `json:"place_id"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
}

// PlaceStats is derived per data load by folding the post list.
type PlaceStats struct {
	Thumbnail      string    `json:"thumbnail,omitempty"`
	PostCount      int       `json:"post_count"`
	TotalLikes     int       `json:"total_likes"`
	LatestPostAt   time.Time `json:"latest_post_at"` // zero when the place has no posts
	HasPopularPost bool      `json:"has_popular_post"`
}

// DisplayPlace is a Place annotated with its distance from the user.
type DisplayPlace struct {
	Place
	Distance float64 `json:"distance_km"`
}

// LatLng is a plain coordinate pair in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location returns the place coordinates.
func (p Place) Location() LatLng {
	return LatLng{Lat: p.Lat, Lng: p.Lng}
}

// Bool returns a pointer to b, for filling tri-state fields.
func Bool(b bool) *bool {
	return &b
}
