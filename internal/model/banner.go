package model

// SearchResult is a candidate returned by the external places provider.
type SearchResult struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// BannerKind tells catalog-backed banners apart from search-backed ones.
type BannerKind int

const (
	BannerRegistered BannerKind = iota
	BannerUnregistered
)

func (k BannerKind) String() string {
	if k == BannerUnregistered {
		return "unregistered"
	}
	return "registered"
}

// BannerPlace is the transient card shown after selecting a place.
// Exactly one of Place or Result is set, according to Kind.
type BannerPlace struct {
	Kind   BannerKind
	Place  *DisplayPlace
	Stats  PlaceStats
	Result *SearchResult
}

func (b BannerPlace) ID() string {
	if b.Kind == BannerUnregistered && b.Result != nil {
		return b.Result.ID
	}
	if b.Place != nil {
		return b.Place.ID
	}
	return ""
}

func (b BannerPlace) Name() string {
	if b.Kind == BannerUnregistered && b.Result != nil {
		return b.Result.Name
	}
	if b.Place != nil {
		return b.Place.Name
	}
	return ""
}

func (b BannerPlace) Address() string {
	if b.Kind == BannerUnregistered && b.Result != nil {
		return b.Result.Address
	}
	if b.Place != nil {
		return b.Place.Address
	}
	return ""
}

func (b BannerPlace) Location() LatLng {
	if b.Kind == BannerUnregistered && b.Result != nil {
		return LatLng{Lat: b.Result.Lat, Lng: b.Result.Lng}
	}
	if b.Place != nil {
		return b.Place.Location()
	}
	return LatLng{}
}
