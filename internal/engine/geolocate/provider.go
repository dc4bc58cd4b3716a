// Package geolocate finds the user's position. Failures never move the
// position; only explicit requests tell the user about them.
package geolocate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rendis/pinmap/internal/model"
)

var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrUnavailable      = errors.New("location unavailable")
)

// DefaultEndpoint is an ip-api.com compatible JSON endpoint.
const DefaultEndpoint = "http://ip-api.com/json/?fields=status,message,lat,lon,query"

// Options of one position request.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
}

// Provider answers one-shot position requests.
type Provider interface {
	CurrentPosition(ctx context.Context, opts Options) (model.LatLng, error)
}

// Getter is the transport IPProvider needs.
type Getter interface {
	GetJSON(ctx context.Context, rawURL string, header http.Header, v any) error
}

type ipAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Query   string  `json:"query"`
}

// IPProvider locates the machine by its public address. HighAccuracy has no
// effect; the answer is city level at best.
type IPProvider struct {
	http     Getter
	endpoint string
}

func NewIPProvider(getter Getter, endpoint string) *IPProvider {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &IPProvider{http: getter, endpoint: endpoint}
}

func (p *IPProvider) CurrentPosition(ctx context.Context, opts Options) (model.LatLng, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var r ipAPIResponse
	if err := p.http.GetJSON(ctx, p.endpoint, nil, &r); err != nil {
		return model.LatLng{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if r.Status != "success" {
		return model.LatLng{}, fmt.Errorf("%w: %s", ErrUnavailable, r.Message)
	}
	return model.LatLng{Lat: r.Lat, Lng: r.Lon}, nil
}

// StaticProvider always answers Pos.
type StaticProvider struct {
	Pos model.LatLng
}

func (p StaticProvider) CurrentPosition(context.Context, Options) (model.LatLng, error) {
	return p.Pos, nil
}

// DeniedProvider is used when location lookup is turned off.
type DeniedProvider struct{}

func (DeniedProvider) CurrentPosition(context.Context, Options) (model.LatLng, error) {
	return model.LatLng{}, ErrPermissionDenied
}
