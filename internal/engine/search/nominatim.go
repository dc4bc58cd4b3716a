// Package search looks up places outside the catalog through an
// OSM Nominatim compatible endpoint.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rendis/pinmap/internal/engine/httpx"
	"github.com/rendis/pinmap/internal/model"
)

const (
	DefaultEndpoint = "https://nominatim.openstreetmap.org/search"
	DefaultLimit    = 5
)

// Getter is the transport the client needs. *httpx.Client satisfies it.
type Getter interface {
	GetJSON(ctx context.Context, rawURL string, header http.Header, v any) error
}

type nominatimResult struct {
	PlaceID     int64  `json:"place_id"`
	OSMType     string `json:"osm_type"`
	OSMID       int64  `json:"osm_id"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// Options configures a Client.
type Options struct {
	Endpoint string
	Lang     string
	Limit    int
	Logger   *slog.Logger
}

// Client is the external text search collaborator.
type Client struct {
	http     Getter
	endpoint string
	lang     string
	limit    int
	log      *slog.Logger
}

var _ Getter = (*httpx.Client)(nil)

func NewClient(getter Getter, opts Options) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Client{
		http:     getter,
		endpoint: opts.Endpoint,
		lang:     opts.Lang,
		limit:    opts.Limit,
		log:      log.With("component", "search"),
	}
}

// Search returns candidate places for a free-text query. Near biases the
// ranking toward a position when non-nil. Any failure yields no results;
// the error is logged, never returned.
func (c *Client) Search(ctx context.Context, query string, near *model.LatLng) []model.SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	params := url.Values{
		"q":              {query},
		"format":         {"jsonv2"},
		"limit":          {strconv.Itoa(c.limit)},
		"addressdetails": {"0"},
	}
	if near != nil {
		// A ~0.5° box around the position, preferred but not bounding.
		params.Set("viewbox", fmt.Sprintf("%f,%f,%f,%f",
			near.Lng-0.25, near.Lat+0.25, near.Lng+0.25, near.Lat-0.25))
	}
	header := http.Header{}
	if c.lang != "" {
		header.Set("Accept-Language", c.lang)
	}

	var raw []nominatimResult
	if err := c.http.GetJSON(ctx, c.endpoint+"?"+params.Encode(), header, &raw); err != nil {
		c.log.Warn("search failed", "query", query, "error", err)
		return nil
	}

	out := make([]model.SearchResult, 0, len(raw))
	for _, r := range raw {
		res, err := r.toResult()
		if err != nil {
			c.log.Debug("skipping search result", "error", err)
			continue
		}
		out = append(out, res)
	}
	c.log.Debug("search done", "query", query, "results", len(out))
	return out
}

func (r nominatimResult) toResult() (model.SearchResult, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return model.SearchResult{}, fmt.Errorf("lat %q: %w", r.Lat, err)
	}
	lng, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return model.SearchResult{}, fmt.Errorf("lon %q: %w", r.Lon, err)
	}

	name := r.Name
	if name == "" {
		name, _, _ = strings.Cut(r.DisplayName, ",")
	}
	id := strconv.FormatInt(r.PlaceID, 10)
	if r.OSMType != "" {
		id = r.OSMType + "/" + strconv.FormatInt(r.OSMID, 10)
	}
	return model.SearchResult{
		ID:      id,
		Name:    strings.TrimSpace(name),
		Address: r.DisplayName,
		Lat:     lat,
		Lng:     lng,
	}, nil
}
