package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rendis/pinmap/internal/model"
)

// Required CSV columns. Other known columns are optional; unknown ones are
// ignored.
var (
	placeColumns = []string{"id", "name", "lat", "lng"}
	postColumns  = []string{"id", "place_id"}
)

// ReadPlacesCSV parses a places CSV with a header row. Known columns: id,
// name, lat, lng, country, is_domestic, address, region, district,
// created_at (RFC 3339). An empty is_domestic stays unset.
func ReadPlacesCSV(r io.Reader) ([]model.Place, error) {
	var places []model.Place
	err := readCSV(r, placeColumns, func(line int, get func(string) string) error {
		lat, err := strconv.ParseFloat(get("lat"), 64)
		if err != nil {
			return fmt.Errorf("line %d: lat: %w", line, err)
		}
		lng, err := strconv.ParseFloat(get("lng"), 64)
		if err != nil {
			return fmt.Errorf("line %d: lng: %w", line, err)
		}
		created, err := parseTime(get("created_at"))
		if err != nil {
			return fmt.Errorf("line %d: created_at: %w", line, err)
		}
		p := model.Place{
			ID:        get("id"),
			Name:      get("name"),
			Lat:       lat,
			Lng:       lng,
			Country:   get("country"),
			Address:   get("address"),
			Region:    get("region"),
			District:  get("district"),
			CreatedAt: created,
		}
		if v := get("is_domestic"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("line %d: is_domestic: %w", line, err)
			}
			p.IsDomestic = model.Bool(b)
		}
		if p.ID == "" {
			return fmt.Errorf("line %d: empty id", line)
		}
		places = append(places, p)
		return nil
	})
	return places, err
}

// ReadPostsCSV parses a posts CSV with a header row. Known columns: id,
// place_id, thumbnail, likes, created_at.
func ReadPostsCSV(r io.Reader) ([]model.Post, error) {
	var posts []model.Post
	err := readCSV(r, postColumns, func(line int, get func(string) string) error {
		likes := 0
		if v := get("likes"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("line %d: likes: %w", line, err)
			}
			likes = n
		}
		created, err := parseTime(get("created_at"))
		if err != nil {
			return fmt.Errorf("line %d: created_at: %w", line, err)
		}
		posts = append(posts, model.Post{
			ID:        get("id"),
			PlaceID:   get("place_id"),
			Thumbnail: get("thumbnail"),
			Likes:     likes,
			CreatedAt: created,
		})
		return nil
	})
	return posts, err
}

func readCSV(r io.Reader, required []string, row func(line int, get func(string) string) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return fmt.Errorf("missing column %q", col)
		}
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if err := row(line, get); err != nil {
			return err
		}
	}
}

func parseTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, v)
}
