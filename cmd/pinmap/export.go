package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rendis/pinmap/internal/config"
	"github.com/rendis/pinmap/internal/engine/geo"
	"github.com/rendis/pinmap/internal/engine/spatial"
	"github.com/rendis/pinmap/internal/engine/storage"
	"github.com/rendis/pinmap/internal/model"
)

func runExport(args []string) error {
	var dbPath, outputPath, regionStr, country, sortStr, query string
	var lat, lng float64

	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.StringVar(&dbPath, "db", "", "Path to .db file (required)")
	fs.StringVar(&outputPath, "output", "", "Output file path, - for stdout (default: same dir as db)")
	fs.StringVar(&regionStr, "region", "domestic", "domestic or international")
	fs.StringVar(&country, "country", "", "Country filter (international only)")
	fs.StringVar(&sortStr, "sort", "nearest", "nearest, newest or popular")
	fs.StringVar(&query, "q", "", "Name filter")
	fs.Float64Var(&lat, "lat", 0, "User latitude (default: map.default_lat)")
	fs.Float64Var(&lng, "lng", 0, "User longitude (default: map.default_lng)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pinmap export [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  pinmap export -db seoul.db -sort popular\n")
		fmt.Fprintf(os.Stderr, "  pinmap export -db trips.db -region international -country 일본 -output -\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if dbPath == "" {
		return fmt.Errorf("-db is required")
	}

	region, err := model.ParseRegion(regionStr)
	if err != nil {
		return err
	}
	mode, err := model.ParseSortMode(sortStr)
	if err != nil {
		return err
	}

	user := model.LatLng{Lat: lat, Lng: lng}
	if !isSet(fs, "lat") || !isSet(fs, "lng") {
		cfg, err := config.Load("")
		if err != nil {
			return err
		}
		if !isSet(fs, "lat") {
			user.Lat = cfg.Map.DefaultLat
		}
		if !isSet(fs, "lng") {
			user.Lng = cfg.Map.DefaultLng
		}
	}

	if country != "" {
		countries, err := geo.NewCountryStore()
		if err != nil {
			return err
		}
		if name, ok := countries.Resolve(country); ok {
			country = name
		}
	}

	places, stats, err := loadCatalog(dbPath)
	if err != nil {
		return fmt.Errorf("loading db: %w", err)
	}

	list := spatial.FilterSort(spatial.Query{
		Places:  places,
		User:    user,
		Region:  region,
		Country: country,
		Search:  query,
		Sort:    mode,
		Stats:   stats,
	})
	if len(list) == 0 {
		return fmt.Errorf("no places match")
	}

	var out io.Writer = os.Stdout
	if outputPath != "-" {
		if outputPath == "" {
			dir := filepath.Dir(dbPath)
			base := strings.TrimSuffix(filepath.Base(dbPath), filepath.Ext(dbPath))
			outputPath = filepath.Join(dir, base+".csv")
		}
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := writePlacesCSV(out, list, stats); err != nil {
		return err
	}

	pts := make([][2]float64, len(list))
	for i, p := range list {
		pts[i] = [2]float64{p.Lat, p.Lng}
	}
	b := geo.Bound(pts)
	fmt.Fprintf(os.Stderr, "Exported %d places (%s, %s) spanning lat %.4f..%.4f, lng %.4f..%.4f\n",
		len(list), region, mode, b.Min.Lat(), b.Max.Lat(), b.Min.Lon(), b.Max.Lon())
	return nil
}

func loadCatalog(dbPath string) ([]model.Place, map[string]model.PlaceStats, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, nil, err
	}
	store, err := storage.Open(dbPath)
	if err != nil {
		return nil, nil, err
	}
	defer store.Close()

	ctx := context.Background()
	places, err := store.LoadPlaces(ctx)
	if err != nil {
		return nil, nil, err
	}
	posts, err := store.LoadPosts(ctx)
	if err != nil {
		return nil, nil, err
	}
	return places, spatial.BuildStats(posts), nil
}

func writePlacesCSV(out io.Writer, list []model.DisplayPlace, stats map[string]model.PlaceStats) error {
	w := csv.NewWriter(out)
	w.Write([]string{
		"id", "name", "country", "address", "lat", "lng",
		"distance", "posts", "likes", "latest_post",
	})
	for _, p := range list {
		st := stats[p.ID]
		latest := ""
		if !st.LatestPostAt.IsZero() {
			latest = st.LatestPostAt.Format(time.RFC3339)
		}
		w.Write([]string{
			p.ID,
			p.Name,
			p.Country,
			p.Address,
			fmt.Sprintf("%.6f", p.Lat),
			fmt.Sprintf("%.6f", p.Lng),
			geo.FormatDistance(p.Distance),
			fmt.Sprintf("%d", st.PostCount),
			fmt.Sprintf("%d", st.TotalLikes),
			latest,
		})
	}
	w.Flush()
	return w.Error()
}

func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
