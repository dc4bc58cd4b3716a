package main

import (
	"flag"
	"fmt"
	"log/slog"

	"github.com/rendis/pinmap/internal/config"
	"github.com/rendis/pinmap/internal/engine/geo"
	"github.com/rendis/pinmap/internal/engine/geolocate"
	"github.com/rendis/pinmap/internal/engine/httpx"
	"github.com/rendis/pinmap/internal/engine/mapcache"
	"github.com/rendis/pinmap/internal/engine/search"
	"github.com/rendis/pinmap/internal/engine/selection"
	"github.com/rendis/pinmap/internal/engine/storage"
	"github.com/rendis/pinmap/internal/logging"
	"github.com/rendis/pinmap/internal/mapkit/term"
	"github.com/rendis/pinmap/internal/model"
	"github.com/rendis/pinmap/internal/notify"
	"github.com/rendis/pinmap/internal/tui"
	"github.com/rendis/pinmap/internal/tui/views"
)

const noticeCapacity = 16

func runTUI(args []string) error {
	fs := flag.NewFlagSet("pinmap", flag.ExitOnError)
	configFile := fs.String("config", "", "Config file (default: search for pinmap.yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		return err
	}
	defer closeLog()

	deps, err := buildMapDeps(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("starting pinmap", "version", version, "db", cfg.Catalog.DBPath)
	return tui.Run(tui.Options{
		DBPath:  cfg.Catalog.DBPath,
		Version: version,
		Map:     deps,
		Recent:  tui.NewRecentCatalogs(""),
		Logger:  logger,
	})
}

// buildMapDeps wires the process-wide map collaborators. They outlive every
// map screen mount.
func buildMapDeps(cfg *config.Config, logger *slog.Logger) (views.MapDeps, error) {
	countries, err := geo.NewCountryStore()
	if err != nil {
		return views.MapDeps{}, fmt.Errorf("loading country presets: %w", err)
	}

	client, err := httpx.NewClient(httpx.Options{
		Timeout:  cfg.Geolocation.Timeout,
		ProxyURL: cfg.Search.ProxyURL,
	})
	if err != nil {
		return views.MapDeps{}, fmt.Errorf("creating http client: %w", err)
	}

	home := model.LatLng{Lat: cfg.Map.DefaultLat, Lng: cfg.Map.DefaultLng}
	notices := notify.NewQueue(noticeCapacity)
	bus := selection.NewBus()

	cache := mapcache.New(mapcache.Options{
		Loader: term.Loader(term.LoadOptions{
			Shapefile:       cfg.Map.BasemapShapefile,
			ClusterCellCols: cfg.Map.ClusterCellCols,
			ClusterCellRows: cfg.Map.ClusterCellRows,
		}),
		Center: home,
		Zoom:   cfg.Map.DefaultZoom,
		Clicks: bus,
		Logger: logger,
	})

	tracker := geolocate.NewTracker(
		locationProvider(cfg.Geolocation, client, home),
		geolocate.Options{HighAccuracy: cfg.Geolocation.HighAccuracy, Timeout: cfg.Geolocation.Timeout},
		home,
		notices,
		logger,
	)

	searcher := search.NewClient(client, search.Options{
		Endpoint: cfg.Search.Endpoint,
		Lang:     cfg.Search.Lang,
		Limit:    cfg.Search.Limit,
		Logger:   logger,
	})

	return views.MapDeps{
		Cache:     cache,
		Bus:       bus,
		Countries: countries,
		Locator:   tracker,
		Searcher:  searcher,
		Notices:   notices,
		OpenCatalog: func(path string) (views.Catalog, error) {
			st, err := storage.Open(path)
			if err != nil {
				return nil, err
			}
			return st, nil
		},
		CellPx: cfg.Sheet.CellPx,
		FPS:    cfg.Sheet.FPS,
		Logger: logger,
	}, nil
}

func locationProvider(cfg config.GeolocationConfig, client *httpx.Client, home model.LatLng) geolocate.Provider {
	switch cfg.Provider {
	case "static":
		return geolocate.StaticProvider{Pos: home}
	case "off":
		return geolocate.DeniedProvider{}
	default:
		return geolocate.NewIPProvider(client, cfg.Endpoint)
	}
}
