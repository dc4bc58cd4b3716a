package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Catalog     CatalogConfig     `mapstructure:"catalog"`
	Map         MapConfig         `mapstructure:"map"`
	Geolocation GeolocationConfig `mapstructure:"geolocation"`
	Search      SearchConfig      `mapstructure:"search"`
	Sheet       SheetConfig       `mapstructure:"sheet"`
	Log         LogConfig         `mapstructure:"log"`
}

type CatalogConfig struct {
	DBPath string `mapstructure:"db_path"`
}

type MapConfig struct {
	DefaultLat       float64 `mapstructure:"default_lat"`
	DefaultLng       float64 `mapstructure:"default_lng"`
	DefaultZoom      int     `mapstructure:"default_zoom"`
	BasemapShapefile string  `mapstructure:"basemap_shapefile"`
	ClusterCellCols  int     `mapstructure:"cluster_cell_cols"`
	ClusterCellRows  int     `mapstructure:"cluster_cell_rows"`
}

type GeolocationConfig struct {
	Provider     string        `mapstructure:"provider"` // ip, static or off
	Endpoint     string        `mapstructure:"endpoint"`
	Timeout      time.Duration `mapstructure:"timeout"`
	HighAccuracy bool          `mapstructure:"high_accuracy"`
}

type SearchConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Lang     string `mapstructure:"lang"`
	Limit    int    `mapstructure:"limit"`
	ProxyURL string `mapstructure:"proxy_url"`
}

type SheetConfig struct {
	CellPx int `mapstructure:"cell_px"` // virtual pixels per terminal row
	FPS    int `mapstructure:"fps"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Load reads configuration from defaults, an optional pinmap.yaml, an
// optional .env file and PINMAP_* environment variables, in increasing
// precedence. configFile, when set, replaces the search for pinmap.yaml.
func Load(configFile string) (*Config, error) {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("pinmap")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "pinmap"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	// PINMAP_MAP_DEFAULT_LAT -> map.default_lat
	v.SetEnvPrefix("PINMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.db_path", "pinmap.db")
	v.SetDefault("map.default_lat", 37.5665)
	v.SetDefault("map.default_lng", 126.9780)
	v.SetDefault("map.default_zoom", 13)
	v.SetDefault("map.basemap_shapefile", "")
	v.SetDefault("map.cluster_cell_cols", 6)
	v.SetDefault("map.cluster_cell_rows", 3)
	v.SetDefault("geolocation.provider", "ip")
	v.SetDefault("geolocation.endpoint", "http://ip-api.com/json/?fields=status,message,lat,lon,query")
	v.SetDefault("geolocation.timeout", 5*time.Second)
	v.SetDefault("geolocation.high_accuracy", false)
	v.SetDefault("search.endpoint", "https://nominatim.openstreetmap.org/search")
	v.SetDefault("search.lang", "ko")
	v.SetDefault("search.limit", 5)
	v.SetDefault("search.proxy_url", "")
	v.SetDefault("sheet.cell_px", 16)
	v.SetDefault("sheet.fps", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "pinmap.log")
}

// Validate checks that configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Catalog.DBPath == "" {
		errs = append(errs, "catalog.db_path is required")
	}
	if c.Map.DefaultLat < -90 || c.Map.DefaultLat > 90 {
		errs = append(errs, fmt.Sprintf("map.default_lat must be -90..90, got %v", c.Map.DefaultLat))
	}
	if c.Map.DefaultLng < -180 || c.Map.DefaultLng > 180 {
		errs = append(errs, fmt.Sprintf("map.default_lng must be -180..180, got %v", c.Map.DefaultLng))
	}
	if c.Map.DefaultZoom < 1 || c.Map.DefaultZoom > 18 {
		errs = append(errs, fmt.Sprintf("map.default_zoom must be 1-18, got %d", c.Map.DefaultZoom))
	}
	if c.Map.ClusterCellCols <= 0 || c.Map.ClusterCellRows <= 0 {
		errs = append(errs, "map.cluster_cell_cols and map.cluster_cell_rows must be positive")
	}
	switch c.Geolocation.Provider {
	case "ip", "static", "off":
	default:
		errs = append(errs, fmt.Sprintf("geolocation.provider must be ip, static or off, got %q", c.Geolocation.Provider))
	}
	if c.Geolocation.Timeout <= 0 {
		errs = append(errs, "geolocation.timeout must be positive")
	}
	if c.Search.Endpoint == "" {
		errs = append(errs, "search.endpoint is required")
	}
	if c.Search.Limit <= 0 {
		errs = append(errs, "search.limit must be positive")
	}
	if c.Sheet.CellPx <= 0 {
		errs = append(errs, "sheet.cell_px must be positive")
	}
	if c.Sheet.FPS <= 0 || c.Sheet.FPS > 240 {
		errs = append(errs, fmt.Sprintf("sheet.fps must be 1-240, got %d", c.Sheet.FPS))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
