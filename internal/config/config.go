// Package config assembles runtime settings from defaults, an optional YAML
// file, and environment variables, in that order.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/kyleolivo/fogandfern/internal/catalog"
)

// CityConfig declares one supported city and its seed coordinates, used when
// the loader has to create the City row on first load.
type CityConfig struct {
	DisplayName     string  `yaml:"display_name"`
	CenterLatitude  float64 `yaml:"center_latitude"`
	CenterLongitude float64 `yaml:"center_longitude"`
	MinLatitude     float64 `yaml:"min_latitude"`
	MinLongitude    float64 `yaml:"min_longitude"`
	MaxLatitude     float64 `yaml:"max_latitude"`
	MaxLongitude    float64 `yaml:"max_longitude"`
	DefaultZoom     float64 `yaml:"default_zoom"`
	DatasetID       string  `yaml:"dataset_id"`
}

// Config holds runtime settings for the engine.
type Config struct {
	Port           string       `yaml:"port"`
	CloudDSN       string       `yaml:"cloud_dsn"`
	LocalStorePath string       `yaml:"local_store_path"`
	DatasetPath    string       `yaml:"dataset_path"`
	Cities         []CityConfig `yaml:"cities"`
}

// Defaults returns development defaults: no cloud store, a local SQLite
// file, the bundled San Francisco dataset.
func Defaults() *Config {
	return &Config{
		Port:           "5050",
		LocalStorePath: "fogandfern.db",
		DatasetPath:    "data/parks.json",
		Cities: []CityConfig{
			{
				DisplayName:     "San Francisco",
				CenterLatitude:  37.7749,
				CenterLongitude: -122.4194,
				MinLatitude:     37.703,
				MinLongitude:    -122.527,
				MaxLatitude:     37.832,
				MaxLongitude:    -122.349,
				DefaultZoom:     12,
				DatasetID:       "gtr9-ntp6", // DataSF park lands resource
			},
		},
	}
}

// Load builds the config: defaults, then the YAML file at path (skipped when
// path is empty or the file does not exist), then env overrides.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.CloudDSN = v
	}
	if v := os.Getenv("LOCAL_STORE_PATH"); v != "" {
		cfg.LocalStorePath = v
	}
	if v := os.Getenv("DATASET_PATH"); v != "" {
		cfg.DatasetPath = v
	}

	return cfg, nil
}

// CityDefaults converts the configured cities into the loader's seed map,
// keyed by machine name.
func (c *Config) CityDefaults() map[string]catalog.CityDefaults {
	out := make(map[string]catalog.CityDefaults, len(c.Cities))
	for _, city := range c.Cities {
		out[catalog.MachineName(city.DisplayName)] = catalog.CityDefaults{
			DisplayName:     city.DisplayName,
			CenterLatitude:  city.CenterLatitude,
			CenterLongitude: city.CenterLongitude,
			MinLatitude:     city.MinLatitude,
			MinLongitude:    city.MinLongitude,
			MaxLatitude:     city.MaxLatitude,
			MaxLongitude:    city.MaxLongitude,
			DefaultZoom:     city.DefaultZoom,
			DatasetID:       city.DatasetID,
		}
	}
	return out
}
