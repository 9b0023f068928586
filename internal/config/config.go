package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Overpass OverpassConfig `mapstructure:"overpass"`
	Map      MapConfig      `mapstructure:"map"`
	Log      LogConfig      `mapstructure:"log"`
}

type OverpassConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	TimeoutSec     int    `mapstructure:"timeout_sec"`      // server-side [timeout:N]
	HTTPTimeoutSec int    `mapstructure:"http_timeout_sec"` // whole round trip
}

type MapConfig struct {
	Lat        float64 `mapstructure:"lat"`
	Lon        float64 `mapstructure:"lon"`
	Zoom       float64 `mapstructure:"zoom"`
	MinZoom    float64 `mapstructure:"min_zoom"` // footprint fetch gate
	DebounceMs int     `mapstructure:"debounce_ms"`
}

type LogConfig struct {
	File   string `mapstructure:"file"`
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from an optional yaml file and environment
// variables. path may be empty, in which case floormap.yaml is searched in
// the usual places.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("overpass.endpoint", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.timeout_sec", 25)
	v.SetDefault("overpass.http_timeout_sec", 40)
	v.SetDefault("map.lat", 40.711)
	v.SetDefault("map.lon", -74.009)
	v.SetDefault("map.zoom", 16)
	v.SetDefault("map.min_zoom", 15)
	v.SetDefault("map.debounce_ms", 500)
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("floormap")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/floormap")
		_ = v.ReadInConfig() // OK if missing
	}

	// Environment variables: FLOORMAP_OVERPASS_ENDPOINT → overpass.endpoint
	v.SetEnvPrefix("FLOORMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
