// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// TrackerConfig holds the checkpoint tracker constants.
type TrackerConfig struct {
	RadiusM         float64 `yaml:"radius_m"`
	MaxLightStorage int     `yaml:"max_light_storage"`
}

// GeocoderConfig selects and tunes the reverse geocoder.
type GeocoderConfig struct {
	Provider   string `yaml:"provider"` // nominatim, static or none
	Endpoint   string `yaml:"endpoint"`
	UserAgent  string `yaml:"user_agent"`
	Language   string `yaml:"language"`
	LookupWait string `yaml:"timeout"`
	MaxLookups int    `yaml:"max_lookups"`
	StaticName string `yaml:"static_name"`
	CacheFor   string `yaml:"cache_ttl"`
}

// Timeout returns the per-lookup timeout.
func (g GeocoderConfig) Timeout() time.Duration {
	return parseDuration(g.LookupWait, DefaultLookupTimeout)
}

// CacheTTL returns how long resolved addresses are cached.
func (g GeocoderConfig) CacheTTL() time.Duration {
	return parseDuration(g.CacheFor, DefaultCacheTTL)
}

// WalkConfig describes the simulated device used by the walk source.
type WalkConfig struct {
	StartLat      float64 `yaml:"start_lat"`
	StartLon      float64 `yaml:"start_lon"`
	StartAlt      float64 `yaml:"start_alt"`
	SpeedMinMPS   float64 `yaml:"speed_min_mps"`
	SpeedMaxMPS   float64 `yaml:"speed_max_mps"`
	TurnMaxDeg    float64 `yaml:"turn_max_deg"`
	LightMeanLux  float64 `yaml:"light_mean_lux"`
	LightNoise    float64 `yaml:"light_noise"`
	LocationEvery string  `yaml:"location_interval"`
	LightEvery    string  `yaml:"light_interval"`
	Seed          int64   `yaml:"seed"`
}

// LocationInterval returns the time between simulated location updates.
func (w WalkConfig) LocationInterval() time.Duration {
	return parseDuration(w.LocationEvery, DefaultLocationInterval)
}

// LightInterval returns the time between simulated light samples.
func (w WalkConfig) LightInterval() time.Duration {
	return parseDuration(w.LightEvery, DefaultLightInterval)
}

// LoggingConfig configures the slog logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Config is the root configuration of a tracker run.
type Config struct {
	DeviceID string         `yaml:"device_id"`
	Tracker  TrackerConfig  `yaml:"tracker"`
	Geocoder GeocoderConfig `yaml:"geocoder"`
	Walk     WalkConfig     `yaml:"walk"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Defaults.
const (
	DefaultDeviceID          = "device-1"
	DefaultRadiusM           = 30.0
	DefaultMaxLightStorage   = 5000
	DefaultProvider          = "nominatim"
	DefaultUserAgent         = "luxtrail/1.0"
	DefaultLookupTimeout     = 2 * time.Second
	DefaultMaxLookups        = 4
	DefaultCacheTTL          = 24 * time.Hour
	DefaultLocationInterval  = time.Second
	DefaultLightInterval     = 200 * time.Millisecond
	DefaultLightMeanLux      = 1000.0
	DefaultSpeedMinMPS       = 1.0
	DefaultSpeedMaxMPS       = 1.8
	DefaultTurnMaxDeg        = 25.0
	DefaultLightNoise        = 0.15
	DefaultNominatimEndpoint = "https://nominatim.openstreetmap.org"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.DeviceID == "" {
		c.DeviceID = DefaultDeviceID
	}
	if c.Tracker.RadiusM <= 0 {
		c.Tracker.RadiusM = DefaultRadiusM
	}
	if c.Tracker.MaxLightStorage <= 0 {
		c.Tracker.MaxLightStorage = DefaultMaxLightStorage
	}
	g := &c.Geocoder
	if g.Provider == "" {
		g.Provider = DefaultProvider
	}
	if g.Endpoint == "" {
		g.Endpoint = DefaultNominatimEndpoint
	}
	if g.UserAgent == "" {
		g.UserAgent = DefaultUserAgent
	}
	if g.MaxLookups <= 0 {
		g.MaxLookups = DefaultMaxLookups
	}
	w := &c.Walk
	if w.SpeedMinMPS <= 0 {
		w.SpeedMinMPS = DefaultSpeedMinMPS
	}
	if w.SpeedMaxMPS <= 0 {
		w.SpeedMaxMPS = DefaultSpeedMaxMPS
	}
	if w.TurnMaxDeg <= 0 {
		w.TurnMaxDeg = DefaultTurnMaxDeg
	}
	if w.LightMeanLux <= 0 {
		w.LightMeanLux = DefaultLightMeanLux
	}
	if w.LightNoise <= 0 {
		w.LightNoise = DefaultLightNoise
	}
	if w.Seed == 0 {
		w.Seed = 1
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Load loads YAML config and validates it against the CUE schema. An empty
// schemaPath uses the embedded schema.
func Load(configPath, schemaPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	return Parse(data, schemaPath)
}

// Parse validates and decodes a YAML document.
func Parse(data []byte, schemaPath string) (*Config, error) {
	if err := Validate(data, schemaPath); err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("cannot decode config: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
