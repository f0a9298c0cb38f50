// Package config loads the geofence service configuration from TOML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the complete service configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`
	Storage StorageConfig `toml:"storage"`
	Mission MissionConfig `toml:"mission"`
	Origin  OriginConfig  `toml:"origin"`
	Feed    FeedConfig    `toml:"feed"`
	Metrics MetricsConfig `toml:"metrics"`
}

type ServerConfig struct {
	Host               string   `toml:"host"`
	Port               int      `toml:"port"`
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// StorageConfig points at the evaluation log. An empty path disables storage.
type StorageConfig struct {
	SQLitePath string `toml:"sqlite_path"`
}

// MissionConfig names the XML SpatialConstraints document to load at startup.
type MissionConfig struct {
	File string `toml:"file"`
}

// OriginConfig is the initial local tangent plane origin.
type OriginConfig struct {
	Latitude       float64 `toml:"latitude"`
	Longitude      float64 `toml:"longitude"`
	Altitude       float64 `toml:"altitude"`
	SmoothingAlpha float64 `toml:"smoothing_alpha"`
}

type FeedConfig struct {
	Enabled               bool   `toml:"enabled"`
	URL                   string `toml:"url"`
	PollIntervalSeconds   int    `toml:"poll_interval_seconds"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

func (f FeedConfig) PollInterval() time.Duration {
	return time.Duration(f.PollIntervalSeconds) * time.Second
}

func (f FeedConfig) RequestTimeout() time.Duration {
	return time.Duration(f.RequestTimeoutSeconds) * time.Second
}

type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// Default returns the configuration used for any key a file leaves out.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8080,
			CORSAllowedOrigins: []string{"*"},
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Storage: StorageConfig{SQLitePath: "geofence.db"},
		Origin:  OriginConfig{SmoothingAlpha: 0.25},
		Feed: FeedConfig{
			PollIntervalSeconds:   2,
			RequestTimeoutSeconds: 5,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(string(data))
}

// Parse decodes a TOML document over the defaults and validates the result.
func Parse(data string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not json or console", c.Logging.Format))
	}
	if c.Origin.Latitude < -90 || c.Origin.Latitude > 90 {
		errs = append(errs, fmt.Errorf("origin.latitude %g out of range", c.Origin.Latitude))
	}
	if c.Origin.Longitude < -180 || c.Origin.Longitude > 180 {
		errs = append(errs, fmt.Errorf("origin.longitude %g out of range", c.Origin.Longitude))
	}
	if c.Origin.SmoothingAlpha <= 0 || c.Origin.SmoothingAlpha > 1 {
		errs = append(errs, fmt.Errorf("origin.smoothing_alpha %g must be in (0, 1]", c.Origin.SmoothingAlpha))
	}
	if c.Feed.Enabled {
		if c.Feed.URL == "" {
			errs = append(errs, errors.New("feed.url is required when the feed is enabled"))
		}
		if c.Feed.PollIntervalSeconds <= 0 {
			errs = append(errs, errors.New("feed.poll_interval_seconds must be positive"))
		}
		if c.Feed.RequestTimeoutSeconds <= 0 {
			errs = append(errs, errors.New("feed.request_timeout_seconds must be positive"))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
