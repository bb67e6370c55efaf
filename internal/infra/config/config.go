// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Catalog  CatalogConfig           `yaml:"catalog"`
	Playback PlaybackConfig          `yaml:"playback"`
	Storage  StorageConfig           `yaml:"storage"`
	Fallback FallbackConfig          `yaml:"fallback"`
	Filters  map[string]FilterConfig `yaml:"filters"`
	LastFM   LastFMConfig            `yaml:"lastfm"`
	Spotify  SpotifyConfig           `yaml:"spotify"`
	Importer ImporterConfig          `yaml:"importer"`
}

// CatalogConfig represents catalog API configuration.
type CatalogConfig struct {
	BaseURL         string              `yaml:"base_url" default:"https://itunes.apple.com/search" validate:"required,url"`
	Country         string              `yaml:"country" default:"US" validate:"omitempty,len=2"`
	Limit           int                 `yaml:"limit" default:"25" validate:"gte=1,lte=200"`
	TimeoutSec      int                 `yaml:"timeout_sec" default:"10" validate:"gte=1,lte=120"`
	RateLimitPerSec float64             `yaml:"rate_limit_per_sec" default:"0" validate:"gte=0"`
	HomeSections    []HomeSectionConfig `yaml:"home_sections" validate:"dive"`
	TopArtists      []string            `yaml:"top_artists" validate:"dive,required"`
}

// HomeSectionConfig represents a single home section query.
type HomeSectionConfig struct {
	Title  string `yaml:"title" validate:"required"`
	Term   string `yaml:"term" validate:"required"`
	Entity string `yaml:"entity" default:"song"`
}

// PlaybackConfig represents playback control configuration.
type PlaybackConfig struct {
	StartDelayMs int          `yaml:"start_delay_ms" default:"200" validate:"gte=0,lte=5000"`
	HistorySize  int          `yaml:"history_size" default:"20" validate:"gte=1,lte=500"`
	MediaRoot    string       `yaml:"media_root"`
	Player       PlayerConfig `yaml:"player"`
}

// PlayerConfig represents the external audio player.
// An empty command selects the silent virtual output.
type PlayerConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// StorageConfig represents durable storage configuration.
type StorageConfig struct {
	Type     string         `yaml:"type" default:"sqlite" validate:"oneof=sqlite file memory"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// FallbackConfig represents default artist providers.
type FallbackConfig struct {
	Providers []ProviderConfig `yaml:"providers" validate:"dive"`
}

// ProviderConfig represents a single default artist provider configuration.
type ProviderConfig struct {
	Type        string         `yaml:"type" validate:"required,oneof=bundled catalog lastfm playlist"`
	DisplayName string         `yaml:"display_name"`
	Settings    map[string]any `yaml:"settings,omitempty"`
}

// FilterConfig represents a filter's configuration.
type FilterConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// LastFMConfig represents Last.fm API configuration.
type LastFMConfig struct {
	APIKey     string `yaml:"api_key"`
	ChartLimit int    `yaml:"chart_limit" default:"10" validate:"gte=1,lte=100"`
}

// SpotifyConfig represents Spotify API configuration. Only the importer uses it.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RefreshToken string `yaml:"refresh_token"`
	Market       string `yaml:"market" validate:"omitempty,len=2" default:"US"`
}

// ImporterConfig represents playlist import configuration.
type ImporterConfig struct {
	MatchThreshold float64 `yaml:"match_threshold" default:"0.85" validate:"gt=0,lte=1"`
}

// DefaultHomeSections are used when no home sections are configured.
var DefaultHomeSections = []HomeSectionConfig{
	{Title: "Top Hits", Term: "top hits", Entity: "song"},
	{Title: "New Releases", Term: "new music", Entity: "song"},
	{Title: "Chill", Term: "chill", Entity: "song"},
}

// DefaultTopArtists are used when Last.fm is not configured.
var DefaultTopArtists = []string{
	"Taylor Swift", "The Weeknd", "Billie Eilish", "Drake", "Dua Lipa", "Bad Bunny",
}

// Load loads configuration from a YAML file.
// An empty path yields the defaults.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	cfg.setListDefaults()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REFRESH_TOKEN"); v != "" {
		c.Spotify.RefreshToken = v
	}
	if v := os.Getenv("LASTFM_API_KEY"); v != "" {
		c.LastFM.APIKey = v
	}
	if v := os.Getenv("PREVIEWBOX_MEDIA_ROOT"); v != "" {
		c.Playback.MediaRoot = v
	}
}

// setListDefaults fills list sections that struct tags cannot default.
func (c *Config) setListDefaults() {
	if len(c.Catalog.HomeSections) == 0 {
		c.Catalog.HomeSections = append([]HomeSectionConfig(nil), DefaultHomeSections...)
	}
	for i := range c.Catalog.HomeSections {
		if c.Catalog.HomeSections[i].Entity == "" {
			c.Catalog.HomeSections[i].Entity = "song"
		}
	}
	if len(c.Catalog.TopArtists) == 0 {
		c.Catalog.TopArtists = append([]string(nil), DefaultTopArtists...)
	}
	if len(c.Fallback.Providers) == 0 {
		c.Fallback.Providers = []ProviderConfig{{Type: "bundled", DisplayName: "Bundled"}}
	}
	if c.Filters == nil {
		c.Filters = map[string]FilterConfig{
			"playable_filter":        {Enabled: true},
			"duplicate_track_filter": {Enabled: true},
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	for _, p := range c.Fallback.Providers {
		if p.Type == "lastfm" && c.LastFM.APIKey == "" {
			return errors.New("lastfm fallback provider requires lastfm.api_key")
		}
		if p.Type == "playlist" && !c.HasSpotify() {
			return errors.New("playlist fallback provider requires spotify.client_id and spotify.client_secret")
		}
	}
	return nil
}

// StartDelay returns the playback start delay.
func (c *Config) StartDelay() time.Duration {
	return time.Duration(c.Playback.StartDelayMs) * time.Millisecond
}

// CatalogTimeout returns the catalog request timeout.
func (c *Config) CatalogTimeout() time.Duration {
	return time.Duration(c.Catalog.TimeoutSec) * time.Second
}

// HasSpotify reports whether Spotify credentials are configured.
func (c *Config) HasSpotify() bool {
	return c.Spotify.ClientID != "" && c.Spotify.ClientSecret != ""
}

// IsFilterEnabled checks if a filter is enabled.
func (c *Config) IsFilterEnabled(filterName string) bool {
	if f, ok := c.Filters[filterName]; ok {
		return f.Enabled
	}
	return false
}
