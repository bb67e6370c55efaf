package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://itunes.apple.com/search", cfg.Catalog.BaseURL)
	assert.Equal(t, "US", cfg.Catalog.Country)
	assert.Equal(t, 25, cfg.Catalog.Limit)
	assert.Equal(t, 200*time.Millisecond, cfg.StartDelay())
	assert.Equal(t, 20, cfg.Playback.HistorySize)
	assert.Equal(t, 10*time.Second, cfg.CatalogTimeout())
	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.Equal(t, 0.85, cfg.Importer.MatchThreshold)
	assert.Equal(t, DefaultHomeSections, cfg.Catalog.HomeSections)
	assert.Equal(t, DefaultTopArtists, cfg.Catalog.TopArtists)
	require.Len(t, cfg.Fallback.Providers, 1)
	assert.Equal(t, "bundled", cfg.Fallback.Providers[0].Type)
	assert.True(t, cfg.IsFilterEnabled("playable_filter"))
	assert.False(t, cfg.IsFilterEnabled("duration_limit_filter"))
	assert.False(t, cfg.HasSpotify())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
catalog:
  country: JP
  limit: 50
  home_sections:
    - title: City Pop
      term: city pop
  top_artists: [Yoasobi]
playback:
  start_delay_ms: 0
  media_root: /srv/media
  player:
    command: ffplay
    args: ["-nodisp", "-autoexit", "{src}"]
storage:
  type: file
  settings:
    dir: /tmp/previewbox
filters:
  duration_limit_filter:
    enabled: true
    settings:
      max_seconds: 600
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "JP", cfg.Catalog.Country)
	assert.Equal(t, 50, cfg.Catalog.Limit)
	require.Len(t, cfg.Catalog.HomeSections, 1)
	assert.Equal(t, "song", cfg.Catalog.HomeSections[0].Entity)
	assert.Equal(t, []string{"Yoasobi"}, cfg.Catalog.TopArtists)
	assert.Equal(t, time.Duration(0), cfg.StartDelay())
	assert.Equal(t, "/srv/media", cfg.Playback.MediaRoot)
	assert.Equal(t, "ffplay", cfg.Playback.Player.Command)
	assert.Equal(t, "file", cfg.Storage.Type)
	assert.Equal(t, "/tmp/previewbox", cfg.Storage.Settings["dir"])
	assert.True(t, cfg.IsFilterEnabled("duration_limit_filter"))
	assert.False(t, cfg.IsFilterEnabled("playable_filter"), "explicit filters replace the defaults")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "env-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "env-secret")
	t.Setenv("LASTFM_API_KEY", "env-lastfm")
	t.Setenv("PREVIEWBOX_MEDIA_ROOT", "/env/media")

	path := writeConfig(t, `
spotify:
  client_id: file-id
lastfm:
  api_key: file-key
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-id", cfg.Spotify.ClientID)
	assert.Equal(t, "env-secret", cfg.Spotify.ClientSecret)
	assert.Equal(t, "env-lastfm", cfg.LastFM.APIKey)
	assert.Equal(t, "/env/media", cfg.Playback.MediaRoot)
	assert.True(t, cfg.HasSpotify())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "catalog: [not, a, map"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid country length",
			mutate:  func(c *Config) { c.Catalog.Country = "JAPAN" },
			wantErr: true,
			errMsg:  "Country",
		},
		{
			name:    "unknown storage type",
			mutate:  func(c *Config) { c.Storage.Type = "redis" },
			wantErr: true,
			errMsg:  "Type",
		},
		{
			name:    "threshold out of range",
			mutate:  func(c *Config) { c.Importer.MatchThreshold = 1.5 },
			wantErr: true,
			errMsg:  "MatchThreshold",
		},
		{
			name:    "home section without term",
			mutate:  func(c *Config) { c.Catalog.HomeSections = []HomeSectionConfig{{Title: "x"}} },
			wantErr: true,
			errMsg:  "Term",
		},
		{
			name:    "unknown provider type",
			mutate:  func(c *Config) { c.Fallback.Providers = []ProviderConfig{{Type: "radio"}} },
			wantErr: true,
			errMsg:  "Type",
		},
		{
			name: "lastfm provider without api key",
			mutate: func(c *Config) {
				c.LastFM.APIKey = ""
				c.Fallback.Providers = []ProviderConfig{{Type: "lastfm"}}
			},
			wantErr: true,
			errMsg:  "api_key",
		},
		{
			name: "playlist provider without spotify",
			mutate: func(c *Config) {
				c.Spotify = SpotifyConfig{}
				c.Fallback.Providers = []ProviderConfig{{Type: "playlist"}}
			},
			wantErr: true,
			errMsg:  "spotify",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr {
				require.Error(t, err, "expected validation to fail")
				assert.Contains(t, err.Error(), tt.errMsg,
					"error message should mention the problematic field")
			} else {
				assert.NoError(t, err, "expected validation to pass")
			}
		})
	}
}
