// Package lastfm provides a client for the Last.fm API.
package lastfm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// Client is a Last.fm API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	// Cache for tag top tracks, keyed by tag
	tagTracksCache map[string][]TopTrack
	cacheMu        sync.RWMutex
}

// Config represents Last.fm client configuration.
type Config struct {
	APIKey string
}

// TopTrack represents a top track for a tag.
type TopTrack struct {
	Name   string
	Artist string
}

// ChartArtist represents an artist on the global chart.
type ChartArtist struct {
	Name      string
	Listeners int64
	PlayCount int64
}

// getTopTracksResponse represents the response from tag.getTopTracks API.
type getTopTracksResponse struct {
	Tracks struct {
		Track []struct {
			Name   string `json:"name"`
			Artist struct {
				Name string `json:"name"`
			} `json:"artist"`
		} `json:"track"`
	} `json:"tracks"`
}

// getTopArtistsResponse represents the response from chart.getTopArtists API.
// Counts are encoded as strings.
type getTopArtistsResponse struct {
	Artists struct {
		Artist []struct {
			Name      string `json:"name"`
			Listeners string `json:"listeners"`
			PlayCount string `json:"playcount"`
		} `json:"artist"`
	} `json:"artists"`
}

// apiError represents an error response from Last.fm API.
type apiError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// New creates a new Last.fm client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("last.fm API key is required")
	}

	return &Client{
		apiKey:         cfg.APIKey,
		baseURL:        "https://ws.audioscrobbler.com/2.0/",
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		tagTracksCache: make(map[string][]TopTrack),
	}, nil
}

// GetTopTracks retrieves top tracks for a tag from Last.fm.
// Reference: https://www.last.fm/api/show/tag.getTopTracks
func (c *Client) GetTopTracks(ctx context.Context, tagName string, limit int) ([]TopTrack, error) {
	if tagName == "" {
		return nil, errors.New("tag name is required")
	}
	limit = clampLimit(limit)

	cacheKey := tagName + ":" + strconv.Itoa(limit)
	c.cacheMu.RLock()
	if tracks, ok := c.tagTracksCache[cacheKey]; ok {
		c.cacheMu.RUnlock()
		zlog.Debug().Msgf("lastfm: using cached top tracks for tag: %s", tagName)
		return tracks, nil
	}
	c.cacheMu.RUnlock()

	params := url.Values{}
	params.Set("method", "tag.getTopTracks")
	params.Set("tag", tagName)
	params.Set("limit", strconv.Itoa(limit))

	var response getTopTracksResponse
	if err := c.call(ctx, params, &response); err != nil {
		return nil, err
	}

	tracks := make([]TopTrack, 0, len(response.Tracks.Track))
	for _, t := range response.Tracks.Track {
		tracks = append(tracks, TopTrack{
			Name:   t.Name,
			Artist: t.Artist.Name,
		})
	}

	c.cacheMu.Lock()
	c.tagTracksCache[cacheKey] = tracks
	c.cacheMu.Unlock()
	zlog.Debug().Msgf("lastfm: cached top tracks for tag: %s (count: %d)", tagName, len(tracks))

	return tracks, nil
}

// GetChartTopArtists retrieves the global top artists chart.
// Reference: https://www.last.fm/api/show/chart.getTopArtists
func (c *Client) GetChartTopArtists(ctx context.Context, limit int) ([]ChartArtist, error) {
	limit = clampLimit(limit)

	params := url.Values{}
	params.Set("method", "chart.getTopArtists")
	params.Set("limit", strconv.Itoa(limit))

	var response getTopArtistsResponse
	if err := c.call(ctx, params, &response); err != nil {
		return nil, err
	}

	artists := make([]ChartArtist, 0, len(response.Artists.Artist))
	for i, a := range response.Artists.Artist {
		if i >= limit {
			break
		}
		listeners, _ := strconv.ParseInt(a.Listeners, 10, 64)
		plays, _ := strconv.ParseInt(a.PlayCount, 10, 64)
		artists = append(artists, ChartArtist{
			Name:      a.Name,
			Listeners: listeners,
			PlayCount: plays,
		})
	}
	return artists, nil
}

// call performs a GET for the given method params and decodes the body into out.
func (c *Client) call(ctx context.Context, params url.Values, out any) error {
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")

	reqURL := c.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	// Last.fm reports API errors in the body, sometimes with a 200 status
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != 0 {
		return errors.Errorf("last.fm API error %d: %s", apiErr.Error, apiErr.Message)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("last.fm API returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "failed to parse response")
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
