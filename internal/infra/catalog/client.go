// Package catalog provides a client for an iTunes-style music search API.
package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/osa030/previewbox/internal/domain/track"
)

// DefaultBaseURL is the public iTunes search endpoint.
const DefaultBaseURL = "https://itunes.apple.com/search"

// Config represents catalog client configuration.
type Config struct {
	BaseURL   string
	Country   string
	Limit     int
	Timeout   time.Duration
	RateLimit float64 // Requests per second, 0 disables pacing
}

// SectionQuery describes one home section.
type SectionQuery struct {
	Title  string
	Term   string
	Entity string
}

// Section is a titled list of tracks.
type Section struct {
	Title  string
	Tracks []track.Track
}

// ArtistSummary describes an artist through its top hit.
type ArtistSummary struct {
	ID       int64
	Name     string
	Genre    string
	Image    string
	TopTrack track.Track
}

// searchResponse is the search endpoint payload.
type searchResponse struct {
	ResultCount int    `json:"resultCount"`
	Results     []Item `json:"results"`
}

// Client is a catalog API client.
type Client struct {
	baseURL    string
	country    string
	limit      int
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New creates a new catalog client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 25
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		country:    cfg.Country,
		limit:      cfg.Limit,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// Search returns the tracks matching term.
func (c *Client) Search(ctx context.Context, term string) ([]track.Track, error) {
	params := url.Values{}
	params.Set("term", term)
	params.Set("media", "music")
	params.Set("entity", "song")
	params.Set("limit", strconv.Itoa(c.limit))

	items, err := c.query(ctx, "search", params)
	if err != nil {
		return nil, err
	}
	return NormalizeAll(items), nil
}

// HomeSections runs one query per section concurrently.
// Any failure fails the whole fetch. Section order follows queries.
func (c *Client) HomeSections(ctx context.Context, queries []SectionQuery) ([]Section, error) {
	sections := make([]Section, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			entity := q.Entity
			if entity == "" {
				entity = "song"
			}
			params := url.Values{}
			params.Set("term", q.Term)
			params.Set("media", "music")
			params.Set("entity", entity)
			params.Set("limit", strconv.Itoa(c.limit))

			items, err := c.query(gctx, "home section "+q.Title, params)
			if err != nil {
				return err
			}
			sections[i] = Section{Title: q.Title, Tracks: NormalizeAll(items)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sections, nil
}

// TopArtists looks up each artist's top hit concurrently.
// Any failure fails the whole fetch. Artists without results are skipped.
func (c *Client) TopArtists(ctx context.Context, names []string) ([]ArtistSummary, error) {
	found := make([]*ArtistSummary, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			params := url.Values{}
			params.Set("term", name)
			params.Set("media", "music")
			params.Set("entity", "song")
			params.Set("attribute", "artistTerm")
			params.Set("limit", "1")

			items, err := c.query(gctx, "top artist "+name, params)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				zlog.Debug().Msgf("catalog: no results for artist: name=%s", name)
				return nil
			}

			top := items[0]
			found[i] = &ArtistSummary{
				ID:       top.ArtistID,
				Name:     top.ArtistName,
				Genre:    top.PrimaryGenreName,
				Image:    UpscaleArtwork(top.ArtworkURL100),
				TopTrack: Normalize(top),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	artists := make([]ArtistSummary, 0, len(names))
	for _, a := range found {
		if a != nil {
			artists = append(artists, *a)
		}
	}
	return artists, nil
}

// query performs one paced GET and decodes the results.
func (c *Client) query(ctx context.Context, op string, params url.Values) ([]Item, error) {
	if c.country != "" {
		params.Set("country", c.country)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Op: op, Message: "request cancelled", Err: err}
	}

	reqURL := c.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Op: op, Message: "network error", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Op: op, Status: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			Op:      op,
			Status:  resp.StatusCode,
			Message: statusMessage(resp.StatusCode, body),
		}
	}

	var response searchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &FetchError{Op: op, Status: resp.StatusCode, Message: "invalid response", Err: err}
	}

	zlog.Debug().Msgf("catalog: %s: results=%d elapsed=%v", op, len(response.Results), time.Since(start))
	return response.Results, nil
}

// statusMessage builds a readable message from a failed response.
func statusMessage(status int, body []byte) string {
	var apiError struct {
		ErrorMessage string `json:"errorMessage"`
	}
	if err := json.Unmarshal(body, &apiError); err == nil && apiError.ErrorMessage != "" {
		return apiError.ErrorMessage
	}
	text := http.StatusText(status)
	if text == "" {
		text = "unexpected status"
	}
	return strings.ToLower(text)
}
