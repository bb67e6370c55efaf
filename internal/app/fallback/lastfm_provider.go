package fallback

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/previewbox/internal/domain/track"
)

type LastFmProviderConfig struct {
	Tag        string `mapstructure:"tag" validate:"required"`
	Limit      int    `mapstructure:"limit" default:"10" validate:"gte=1,lte=50"`
	ArtistName string `mapstructure:"artist_name"`
}

// LastFmProvider builds the default artist from the top tracks of a Last.fm
// tag, each resolved to a playable catalog preview.
type LastFmProvider struct {
	lastfm   TopTrackSource
	resolver *resolver
	config   *LastFmProviderConfig
}

// NewLastFmProvider creates a new LastFmProvider.
func NewLastFmProvider(lastfm TopTrackSource, catalog Searcher, settings map[string]any) (*LastFmProvider, error) {
	if lastfm == nil {
		return nil, errors.New("last.fm client is required")
	}
	if catalog == nil {
		return nil, errors.New("catalog client is required")
	}
	var config LastFmProviderConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}
	if config.ArtistName == "" {
		config.ArtistName = "Last.fm: " + config.Tag
	}
	return &LastFmProvider{
		lastfm:   lastfm,
		resolver: newResolver(catalog),
		config:   &config,
	}, nil
}

// DefaultArtist resolves the tag's top tracks, keeping chart order.
func (p *LastFmProvider) DefaultArtist(ctx context.Context) (track.Artist, error) {
	top, err := p.lastfm.GetTopTracks(ctx, p.config.Tag, p.config.Limit)
	if err != nil {
		return track.Artist{}, errors.Wrap(err, "failed to get top tracks")
	}

	refs := make([]trackRef, 0, len(top))
	for _, t := range top {
		refs = append(refs, trackRef{Name: t.Name, Artist: t.Artist})
	}
	tracks := p.resolver.resolveAll(ctx, refs)
	zlog.Debug().Msgf("fallback: lastfm tag=%s top=%d resolved=%d", p.config.Tag, len(top), len(tracks))

	return track.Artist{Name: p.config.ArtistName, Tracks: tracks}, nil
}

// Name returns the provider name.
func (p *LastFmProvider) Name() string {
	return "lastfm"
}
