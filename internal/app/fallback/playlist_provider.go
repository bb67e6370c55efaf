package fallback

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/previewbox/internal/domain/track"
	"github.com/osa030/previewbox/internal/infra/spotify"
)

// PlaylistSource reads remote playlists.
type PlaylistSource interface {
	GetPlaylist(ctx context.Context, playlistURL string) (*spotify.Playlist, error)
}

type PlaylistProviderConfig struct {
	PlaylistURL string `mapstructure:"playlist_url" validate:"required"`
	Limit       int    `mapstructure:"limit" default:"25" validate:"gte=1,lte=100"`
	ArtistName  string `mapstructure:"artist_name"`
}

// PlaylistProvider builds the default artist from the head of a Spotify
// playlist. The playlist is fetched once; later builds reuse the result.
type PlaylistProvider struct {
	playlists PlaylistSource
	resolver  *resolver
	config    *PlaylistProviderConfig

	cached *track.Artist
}

// NewPlaylistProvider creates a new PlaylistProvider.
func NewPlaylistProvider(playlists PlaylistSource, catalog Searcher, settings map[string]any) (*PlaylistProvider, error) {
	if playlists == nil {
		return nil, errors.New("spotify client is required")
	}
	if catalog == nil {
		return nil, errors.New("catalog client is required")
	}
	var config PlaylistProviderConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}
	return &PlaylistProvider{
		playlists: playlists,
		resolver:  newResolver(catalog),
		config:    &config,
	}, nil
}

// DefaultArtist resolves up to Limit playlist entries on the catalog.
// The artist is named after the playlist unless artist_name is set.
func (p *PlaylistProvider) DefaultArtist(ctx context.Context) (track.Artist, error) {
	if p.cached != nil {
		return *p.cached, nil
	}

	remote, err := p.playlists.GetPlaylist(ctx, p.config.PlaylistURL)
	if err != nil {
		return track.Artist{}, errors.Wrap(err, "failed to get playlist")
	}

	entries := remote.Tracks
	if len(entries) > p.config.Limit {
		entries = entries[:p.config.Limit]
	}
	refs := make([]trackRef, 0, len(entries))
	for _, e := range entries {
		refs = append(refs, trackRef{Name: e.Name, Artist: e.Artist})
	}
	tracks := p.resolver.resolveAll(ctx, refs)
	zlog.Debug().Msgf("fallback: playlist id=%s entries=%d resolved=%d", remote.ID, len(entries), len(tracks))

	name := p.config.ArtistName
	if name == "" {
		name = remote.Name
	}
	artist := track.Artist{Name: name, Tracks: tracks}
	if len(tracks) > 0 {
		p.cached = &artist
	}
	return artist, nil
}

// Name returns the provider name.
func (p *PlaylistProvider) Name() string {
	return "playlist"
}
