package fallback

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/previewbox/internal/domain/track"
)

// ProviderWithMetadata wraps a provider with its metadata.
type ProviderWithMetadata struct {
	Provider    Provider
	DisplayName string
}

// ProviderChain tries multiple providers in order until one yields an artist with tracks.
type ProviderChain struct {
	providers []ProviderWithMetadata
}

// NewProviderChain creates a new provider chain.
func NewProviderChain(providers []ProviderWithMetadata) *ProviderChain {
	return &ProviderChain{
		providers: providers,
	}
}

// DefaultArtist returns the first non-empty artist. When every provider
// fails or comes back empty it returns an empty artist and an error; callers
// may keep using the empty artist, which makes fallback navigation a no-op.
func (c *ProviderChain) DefaultArtist(ctx context.Context) (track.Artist, error) {
	for i, pm := range c.providers {
		zlog.Debug().Msgf("fallback: trying provider index=%d total=%d name=%s provider_type=%s",
			i+1, len(c.providers), pm.DisplayName, pm.Provider.Name())

		artist, err := pm.Provider.DefaultArtist(ctx)
		if err != nil {
			zlog.Warn().Msgf("fallback: provider failed, trying next: provider=%s error=%v", pm.DisplayName, err)
			continue
		}
		if len(artist.Tracks) == 0 {
			zlog.Debug().Msgf("fallback: provider returned no tracks: provider=%s", pm.DisplayName)
			continue
		}

		zlog.Info().Msgf("fallback: default artist resolved provider=%s artist=%s tracks=%d",
			pm.DisplayName, artist.Name, len(artist.Tracks))
		return artist, nil
	}
	return track.Artist{}, errors.New("all providers failed to return a default artist")
}

// Name returns the chain name.
func (c *ProviderChain) Name() string {
	return "provider_chain"
}
