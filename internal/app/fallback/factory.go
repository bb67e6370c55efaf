package fallback

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/previewbox/internal/infra/config"
)

// NewProviderChainFromConfig creates a provider chain from configuration.
// lastfm and playlists may be nil when no provider of their type is configured.
func NewProviderChainFromConfig(cfg *config.Config, catalog Searcher, lastfm TopTrackSource, playlists PlaylistSource) (*ProviderChain, error) {
	if len(cfg.Fallback.Providers) == 0 {
		return nil, errors.New("no fallback providers configured")
	}

	var providers []ProviderWithMetadata

	for i, pcfg := range cfg.Fallback.Providers {
		var provider Provider
		var err error
		zlog.Debug().Msgf("fallback: creating provider index=%d type=%s settings=%+v", i+1, pcfg.Type, pcfg.Settings)
		switch pcfg.Type {
		case "bundled":
			provider, err = NewBundledProvider(pcfg.Settings)

		case "catalog":
			provider, err = NewCatalogProvider(catalog, pcfg.Settings)

		case "lastfm":
			if lastfm == nil {
				err = errors.New("last.fm is not configured")
				break
			}
			provider, err = NewLastFmProvider(lastfm, catalog, pcfg.Settings)

		case "playlist":
			if playlists == nil {
				err = errors.New("spotify is not configured")
				break
			}
			provider, err = NewPlaylistProvider(playlists, catalog, pcfg.Settings)

		default:
			return nil, errors.Newf("unsupported provider type: %s (provider index %d)", pcfg.Type, i)
		}

		if err != nil {
			return nil, errors.Wrapf(err, "failed to create provider (index %d, type %s)", i, pcfg.Type)
		}

		displayName := pcfg.DisplayName
		if displayName == "" {
			displayName = provider.Name()
		}
		providers = append(providers, ProviderWithMetadata{
			Provider:    provider,
			DisplayName: displayName,
		})

		zlog.Info().Msgf("fallback: registered provider index=%d type=%s display_name=%s", i+1, pcfg.Type, displayName)
	}

	return NewProviderChain(providers), nil
}
