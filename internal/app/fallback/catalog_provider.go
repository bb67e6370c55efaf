package fallback

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/osa030/previewbox/internal/domain/track"
)

type CatalogProviderConfig struct {
	Term       string `mapstructure:"term" validate:"required"`
	ArtistName string `mapstructure:"artist_name"`
}

// CatalogProvider builds the default artist from a catalog search.
type CatalogProvider struct {
	catalog Searcher
	config  *CatalogProviderConfig
}

// NewCatalogProvider creates a new CatalogProvider.
func NewCatalogProvider(catalog Searcher, settings map[string]any) (*CatalogProvider, error) {
	if catalog == nil {
		return nil, errors.New("catalog client is required")
	}
	var config CatalogProviderConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}
	if config.ArtistName == "" {
		config.ArtistName = config.Term
	}
	return &CatalogProvider{catalog: catalog, config: &config}, nil
}

// DefaultArtist searches the configured term.
func (p *CatalogProvider) DefaultArtist(ctx context.Context) (track.Artist, error) {
	tracks, err := p.catalog.Search(ctx, p.config.Term)
	if err != nil {
		return track.Artist{}, errors.Wrapf(err, "failed to search %q", p.config.Term)
	}
	return track.Artist{Name: p.config.ArtistName, Tracks: tracks}, nil
}

// Name returns the provider name.
func (p *CatalogProvider) Name() string {
	return "catalog"
}
