package fallback

import (
	"context"
	_ "embed"
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/previewbox/internal/domain/track"
)

//go:embed artist.json
var defaultArtistJSON []byte

type BundledProviderConfig struct {
	Path string `mapstructure:"path"`
}

// BundledProvider serves an artist described by a JSON file, or the embedded
// one when no path is configured. Song paths are resolved by the playback
// media root.
type BundledProvider struct {
	config *BundledProviderConfig
}

// NewBundledProvider creates a new BundledProvider.
func NewBundledProvider(settings map[string]any) (*BundledProvider, error) {
	var config BundledProviderConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}
	return &BundledProvider{config: &config}, nil
}

// DefaultArtist loads and parses the artist JSON.
func (p *BundledProvider) DefaultArtist(ctx context.Context) (track.Artist, error) {
	data := defaultArtistJSON
	if p.config.Path != "" {
		b, err := os.ReadFile(p.config.Path)
		if err != nil {
			return track.Artist{}, errors.Wrapf(err, "failed to read artist file %s", p.config.Path)
		}
		data = b
	}
	return parseArtist(data)
}

// Name returns the provider name.
func (p *BundledProvider) Name() string {
	return "bundled"
}

// parseArtist decodes an artist document. Tracks default to the bundled
// source and to the artist's name.
func parseArtist(data []byte) (track.Artist, error) {
	var artist track.Artist
	if err := json.Unmarshal(data, &artist); err != nil {
		return track.Artist{}, errors.Wrap(err, "failed to parse artist")
	}
	for i := range artist.Tracks {
		if artist.Tracks[i].Source == "" {
			artist.Tracks[i].Source = track.SourceBundled
		}
		if artist.Tracks[i].ArtistName == "" {
			artist.Tracks[i].ArtistName = artist.Name
		}
	}
	zlog.Debug().Msgf("fallback: parsed bundled artist name=%s tracks=%d", artist.Name, len(artist.Tracks))
	return artist, nil
}
