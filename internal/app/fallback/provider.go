// Package fallback provides the default artist whose tracks are played when
// nothing else is queued.
package fallback

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/osa030/previewbox/internal/domain/track"
	"github.com/osa030/previewbox/internal/infra/lastfm"
)

// Provider is the interface for default artist providers.
type Provider interface {
	// DefaultArtist builds the artist. An artist without tracks counts as a miss.
	DefaultArtist(ctx context.Context) (track.Artist, error)

	// Name returns the provider name (used in config).
	Name() string
}

// Searcher is the catalog search the providers resolve tracks with.
type Searcher interface {
	Search(ctx context.Context, term string) ([]track.Track, error)
}

// TopTrackSource lists popular tracks for a tag.
type TopTrackSource interface {
	GetTopTracks(ctx context.Context, tagName string, limit int) ([]lastfm.TopTrack, error)
}

// decodeSettings decodes a free-form settings map into out, then applies
// defaults and validation.
func decodeSettings(settings map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create settings decoder")
	}
	if err := dec.Decode(settings); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(out); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(out); err != nil {
		return errors.Wrap(err, "validation failed")
	}
	return nil
}
