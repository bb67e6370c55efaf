package filter

import (
	"context"

	"github.com/osa030/previewbox/internal/domain/track"
)

// PlayableFilter rejects tracks without an audio source.
type PlayableFilter struct{}

func (f *PlayableFilter) Name() string {
	return "playable_filter"
}

func (f *PlayableFilter) Description() string {
	return "Rejects tracks that have no preview audio"
}

func (f *PlayableFilter) ReturnCodes() []string {
	return []string{CodeNotPlayable}
}

func (f *PlayableFilter) ValidateConfig(settings map[string]any) error {
	// No configuration needed
	return nil
}

func (f *PlayableFilter) Check(ctx context.Context, t track.Track, accepted []track.Track) Result {
	if t.Song == "" {
		return Reject(CodeNotPlayable)
	}
	return Accept()
}

func init() {
	Register("playable_filter", func() Filter {
		return &PlayableFilter{}
	})
}
