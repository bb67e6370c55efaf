package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/previewbox/internal/domain/track"
	"github.com/osa030/previewbox/internal/infra/config"
)

func TestPlayableFilter_Check(t *testing.T) {
	tests := []struct {
		name         string
		song         string
		wantAccepted bool
	}{
		{name: "has preview", song: "https://audio.example.com/1.m4a", wantAccepted: true},
		{name: "bundled relative path", song: "songs/1.mp3", wantAccepted: true},
		{name: "no preview", song: "", wantAccepted: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := (&PlayableFilter{}).Check(context.Background(), track.Track{ID: 1, Song: tt.song}, nil)
			assert.Equal(t, tt.wantAccepted, result.Accepted)
			if !tt.wantAccepted {
				assert.Equal(t, "not_playable", result.Code)
			}
		})
	}
}

func TestChain_Apply(t *testing.T) {
	chain := NewChain()
	chain.Add(&PlayableFilter{})
	chain.Add(NewDuplicateTrackFilter())

	list := []track.Track{
		{ID: 1, Name: "One", ArtistName: "A", Song: "1.m4a"},
		{ID: 2, Name: "Two", ArtistName: "A"},
		{ID: 1, Name: "One", ArtistName: "A", Song: "1.m4a"},
		{ID: 3, Name: "One - Remastered", ArtistName: "A", Song: "3.m4a"},
		{ID: 4, Name: "Four", ArtistName: "B", Song: "4.m4a"},
	}

	got := chain.Apply(context.Background(), list)

	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(4), got[1].ID)
}

func TestChain_ApplyEmptyChainCopies(t *testing.T) {
	list := []track.Track{{ID: 1}, {ID: 2}}

	got := NewChain().Apply(context.Background(), list)
	assert.Equal(t, list, got)

	got[0].ID = 99
	assert.Equal(t, int64(1), list[0].ID)

	var nilChain *Chain
	assert.Len(t, nilChain.Apply(context.Background(), list), 2)
}

func TestChain_ExecuteStopsAtFirstRejection(t *testing.T) {
	chain := NewChain()
	chain.Add(&PlayableFilter{})
	chain.Add(NewDuplicateTrackFilter())

	result := chain.Execute(context.Background(), track.Track{ID: 1}, []track.Track{{ID: 1}})
	assert.Equal(t, "not_playable", result.Code)
}

func TestNewChainFromConfig(t *testing.T) {
	chain, err := NewChainFromConfig(map[string]config.FilterConfig{
		"playable_filter":        {Enabled: true},
		"duplicate_track_filter": {Enabled: true},
		"duration_limit_filter":  {Enabled: false},
	})
	require.NoError(t, err)

	names := make([]string, 0)
	for _, f := range chain.Filters() {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{"duplicate_track_filter", "playable_filter"}, names)
}

func TestNewChainFromConfig_Errors(t *testing.T) {
	_, err := NewChainFromConfig(map[string]config.FilterConfig{
		"no_such_filter": {Enabled: true},
	})
	assert.Error(t, err)

	_, err = NewChainFromConfig(map[string]config.FilterConfig{
		"duration_limit_filter": {Enabled: true, Settings: map[string]any{"min_seconds": -5}},
	})
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	registered := GetRegistered()
	for _, name := range []string{"playable_filter", "duplicate_track_filter", "duration_limit_filter"} {
		factory, ok := registered[name]
		require.True(t, ok, name)
		f := factory()
		assert.Equal(t, name, f.Name())
		assert.NotEmpty(t, f.Description())
		assert.NotEmpty(t, f.ReturnCodes())
	}
}
