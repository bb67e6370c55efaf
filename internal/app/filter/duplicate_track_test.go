package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osa030/previewbox/internal/domain/track"
)

func TestDuplicateTrackFilter_ExactKeyMatch(t *testing.T) {
	filter := NewDuplicateTrackFilter()
	accepted := []track.Track{
		{ID: 123, Name: "Bohemian Rhapsody", ArtistName: "Queen"},
	}

	result := filter.Check(context.Background(), track.Track{
		ID:         123,
		Name:       "Bohemian Rhapsody - 2011 Remaster",
		ArtistName: "Queen",
	}, accepted)

	assert.False(t, result.Accepted)
	assert.Equal(t, "duplicate_track", result.Code)
}

func TestDuplicateTrackFilter_SameIDOtherSource(t *testing.T) {
	filter := NewDuplicateTrackFilter()
	accepted := []track.Track{
		{ID: 1, Source: track.SourceBundled, Name: "Intro", ArtistName: "A"},
	}

	result := filter.Check(context.Background(), track.Track{
		ID:         1,
		Source:     track.SourceCatalog,
		Name:       "Outro",
		ArtistName: "B",
	}, accepted)

	assert.True(t, result.Accepted, "ids in different sources are different tracks")
}

func TestDuplicateTrackFilter_RemasterDetection(t *testing.T) {
	tests := []struct {
		name         string
		listed       track.Track
		candidate    track.Track
		shouldReject bool
		description  string
	}{
		{
			name:         "Standard remaster pattern",
			listed:       track.Track{ID: 1, Name: "Bohemian Rhapsody", ArtistName: "Queen"},
			candidate:    track.Track{ID: 2, Name: "Bohemian Rhapsody - 2011 Remaster", ArtistName: "Queen"},
			shouldReject: true,
			description:  "Should detect '- 2011 Remaster' as duplicate",
		},
		{
			name:         "Remastered in parentheses",
			listed:       track.Track{ID: 1, Name: "Yesterday", ArtistName: "The Beatles"},
			candidate:    track.Track{ID: 2, Name: "Yesterday (Remastered 2023)", ArtistName: "The Beatles"},
			shouldReject: true,
			description:  "Should detect '(Remastered 2023)' as duplicate",
		},
		{
			name:         "Cover song - different artist",
			listed:       track.Track{ID: 1, Name: "Yesterday", ArtistName: "The Beatles"},
			candidate:    track.Track{ID: 2, Name: "Yesterday", ArtistName: "Paul McCartney"},
			shouldReject: false,
			description:  "Should allow cover by different artist",
		},
		{
			name:         "Different songs - similar names",
			listed:       track.Track{ID: 1, Name: "Love", ArtistName: "John Lennon"},
			candidate:    track.Track{ID: 2, Name: "Love Song", ArtistName: "John Lennon"},
			shouldReject: false,
			description:  "Should allow different songs",
		},
		{
			name:         "Radio Edit version",
			listed:       track.Track{ID: 1, Name: "Stairway to Heaven", ArtistName: "Led Zeppelin"},
			candidate:    track.Track{ID: 2, Name: "Stairway to Heaven (Radio Edit)", ArtistName: "Led Zeppelin"},
			shouldReject: true,
			description:  "Should detect radio edit as duplicate",
		},
		{
			name:         "Live version",
			listed:       track.Track{ID: 1, Name: "Hotel California", ArtistName: "Eagles"},
			candidate:    track.Track{ID: 2, Name: "Hotel California - Live", ArtistName: "Eagles"},
			shouldReject: true,
			description:  "Should detect live version as duplicate",
		},
		{
			name:         "Remix version - should be allowed",
			listed:       track.Track{ID: 1, Name: "Le Freak", ArtistName: "CHIC"},
			candidate:    track.Track{ID: 2, Name: "Le Freak (Oliver Heldens Remix)", ArtistName: "CHIC"},
			shouldReject: false,
			description:  "Should allow remix version",
		},
		{
			name:         "Unknown artist is never a duplicate by name",
			listed:       track.Track{ID: 1, Name: "Intro"},
			candidate:    track.Track{ID: 2, Name: "Intro"},
			shouldReject: false,
			description:  "Should not guess without artists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := NewDuplicateTrackFilter()
			result := filter.Check(context.Background(), tt.candidate, []track.Track{tt.listed})

			if tt.shouldReject {
				assert.False(t, result.Accepted, tt.description)
				assert.Equal(t, "duplicate_track", result.Code)
			} else {
				assert.True(t, result.Accepted, tt.description)
			}
		})
	}
}

func TestDuplicateTrackFilter_EmptyList(t *testing.T) {
	filter := NewDuplicateTrackFilter()

	result := filter.Check(context.Background(), track.Track{ID: 1, Name: "Any Song", ArtistName: "Any Artist"}, nil)

	assert.True(t, result.Accepted, "Should accept any track when nothing is listed yet")
}

func TestNormalizeTrackName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Bohemian Rhapsody", "bohemian rhapsody"},
		{"Bohemian Rhapsody - 2011 Remaster", "bohemian rhapsody"},
		{"Yesterday (Remastered 2023)", "yesterday"},
		{"Hotel California [Remastered]", "hotel california"},
		{"Stairway to Heaven (Radio Edit)", "stairway to heaven"},
		{"Imagine - Live", "imagine"},
		{"Imagine (Live)", "imagine"},
		{"Alive", "alive"},
		{"Let It Be (Single Version)", "let it be"},
		{"Hey Jude - Remastered Version", "hey jude"},
		{"Come Together (2019 Mix)", "come together (2019 mix)"},
		{"   Extra   Spaces   ", "extra spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeTrackName(tt.input))
		})
	}
}

func TestIsSameArtist(t *testing.T) {
	tests := []struct {
		name     string
		a        track.Track
		b        track.Track
		expected bool
	}{
		{"Same artist", track.Track{ArtistName: "Queen"}, track.Track{ArtistName: "Queen"}, true},
		{"Same artist - case insensitive", track.Track{ArtistName: "Queen"}, track.Track{ArtistName: "queen"}, true},
		{"Different artists", track.Track{ArtistName: "The Beatles"}, track.Track{ArtistName: "Paul McCartney"}, false},
		{"Empty artist", track.Track{}, track.Track{ArtistName: "Queen"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isSameArtist(tt.a, tt.b))
		})
	}
}
