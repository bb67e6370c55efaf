package session

import (
	"github.com/osa030/previewbox/internal/app/playback"
	"github.com/osa030/previewbox/internal/app/queue"
	"github.com/osa030/previewbox/internal/domain/playlist"
	"github.com/osa030/previewbox/internal/domain/track"
	"github.com/osa030/previewbox/internal/infra/catalog"
)

// State is a snapshot of every observable field. All slices are copies.
type State struct {
	// Playback
	IsPlaying      bool
	PlaybackState  playback.State
	CurrentTrack   *track.Track
	CurrentArtist  *track.Artist
	CurrentList    []track.Track
	RecentlyPlayed []track.Track
	Shuffle        bool
	Repeat         queue.RepeatMode
	DefaultArtist  track.Artist

	// Collections
	LikedTracks []track.Track
	Playlists   []playlist.Playlist

	// Fetch results
	SearchTerm   string
	SearchTracks []track.Track
	HomeSections []catalog.Section
	TopArtists   []catalog.ArtistSummary

	// Error is the message of the last failure, cleared by the next successful fetch.
	Error string
}

// fetchSeq orders the completions of one kind of fetch.
type fetchSeq struct {
	issued  uint64
	applied uint64
}

// next returns the sequence number for a new fetch.
func (s *fetchSeq) next() uint64 {
	s.issued++
	return s.issued
}

// accept reports whether a completion may be applied and records it.
// Completions older than the newest applied one are rejected.
func (s *fetchSeq) accept(seq uint64) bool {
	if seq < s.applied {
		return false
	}
	s.applied = seq
	return true
}

func cloneSections(sections []catalog.Section) []catalog.Section {
	if sections == nil {
		return nil
	}
	out := make([]catalog.Section, len(sections))
	for i, s := range sections {
		out[i] = catalog.Section{Title: s.Title, Tracks: track.Clone(s.Tracks)}
	}
	return out
}

func cloneArtist(a track.Artist) track.Artist {
	a.Tracks = track.Clone(a.Tracks)
	return a
}
