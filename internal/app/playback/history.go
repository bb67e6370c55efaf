package playback

import "github.com/osa030/previewbox/internal/domain/track"

// DefaultHistorySize is the default number of recently played tracks kept.
const DefaultHistorySize = 20

// History is a most-recent-first list of played tracks, unique by key.
// It is not safe for concurrent use.
type History struct {
	size   int
	tracks []track.Track
}

// NewHistory creates a history capped at size entries.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size:   size,
		tracks: make([]track.Track, 0, size),
	}
}

// Add moves t to the front, dropping an earlier entry with the same key
// and the oldest entries beyond the cap.
func (h *History) Add(t track.Track) {
	next := make([]track.Track, 0, h.size)
	next = append(next, t)
	for _, existing := range h.tracks {
		if len(next) == h.size {
			break
		}
		if existing.Key() == t.Key() {
			continue
		}
		next = append(next, existing)
	}
	h.tracks = next
}

// Tracks returns a copy of the history.
func (h *History) Tracks() []track.Track {
	result := make([]track.Track, len(h.tracks))
	copy(result, h.tracks)
	return result
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.tracks)
}
