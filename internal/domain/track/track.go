// Package track provides the Track and Artist domain entities.
package track

import (
	"strconv"
	"time"
)

// Source identifies the namespace a track ID belongs to.
type Source string

const (
	SourceCatalog Source = "catalog" // remote catalog search results
	SourceBundled Source = "bundled" // default artist shipped with the app
)

// Key is the identity of a track across lists.
// Raw IDs collide between the catalog and the bundled artist, so the source is part of the key.
type Key struct {
	Source Source
	ID     int64
}

// String returns "source:id".
func (k Key) String() string {
	return string(k.Source) + ":" + strconv.FormatInt(k.ID, 10)
}

// Track represents a playable audio item with catalog metadata.
// Values are never mutated after they are fetched.
type Track struct {
	ID          int64  `json:"id"`
	Source      Source `json:"source,omitempty"`
	Name        string `json:"name"`
	ArtistName  string `json:"artistName,omitempty"`
	AlbumName   string `json:"albumName,omitempty"`
	AlbumCover  string `json:"albumCover"`
	Song        string `json:"song"`                  // playable audio URL or media-relative path
	ReleaseYear int    `json:"releaseYear,omitempty"` // 0 if unknown
	DurationMs  int64  `json:"duration"`              // milliseconds
}

// Key returns the track identity. Tracks without a source are treated as catalog tracks.
func (t Track) Key() Key {
	src := t.Source
	if src == "" {
		src = SourceCatalog
	}
	return Key{Source: src, ID: t.ID}
}

// Duration returns the track length.
func (t Track) Duration() time.Duration {
	return time.Duration(t.DurationMs) * time.Millisecond
}

// Artist is the attributed artist of a track. Tracks is only set for the
// default artist, whose tracks act as the fallback queue.
type Artist struct {
	Name   string  `json:"name"`
	Tracks []Track `json:"tracks,omitempty"`
}

// WithName returns a copy of the artist attributed to another name.
func (a Artist) WithName(name string) Artist {
	return Artist{Name: name, Tracks: a.Tracks}
}

// IndexOf returns the position of the track with the given key, or -1.
func IndexOf(tracks []Track, key Key) int {
	for i, t := range tracks {
		if t.Key() == key {
			return i
		}
	}
	return -1
}

// Contains reports whether a track with the given key is in the list.
func Contains(tracks []Track, key Key) bool {
	return IndexOf(tracks, key) >= 0
}

// Clone returns a copy of the list. A nil list stays nil.
func Clone(tracks []Track) []Track {
	if tracks == nil {
		return nil
	}
	out := make([]Track, len(tracks))
	copy(out, tracks)
	return out
}
