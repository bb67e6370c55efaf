// Package playlist provides the Playlist domain entity.
package playlist

import (
	"time"

	"github.com/osa030/previewbox/internal/domain/track"
)

// Playlist represents a user-owned, ordered collection of tracks.
type Playlist struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Image       string        `json:"image,omitempty"`
	Tracks      []track.Track `json:"tracks"`
}

// Update is a partial playlist update. Nil fields are left untouched.
type Update struct {
	Name        *string
	Description *string
	Image       *string
}

// New creates an empty playlist.
func New(id int64, name string) *Playlist {
	return &Playlist{
		ID:     id,
		Name:   name,
		Tracks: make([]track.Track, 0),
	}
}

// TrackKeys returns the keys of all tracks in the playlist.
func (p *Playlist) TrackKeys() []track.Key {
	keys := make([]track.Key, len(p.Tracks))
	for i, t := range p.Tracks {
		keys[i] = t.Key()
	}
	return keys
}

// Contains reports whether the playlist holds the track.
func (p *Playlist) Contains(key track.Key) bool {
	return track.Contains(p.Tracks, key)
}

// Add appends the track unless it is already present.
// Returns false if nothing changed.
func (p *Playlist) Add(t track.Track) bool {
	if p.Contains(t.Key()) {
		return false
	}
	p.Tracks = append(p.Tracks, t)
	return true
}

// Remove removes the track with the given key.
// Returns false if the track was not present.
func (p *Playlist) Remove(key track.Key) bool {
	i := track.IndexOf(p.Tracks, key)
	if i < 0 {
		return false
	}
	p.Tracks = append(p.Tracks[:i:i], p.Tracks[i+1:]...)
	return true
}

// Apply applies a partial update and reports whether any field was present.
func (p *Playlist) Apply(u Update) bool {
	changed := false
	if u.Name != nil {
		p.Name = *u.Name
		changed = true
	}
	if u.Description != nil {
		p.Description = *u.Description
		changed = true
	}
	if u.Image != nil {
		p.Image = *u.Image
		changed = true
	}
	return changed
}

// TotalDuration returns the total duration of all tracks.
func (p *Playlist) TotalDuration() time.Duration {
	var total time.Duration
	for _, t := range p.Tracks {
		total += t.Duration()
	}
	return total
}

// Clone returns a deep copy of the playlist.
func (p *Playlist) Clone() Playlist {
	c := *p
	c.Tracks = track.Clone(p.Tracks)
	if c.Tracks == nil {
		c.Tracks = make([]track.Track, 0)
	}
	return c
}
