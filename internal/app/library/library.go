// Package library manages liked tracks and user playlists with write-through persistence.
package library

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/previewbox/internal/domain/playlist"
	"github.com/osa030/previewbox/internal/domain/track"
	"github.com/osa030/previewbox/internal/infra/storage"
)

// Storage keys
const (
	KeyPlaylists   = "playlists"
	KeyLikedTracks = "likedTracks"
)

// Library holds the user's collections. Every effective mutation is
// persisted before it returns; a failed write leaves memory unchanged.
type Library struct {
	mu sync.RWMutex

	store     storage.Store
	liked     []track.Track
	playlists []playlist.Playlist
	ids       *IDSource
}

// Open hydrates the library from store.
func Open(ctx context.Context, store storage.Store) (*Library, error) {
	l := &Library{
		store:     store,
		liked:     make([]track.Track, 0),
		playlists: make([]playlist.Playlist, 0),
	}

	if err := l.load(ctx, KeyLikedTracks, &l.liked); err != nil {
		return nil, err
	}
	if err := l.load(ctx, KeyPlaylists, &l.playlists); err != nil {
		return nil, err
	}

	var maxID int64
	for i := range l.playlists {
		if l.playlists[i].Tracks == nil {
			l.playlists[i].Tracks = make([]track.Track, 0)
		}
		maxID = max(maxID, l.playlists[i].ID)
	}
	l.ids = NewIDSource(maxID)

	zlog.Info().Msgf("library: loaded: liked=%d playlists=%d", len(l.liked), len(l.playlists))
	return l, nil
}

func (l *Library) load(ctx context.Context, key string, out any) error {
	data, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return errors.Wrapf(err, "failed to load %s", key)
	}
	if !ok || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "failed to parse %s", key)
	}
	return nil
}

func (l *Library) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s", key)
	}
	if err := l.store.Put(ctx, key, data); err != nil {
		return errors.Wrapf(err, "failed to save %s", key)
	}
	return nil
}

// ToggleLike adds t to the liked tracks, or removes it if present.
// Returns whether the track is liked afterwards.
func (l *Library) ToggleLike(ctx context.Context, t track.Track) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev := l.liked
	var next []track.Track
	liked := false
	if i := track.IndexOf(prev, t.Key()); i >= 0 {
		next = make([]track.Track, 0, len(prev)-1)
		next = append(next, prev[:i]...)
		next = append(next, prev[i+1:]...)
	} else {
		next = make([]track.Track, 0, len(prev)+1)
		next = append(next, prev...)
		next = append(next, t)
		liked = true
	}

	if err := l.put(ctx, KeyLikedTracks, next); err != nil {
		return !liked, err
	}
	l.liked = next
	zlog.Debug().Msgf("library: like toggled: track=%s liked=%t", t.Key(), liked)
	return liked, nil
}

// IsLiked reports whether the track is liked.
func (l *Library) IsLiked(key track.Key) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return track.Contains(l.liked, key)
}

// Liked returns a copy of the liked tracks in like order.
func (l *Library) Liked() []track.Track {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]track.Track, len(l.liked))
	copy(result, l.liked)
	return result
}

// CreatePlaylist creates an empty playlist. A blank name gets a numbered default.
func (l *Library) CreatePlaylist(ctx context.Context, name string) (playlist.Playlist, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("My Playlist #%d", len(l.playlists)+1)
	}
	p := playlist.New(l.ids.Next(), name)

	next := l.clonePlaylistsLocked()
	next = append(next, *p)
	if err := l.commitPlaylistsLocked(ctx, next); err != nil {
		return playlist.Playlist{}, err
	}

	zlog.Info().Msgf("library: playlist created: id=%d name=%s", p.ID, p.Name)
	return p.Clone(), nil
}

// AddTrackToPlaylist appends t to the playlist. Missing playlists and
// tracks already present are no-ops.
func (l *Library) AddTrackToPlaylist(ctx context.Context, id int64, t track.Track) error {
	return l.mutatePlaylist(ctx, id, func(p *playlist.Playlist) bool {
		return p.Add(t)
	})
}

// RemoveTrackFromPlaylist removes the track from the playlist. Missing
// playlists and tracks are no-ops.
func (l *Library) RemoveTrackFromPlaylist(ctx context.Context, id int64, key track.Key) error {
	return l.mutatePlaylist(ctx, id, func(p *playlist.Playlist) bool {
		return p.Remove(key)
	})
}

// UpdatePlaylist applies a partial update. Missing playlists are a no-op.
func (l *Library) UpdatePlaylist(ctx context.Context, id int64, u playlist.Update) error {
	return l.mutatePlaylist(ctx, id, func(p *playlist.Playlist) bool {
		return p.Apply(u)
	})
}

// DeletePlaylist removes the playlist. Missing playlists are a no-op.
func (l *Library) DeletePlaylist(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexLocked(id)
	if i < 0 {
		return nil
	}

	next := make([]playlist.Playlist, 0, len(l.playlists)-1)
	next = append(next, l.playlists[:i]...)
	next = append(next, l.playlists[i+1:]...)
	if err := l.commitPlaylistsLocked(ctx, next); err != nil {
		return err
	}

	zlog.Info().Msgf("library: playlist deleted: id=%d", id)
	return nil
}

// Playlist returns a copy of the playlist with the given id.
func (l *Library) Playlist(id int64) (playlist.Playlist, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i := l.indexLocked(id)
	if i < 0 {
		return playlist.Playlist{}, false
	}
	return l.playlists[i].Clone(), true
}

// Playlists returns copies of all playlists in creation order.
func (l *Library) Playlists() []playlist.Playlist {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.clonePlaylistsLocked()
}

// Save writes both collections to storage.
func (l *Library) Save(ctx context.Context) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if err := l.put(ctx, KeyLikedTracks, l.liked); err != nil {
		return err
	}
	return l.put(ctx, KeyPlaylists, l.playlists)
}

// mutatePlaylist applies fn to a copy of the playlist and commits it when fn
// reports a change.
func (l *Library) mutatePlaylist(ctx context.Context, id int64, fn func(p *playlist.Playlist) bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexLocked(id)
	if i < 0 {
		zlog.Debug().Msgf("library: playlist not found: id=%d", id)
		return nil
	}

	next := l.clonePlaylistsLocked()
	if !fn(&next[i]) {
		return nil
	}
	return l.commitPlaylistsLocked(ctx, next)
}

// commitPlaylistsLocked persists next and swaps it in on success.
func (l *Library) commitPlaylistsLocked(ctx context.Context, next []playlist.Playlist) error {
	if err := l.put(ctx, KeyPlaylists, next); err != nil {
		zlog.Warn().Msgf("library: write failed, change discarded: %v", err)
		return err
	}
	l.playlists = next
	return nil
}

func (l *Library) clonePlaylistsLocked() []playlist.Playlist {
	result := make([]playlist.Playlist, len(l.playlists))
	for i := range l.playlists {
		result[i] = l.playlists[i].Clone()
	}
	return result
}

func (l *Library) indexLocked(id int64) int {
	for i := range l.playlists {
		if l.playlists[i].ID == id {
			return i
		}
	}
	return -1
}
