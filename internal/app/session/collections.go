package session

import (
	"context"

	"github.com/osa030/previewbox/internal/app/importer"
	"github.com/osa030/previewbox/internal/app/notification"
	"github.com/osa030/previewbox/internal/domain/playlist"
	"github.com/osa030/previewbox/internal/domain/track"
)

// ToggleLike flips whether t is liked and returns the new value.
func (m *Manager) ToggleLike(ctx context.Context, t track.Track) (bool, error) {
	liked, err := m.library.ToggleLike(ctx, t)
	if err != nil {
		m.recordError("toggle like", err)
		return m.library.IsLiked(t.Key()), err
	}
	m.broadcast(notification.TypeCollection, notification.FieldLikedTracks)
	return liked, nil
}

// IsLiked reports whether the track is liked.
func (m *Manager) IsLiked(key track.Key) bool {
	return m.library.IsLiked(key)
}

// CreatePlaylist creates an empty playlist.
func (m *Manager) CreatePlaylist(ctx context.Context, name string) (playlist.Playlist, error) {
	p, err := m.library.CreatePlaylist(ctx, name)
	if err != nil {
		m.recordError("create playlist", err)
		return playlist.Playlist{}, err
	}
	m.broadcast(notification.TypeCollection, notification.FieldPlaylists)
	return p, nil
}

// AddTrackToPlaylist adds t unless it is already present.
func (m *Manager) AddTrackToPlaylist(ctx context.Context, id int64, t track.Track) error {
	return m.mutatePlaylists("add track", m.library.AddTrackToPlaylist(ctx, id, t))
}

// RemoveTrackFromPlaylist removes the track with key.
func (m *Manager) RemoveTrackFromPlaylist(ctx context.Context, id int64, key track.Key) error {
	return m.mutatePlaylists("remove track", m.library.RemoveTrackFromPlaylist(ctx, id, key))
}

// UpdatePlaylist applies a partial update.
func (m *Manager) UpdatePlaylist(ctx context.Context, id int64, u playlist.Update) error {
	return m.mutatePlaylists("update playlist", m.library.UpdatePlaylist(ctx, id, u))
}

// DeletePlaylist deletes the playlist.
func (m *Manager) DeletePlaylist(ctx context.Context, id int64) error {
	return m.mutatePlaylists("delete playlist", m.library.DeletePlaylist(ctx, id))
}

// Playlist returns a copy of the playlist.
func (m *Manager) Playlist(id int64) (playlist.Playlist, bool) {
	return m.library.Playlist(id)
}

// ImportPlaylist copies a Spotify playlist into the library.
func (m *Manager) ImportPlaylist(ctx context.Context, playlistURL string, progress importer.Progress) (*importer.Result, error) {
	if m.importer == nil {
		return nil, ErrImportDisabled
	}
	result, err := m.importer.Import(ctx, playlistURL, progress)
	if result != nil {
		m.broadcast(notification.TypeCollection, notification.FieldPlaylists)
	}
	if err != nil {
		m.recordError("import", err)
		return result, err
	}
	return result, nil
}

func (m *Manager) mutatePlaylists(op string, err error) error {
	if err != nil {
		m.recordError(op, err)
		return err
	}
	m.broadcast(notification.TypeCollection, notification.FieldPlaylists)
	return nil
}
