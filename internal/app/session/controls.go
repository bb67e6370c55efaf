package session

import (
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/previewbox/internal/app/notification"
	"github.com/osa030/previewbox/internal/app/queue"
	"github.com/osa030/previewbox/internal/domain/track"
)

// PlayOrPause toggles t when it is the loaded track, otherwise loads it.
// A nil list keeps the current list.
func (m *Manager) PlayOrPause(artist track.Artist, t track.Track, list []track.Track) error {
	if err := m.playback.PlayOrPauseSameOrLoad(artist, t, list); err != nil {
		m.recordError("play", err)
		return err
	}
	return nil
}

// PlayFromList loads list[i] with list as the navigation context.
func (m *Manager) PlayFromList(list []track.Track, i int) error {
	if i < 0 || i >= len(list) {
		return ErrIndexOutOfRange
	}
	t := list[i]
	return m.PlayOrPause(m.attribute(t), t, list)
}

// Toggle flips play/pause. It is a no-op when nothing is loaded.
func (m *Manager) Toggle() error {
	if err := m.playback.Toggle(); err != nil {
		m.recordError("toggle", err)
		return err
	}
	return nil
}

// Next loads the track after current. An empty navigation context is a no-op.
func (m *Manager) Next(current track.Track) error {
	return m.navigate(current, m.navigator.Next)
}

// Previous loads the track before current. An empty navigation context is a no-op.
func (m *Manager) Previous(current track.Track) error {
	return m.navigate(current, m.navigator.Previous)
}

type navigateFunc func(current track.Track, list []track.Track, fallback track.Artist, p queue.Policy) (queue.Step, bool)

func (m *Manager) navigate(current track.Track, nav navigateFunc) error {
	list := m.playback.CurrentList()

	m.mu.RLock()
	fallbackArtist := m.defaultArtist
	policy := m.policy
	m.mu.RUnlock()

	step, ok := nav(current, list, fallbackArtist, policy)
	if !ok {
		zlog.Debug().Msg("session: navigation ignored, queue is empty")
		return nil
	}
	if err := m.playback.Load(step.Artist, step.Track, nil); err != nil {
		m.recordError("navigate", err)
		return err
	}
	return nil
}

// PlayFromFirst resets playback and loads the first track of the current
// list, or of the default artist when there is no list.
func (m *Manager) PlayFromFirst() error {
	m.playback.Reset()

	list := m.playback.CurrentList()
	m.mu.RLock()
	fallbackArtist := m.defaultArtist
	m.mu.RUnlock()

	if len(list) == 0 {
		list = fallbackArtist.Tracks
	}
	if len(list) == 0 {
		return nil
	}
	if err := m.playback.Load(m.attribute(list[0]), list[0], nil); err != nil {
		m.recordError("play from first", err)
		return err
	}
	return nil
}

// Reset stops playback and clears the current track and artist.
func (m *Manager) Reset() {
	m.playback.Reset()
}

// SetShuffle sets shuffle mode.
func (m *Manager) SetShuffle(on bool) {
	m.mu.Lock()
	m.policy.Shuffle = on
	m.mu.Unlock()
	m.broadcast(notification.TypePlayback, notification.FieldShuffle)
}

// ToggleShuffle flips shuffle mode and returns the new value.
func (m *Manager) ToggleShuffle() bool {
	m.mu.Lock()
	m.policy.Shuffle = !m.policy.Shuffle
	on := m.policy.Shuffle
	m.mu.Unlock()
	m.broadcast(notification.TypePlayback, notification.FieldShuffle)
	return on
}

// SetRepeatMode sets the repeat mode.
func (m *Manager) SetRepeatMode(mode queue.RepeatMode) {
	m.mu.Lock()
	m.policy.Repeat = mode
	m.mu.Unlock()
	m.broadcast(notification.TypePlayback, notification.FieldRepeat)
}

// CycleRepeatMode advances Off -> All -> One -> Off and returns the new mode.
func (m *Manager) CycleRepeatMode() queue.RepeatMode {
	m.mu.Lock()
	m.policy.Repeat = m.policy.Repeat.Cycle()
	mode := m.policy.Repeat
	m.mu.Unlock()
	m.broadcast(notification.TypePlayback, notification.FieldRepeat)
	return mode
}

// attribute returns the artist a track is played under.
func (m *Manager) attribute(t track.Track) track.Artist {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t.ArtistName != "" {
		return m.defaultArtist.WithName(t.ArtistName)
	}
	return m.defaultArtist
}
