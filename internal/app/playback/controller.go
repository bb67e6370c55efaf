package playback

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/previewbox/internal/domain/track"
	"github.com/osa030/previewbox/internal/infra/audio"
)

// DefaultStartDelay is the default delay between loading a track and starting it.
const DefaultStartDelay = 200 * time.Millisecond

// Errors
var (
	ErrClosed = errors.New("playback controller closed")
)

// Config holds controller configuration.
type Config struct {
	StartDelay  time.Duration // Delay before a loaded track starts playing
	HistorySize int           // Number of recently played tracks kept
	MediaRoot   string        // Base directory for relative track sources
}

// Status is a consistent view of the controller state.
type Status struct {
	State     State
	IsPlaying bool
	Track     *track.Track
	Artist    *track.Artist
	List      []track.Track
	History   []track.Track
}

// Controller owns the single audio output and the current track.
type Controller struct {
	mu sync.RWMutex

	opener audio.Opener
	output audio.Output

	// Current playback state
	currentArtist *track.Artist
	currentTrack  *track.Track
	currentList   []track.Track
	isPlaying     bool
	history       *History

	// Deferred start. A start only runs if its generation is still current.
	generation  uint64
	startCancel func()

	// Configuration
	config Config

	// Events
	eventCh chan Event
	closed  bool

	// Context
	ctx    context.Context
	cancel context.CancelFunc
}

// NewController creates a new playback controller.
func NewController(config Config, opener audio.Opener) *Controller {
	if config.StartDelay < 0 {
		config.StartDelay = 0
	}
	if config.HistorySize <= 0 {
		config.HistorySize = DefaultHistorySize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		opener:      opener,
		currentList: make([]track.Track, 0),
		history:     NewHistory(config.HistorySize),
		config:      config,
		eventCh:     make(chan Event, 32),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Events returns the event channel.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// Load makes t the current track and schedules its start.
// A nil list leaves the current list untouched.
// The track is recorded in history even if its output cannot be opened.
func (c *Controller) Load(artist track.Artist, t track.Track, list []track.Track) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	return c.loadLocked(artist, t, list)
}

func (c *Controller) loadLocked(artist track.Artist, t track.Track, list []track.Track) error {
	c.teardownLocked()
	c.isPlaying = false

	c.currentArtist = &artist
	c.currentTrack = &t
	if list != nil {
		c.currentList = track.Clone(list)
	}
	c.history.Add(t)

	c.generation++
	gen := c.generation

	src := c.resolveSource(t.Song)
	out, err := c.opener.Open(src, t.Duration())
	if err != nil {
		zlog.Warn().Msgf("playback: failed to open output: track=%s src=%s err=%v", t.Key(), src, err)
		c.sendEventLocked(Event{Type: EventTrackLoaded, Track: c.currentTrack, State: c.stateLocked()})
		return errors.Wrapf(err, "failed to open output for %s", t.Key())
	}
	c.output = out

	zlog.Debug().Msgf("playback: track loaded: track=%s name=%s delay=%v gen=%d",
		t.Key(), t.Name, c.config.StartDelay, gen)

	c.startCancel = c.scheduleStart(gen)
	go c.watch(out, gen)

	c.sendEventLocked(Event{Type: EventTrackLoaded, Track: c.currentTrack, State: c.stateLocked()})
	return nil
}

// Toggle flips play/pause on the current output and cancels a pending start.
// It is a no-op without an output.
func (c *Controller) Toggle() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.toggleLocked()
}

func (c *Controller) toggleLocked() error {
	if c.output == nil {
		return nil
	}
	c.cancelStartLocked()

	if c.output.Paused() {
		if err := c.output.Play(); err != nil {
			return errors.Wrap(err, "failed to play")
		}
		c.isPlaying = true
	} else {
		if err := c.output.Pause(); err != nil {
			return errors.Wrap(err, "failed to pause")
		}
		c.isPlaying = false
	}

	c.sendEventLocked(Event{Type: EventStateChanged, Track: c.currentTrack, State: c.stateLocked()})
	return nil
}

// PlayOrPauseSameOrLoad toggles when t is already loaded on a live output,
// otherwise loads it.
func (c *Controller) PlayOrPauseSameOrLoad(artist track.Artist, t track.Track, list []track.Track) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	if c.output == nil || c.output.Source() == "" || c.currentTrack == nil || c.currentTrack.Key() != t.Key() {
		return c.loadLocked(artist, t, list)
	}
	return c.toggleLocked()
}

// Reset stops playback and forgets the current track and artist.
// The current list and history are kept.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetLocked()
	c.sendEventLocked(Event{Type: EventReset, State: c.stateLocked()})
}

func (c *Controller) resetLocked() {
	c.generation++
	c.teardownLocked()
	c.isPlaying = false
	c.currentArtist = nil
	c.currentTrack = nil
}

// State returns the current playback state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	switch {
	case c.currentTrack == nil:
		return StateIdle
	case c.startCancel != nil:
		return StateLoading
	case c.isPlaying:
		return StatePlaying
	default:
		return StatePaused
	}
}

// IsPlaying reports whether the current output is playing.
func (c *Controller) IsPlaying() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isPlaying
}

// CurrentTrack returns the current track.
func (c *Controller) CurrentTrack() (track.Track, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.currentTrack == nil {
		return track.Track{}, false
	}
	return *c.currentTrack, true
}

// CurrentArtist returns the artist the current track is attributed to.
func (c *Controller) CurrentArtist() (track.Artist, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.currentArtist == nil {
		return track.Artist{}, false
	}
	return *c.currentArtist, true
}

// CurrentList returns a copy of the active list.
func (c *Controller) CurrentList() []track.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]track.Track, len(c.currentList))
	copy(result, c.currentList)
	return result
}

// RecentlyPlayed returns the play history, most recent first.
func (c *Controller) RecentlyPlayed() []track.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.history.Tracks()
}

// Status returns a copy of the whole controller state.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Status{
		State:     c.stateLocked(),
		IsPlaying: c.isPlaying,
		List:      make([]track.Track, len(c.currentList)),
		History:   c.history.Tracks(),
	}
	copy(s.List, c.currentList)
	if c.currentTrack != nil {
		t := *c.currentTrack
		s.Track = &t
	}
	if c.currentArtist != nil {
		a := *c.currentArtist
		a.Tracks = track.Clone(a.Tracks)
		s.Artist = &a
	}
	return s
}

// Close releases the output and closes the event channel.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.cancel()
	c.resetLocked()
	c.closed = true
	close(c.eventCh)
}

// teardownLocked pauses and clears the current output.
// Must be called with lock held.
func (c *Controller) teardownLocked() {
	c.cancelStartLocked()
	if c.output == nil {
		return
	}
	if c.output.Source() != "" {
		if err := c.output.Pause(); err != nil {
			zlog.Debug().Msgf("playback: pause on teardown: %v", err)
		}
	}
	if err := c.output.Clear(); err != nil {
		zlog.Debug().Msgf("playback: clear on teardown: %v", err)
	}
	c.output = nil
}

func (c *Controller) cancelStartLocked() {
	if c.startCancel != nil {
		c.startCancel()
		c.startCancel = nil
	}
}

// scheduleStart arms the deferred start for generation gen.
func (c *Controller) scheduleStart(gen uint64) func() {
	timer := time.AfterFunc(c.config.StartDelay, func() {
		c.onStart(gen)
	})
	return func() {
		timer.Stop()
	}
}

func (c *Controller) onStart(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Check if the track was replaced or reset during the delay
	if gen != c.generation || c.startCancel == nil || c.output == nil {
		zlog.Debug().Msgf("playback: stale start ignored: gen=%d current=%d", gen, c.generation)
		return
	}
	c.startCancel = nil

	if err := c.output.Play(); err != nil {
		zlog.Warn().Msgf("playback: failed to start: track=%s err=%v", c.currentTrack.Key(), err)
		c.sendEventLocked(Event{Type: EventStateChanged, Track: c.currentTrack, State: c.stateLocked()})
		return
	}
	c.isPlaying = true

	c.sendEventLocked(Event{Type: EventPlaybackStarted, Track: c.currentTrack, State: c.stateLocked()})
}

// watch reports the natural end of out while it is still current.
func (c *Controller) watch(out audio.Output, gen uint64) {
	select {
	case <-out.Done():
	case <-c.ctx.Done():
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.output != out {
		return
	}

	// A finished output cannot be resumed; the next play of this track reloads it.
	c.teardownLocked()
	ended := c.currentTrack
	c.isPlaying = false
	zlog.Debug().Msgf("playback: track ended: track=%s", ended.Key())

	c.sendEventLocked(Event{Type: EventTrackEnded, Track: ended, State: c.stateLocked()})
}

// resolveSource joins relative sources onto the media root.
func (c *Controller) resolveSource(song string) string {
	if song == "" || c.config.MediaRoot == "" {
		return song
	}
	if strings.Contains(song, "://") || filepath.IsAbs(song) {
		return song
	}
	return filepath.Join(c.config.MediaRoot, song)
}

// sendEventLocked sends an event without blocking.
// Must be called with lock held.
func (c *Controller) sendEventLocked(e Event) {
	if c.closed {
		return
	}
	if e.Track != nil {
		t := *e.Track
		e.Track = &t
	}
	select {
	case c.eventCh <- e:
	case <-c.ctx.Done():
	default:
		zlog.Warn().Msgf("playback: event dropped: type=%s", e.Type)
	}
}
