// Package session provides the session manager, the single context object
// that ties catalog fetches, playback, queue navigation and collections together.
package session

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/previewbox/internal/app/fallback"
	"github.com/osa030/previewbox/internal/app/filter"
	"github.com/osa030/previewbox/internal/app/importer"
	"github.com/osa030/previewbox/internal/app/library"
	"github.com/osa030/previewbox/internal/app/notification"
	"github.com/osa030/previewbox/internal/app/playback"
	"github.com/osa030/previewbox/internal/app/queue"
	"github.com/osa030/previewbox/internal/domain/track"
	"github.com/osa030/previewbox/internal/infra/audio"
	"github.com/osa030/previewbox/internal/infra/catalog"
	"github.com/osa030/previewbox/internal/infra/config"
	"github.com/osa030/previewbox/internal/infra/lastfm"
)

var (
	ErrAlreadyStarted  = errors.New("session already started")
	ErrImportDisabled  = errors.New("playlist import requires spotify credentials")
	ErrIndexOutOfRange = errors.New("track index out of range")
)

// Catalog is the catalog API the session fetches from.
type Catalog interface {
	Search(ctx context.Context, term string) ([]track.Track, error)
	HomeSections(ctx context.Context, queries []catalog.SectionQuery) ([]catalog.Section, error)
	TopArtists(ctx context.Context, names []string) ([]catalog.ArtistSummary, error)
}

// ChartSource lists globally popular artists.
type ChartSource interface {
	GetChartTopArtists(ctx context.Context, limit int) ([]lastfm.ChartArtist, error)
}

// DefaultArtistProvider supplies the fallback artist.
type DefaultArtistProvider interface {
	DefaultArtist(ctx context.Context) (track.Artist, error)
}

// Dependencies are the external collaborators of a session.
// Charts, TopTracks and Playlists are optional.
type Dependencies struct {
	Catalog   Catalog
	Library   *library.Library
	Opener    audio.Opener
	Charts    ChartSource
	TopTracks fallback.TopTrackSource
	Playlists importer.PlaylistSource

	// Overrides for tests; built from config when nil.
	Fallback  DefaultArtistProvider
	Navigator *queue.Navigator
}

// Manager manages the playback session.
type Manager struct {
	mu sync.RWMutex

	// Configuration
	config *config.Config

	// Components
	catalog      Catalog
	charts       ChartSource
	library      *library.Library
	playback     *playback.Controller
	navigator    *queue.Navigator
	filterChain  *filter.Chain
	notification *notification.Manager
	importer     *importer.Importer
	fallback     DefaultArtistProvider

	// Observable state owned by the session
	defaultArtist track.Artist
	policy        queue.Policy
	searchTerm    string
	searchTracks  []track.Track
	homeSections  []catalog.Section
	topArtists    []catalog.ArtistSummary
	lastError     string

	// Fetch ordering
	searchSeq fetchSeq
	homeSeq   fetchSeq
	topSeq    fetchSeq

	started bool

	// Channels
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a new session manager.
func NewManager(cfg *config.Config, deps Dependencies) (*Manager, error) {
	if deps.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if deps.Library == nil {
		return nil, errors.New("library is required")
	}
	if deps.Opener == nil {
		deps.Opener = audio.NewVirtualOpener()
	}

	filterChain, err := filter.NewChainFromConfig(cfg.Filters)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create filter chain")
	}

	provider := deps.Fallback
	if provider == nil {
		chain, err := fallback.NewProviderChainFromConfig(cfg, deps.Catalog, deps.TopTracks, playlistSource(deps.Playlists))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create fallback provider chain")
		}
		provider = chain
	}

	navigator := deps.Navigator
	if navigator == nil {
		navigator = queue.New()
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		config:  cfg,
		catalog: deps.Catalog,
		charts:  deps.Charts,
		library: deps.Library,
		playback: playback.NewController(playback.Config{
			StartDelay:  cfg.StartDelay(),
			HistorySize: cfg.Playback.HistorySize,
			MediaRoot:   cfg.Playback.MediaRoot,
		}, deps.Opener),
		navigator:    navigator,
		filterChain:  filterChain,
		notification: notification.NewManager(),
		fallback:     provider,

		searchTracks: make([]track.Track, 0),

		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	if deps.Playlists != nil {
		m.importer = importer.New(deps.Playlists, deps.Catalog, deps.Library, cfg.Importer.MatchThreshold)
	}

	return m, nil
}

// Start resolves the default artist and starts the playback event loop.
// A failing fallback chain is not fatal: navigation without a list becomes a no-op.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	m.mu.Unlock()

	artist, err := m.fallback.DefaultArtist(ctx)
	if err != nil {
		zlog.Warn().Msgf("session: no default artist: %v", err)
	}
	artist.Tracks = m.filterChain.Apply(ctx, artist.Tracks)

	m.mu.Lock()
	m.defaultArtist = artist
	m.mu.Unlock()

	zlog.Info().Msgf("session: started: default_artist=%s tracks=%d", artist.Name, len(artist.Tracks))

	go m.playbackLoop()
	return nil
}

// Done is closed when the playback loop exits.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Subscribe registers a stream for change notifications.
func (m *Manager) Subscribe(stream notification.Stream) string {
	return m.notification.Subscribe(stream)
}

// Unsubscribe removes a subscription.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.notification.Unsubscribe(subscriptionID)
}

// Snapshot returns a copy of every observable field.
func (m *Manager) Snapshot() State {
	status := m.playback.Status()

	m.mu.RLock()
	s := State{
		IsPlaying:      status.IsPlaying,
		PlaybackState:  status.State,
		CurrentTrack:   status.Track,
		CurrentArtist:  status.Artist,
		CurrentList:    status.List,
		RecentlyPlayed: status.History,
		Shuffle:        m.policy.Shuffle,
		Repeat:         m.policy.Repeat,
		DefaultArtist:  cloneArtist(m.defaultArtist),
		SearchTerm:     m.searchTerm,
		SearchTracks:   track.Clone(m.searchTracks),
		HomeSections:   cloneSections(m.homeSections),
		TopArtists:     append([]catalog.ArtistSummary(nil), m.topArtists...),
		Error:          m.lastError,
	}
	m.mu.RUnlock()

	s.LikedTracks = m.library.Liked()
	s.Playlists = m.library.Playlists()
	return s
}

// playbackLoop forwards engine events to subscribers and advances the queue
// when a track ends on its own.
func (m *Manager) playbackLoop() {
	defer close(m.done)
	defer func() {
		if r := recover(); r != nil {
			zlog.Error().Msgf("session: playback loop panicked: %v", r)
		}
	}()

	events := m.playback.Events()
	for {
		select {
		case <-m.ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			m.handlePlaybackEvent(event)
		}
	}
}

// handlePlaybackEvent handles playback events.
func (m *Manager) handlePlaybackEvent(event playback.Event) {
	zlog.Debug().Msgf("session: playback event: type=%s state=%s", event.Type, event.State)

	switch event.Type {
	case playback.EventTrackLoaded:
		m.broadcast(notification.TypePlayback,
			notification.FieldCurrentTrack, notification.FieldCurrentArtist, notification.FieldCurrentList,
			notification.FieldRecentlyPlayed, notification.FieldPlaybackState, notification.FieldIsPlaying)

	case playback.EventPlaybackStarted, playback.EventStateChanged:
		m.broadcast(notification.TypePlayback, notification.FieldIsPlaying, notification.FieldPlaybackState)

	case playback.EventReset:
		m.broadcast(notification.TypePlayback,
			notification.FieldCurrentTrack, notification.FieldCurrentArtist,
			notification.FieldPlaybackState, notification.FieldIsPlaying)

	case playback.EventTrackEnded:
		m.broadcast(notification.TypePlayback, notification.FieldIsPlaying, notification.FieldPlaybackState)
		if event.Track != nil {
			m.onTrackEnded(*event.Track)
		}
	}
}

// onTrackEnded advances to the following track if the ended track is still current.
func (m *Manager) onTrackEnded(ended track.Track) {
	status := m.playback.Status()
	if status.Track == nil || status.Track.Key() != ended.Key() || status.State != playback.StatePaused {
		return
	}

	m.mu.RLock()
	fallbackArtist := m.defaultArtist
	policy := m.policy
	m.mu.RUnlock()

	step, ok := m.navigator.Following(ended, status.List, fallbackArtist, policy)
	if !ok {
		zlog.Debug().Msgf("session: queue finished after %s", ended.Key())
		return
	}
	if err := m.playback.Load(step.Artist, step.Track, nil); err != nil {
		m.recordError("auto-advance", err)
	}
}

// broadcast notifies subscribers that fields changed.
func (m *Manager) broadcast(typ notification.Type, fields ...string) {
	m.notification.Broadcast(notification.New(typ, fields...))
}

// recordError stores a failure in the observable error field.
func (m *Manager) recordError(op string, err error) {
	m.mu.Lock()
	m.setErrorLocked(op, err)
	m.mu.Unlock()
	m.broadcast(notification.TypeError, notification.FieldError)
}

func (m *Manager) setErrorLocked(op string, err error) {
	m.lastError = errorMessage(err)
	zlog.Error().Msgf("session: %s failed: %v", op, err)
}

// errorMessage returns a readable message, preferring the catalog's own.
func errorMessage(err error) string {
	var fe *catalog.FetchError
	if errors.As(err, &fe) {
		return fe.Error()
	}
	return err.Error()
}

// playlistSource keeps a nil importer source a nil interface.
func playlistSource(src importer.PlaylistSource) fallback.PlaylistSource {
	if src == nil {
		return nil
	}
	return src
}

// Close stops playback and the event loop.
func (m *Manager) Close() {
	m.cancel()
	m.playback.Close()
	m.notification.Close()
}
