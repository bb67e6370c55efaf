package session

import (
	"context"
	"strings"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/previewbox/internal/app/notification"
	"github.com/osa030/previewbox/internal/infra/catalog"
)

// Search replaces the search results with the tracks matching term.
// A blank term performs no request and leaves the results untouched.
// On failure the error is recorded and returned, and prior results are kept.
// A completion older than the newest applied search changes nothing; its
// error, if any, is still returned to the caller.
func (m *Manager) Search(ctx context.Context, term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}

	m.mu.Lock()
	seq := m.searchSeq.next()
	m.mu.Unlock()

	tracks, err := m.catalog.Search(ctx, term)
	if err == nil {
		tracks = m.filterChain.Apply(ctx, tracks)
	}

	m.mu.Lock()
	if !m.searchSeq.accept(seq) {
		m.mu.Unlock()
		zlog.Debug().Msgf("session: stale search discarded: term=%q seq=%d", term, seq)
		return err
	}
	if err != nil {
		m.setErrorLocked("search", err)
		m.mu.Unlock()
		m.broadcast(notification.TypeError, notification.FieldError)
		return err
	}
	m.searchTerm = term
	m.searchTracks = tracks
	m.lastError = ""
	m.mu.Unlock()

	zlog.Debug().Msgf("session: search applied: term=%q results=%d seq=%d", term, len(tracks), seq)
	m.broadcast(notification.TypeSearch, notification.FieldSearchTracks, notification.FieldError)
	return nil
}

// FetchHomeSections replaces the home sections with the configured queries' results.
// Stale completions are handled as in Search.
func (m *Manager) FetchHomeSections(ctx context.Context) error {
	queries := make([]catalog.SectionQuery, 0, len(m.config.Catalog.HomeSections))
	for _, s := range m.config.Catalog.HomeSections {
		queries = append(queries, catalog.SectionQuery{Title: s.Title, Term: s.Term, Entity: s.Entity})
	}

	m.mu.Lock()
	seq := m.homeSeq.next()
	m.mu.Unlock()

	sections, err := m.catalog.HomeSections(ctx, queries)
	if err == nil {
		for i := range sections {
			sections[i].Tracks = m.filterChain.Apply(ctx, sections[i].Tracks)
		}
	}

	m.mu.Lock()
	if !m.homeSeq.accept(seq) {
		m.mu.Unlock()
		zlog.Debug().Msgf("session: stale home sections discarded: seq=%d", seq)
		return err
	}
	if err != nil {
		m.setErrorLocked("home sections", err)
		m.mu.Unlock()
		m.broadcast(notification.TypeError, notification.FieldError)
		return err
	}
	m.homeSections = sections
	m.lastError = ""
	m.mu.Unlock()

	m.broadcast(notification.TypeHome, notification.FieldHomeSections, notification.FieldError)
	return nil
}

// FetchTopArtists replaces the top artists. Names come from the Last.fm chart
// when available, otherwise from configuration. Stale completions are handled
// as in Search.
func (m *Manager) FetchTopArtists(ctx context.Context) error {
	m.mu.Lock()
	seq := m.topSeq.next()
	m.mu.Unlock()

	names := m.topArtistNames(ctx)
	artists, err := m.catalog.TopArtists(ctx, names)

	m.mu.Lock()
	if !m.topSeq.accept(seq) {
		m.mu.Unlock()
		zlog.Debug().Msgf("session: stale top artists discarded: seq=%d", seq)
		return err
	}
	if err != nil {
		m.setErrorLocked("top artists", err)
		m.mu.Unlock()
		m.broadcast(notification.TypeError, notification.FieldError)
		return err
	}
	m.topArtists = artists
	m.lastError = ""
	m.mu.Unlock()

	m.broadcast(notification.TypeTopArtists, notification.FieldTopArtists, notification.FieldError)
	return nil
}

// topArtistNames returns the artists to look up. A chart failure falls back
// to the configured names.
func (m *Manager) topArtistNames(ctx context.Context) []string {
	configured := m.config.Catalog.TopArtists
	if m.charts == nil {
		return configured
	}

	chart, err := m.charts.GetChartTopArtists(ctx, m.config.LastFM.ChartLimit)
	if err != nil {
		zlog.Warn().Msgf("session: chart lookup failed, using configured artists: %v", err)
		return configured
	}
	names := make([]string, 0, len(chart))
	for _, a := range chart {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	if len(names) == 0 {
		return configured
	}
	return names
}
