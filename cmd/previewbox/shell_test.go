package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/previewbox/internal/app/library"
	"github.com/osa030/previewbox/internal/app/session"
	"github.com/osa030/previewbox/internal/infra/catalog"
	"github.com/osa030/previewbox/internal/infra/config"
	"github.com/osa030/previewbox/internal/infra/storage"
)

const searchBody = `{
	"resultCount": 2,
	"results": [
		{"wrapperType": "track", "kind": "song", "trackId": 11, "trackName": "First Song",
		 "artistName": "The Testers", "previewUrl": "https://audio.example.com/11.m4a", "trackTimeMillis": 30000},
		{"wrapperType": "track", "kind": "song", "trackId": 12, "trackName": "Second Song",
		 "artistName": "The Testers", "previewUrl": "https://audio.example.com/12.m4a", "trackTimeMillis": 30000}
	]
}`

func newTestShell(t *testing.T) (*shell, *bytes.Buffer) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, searchBody)
	}))
	t.Cleanup(server.Close)

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Playback.StartDelayMs = 0

	lib, err := library.Open(context.Background(), storage.NewMemoryStore())
	require.NoError(t, err)

	mgr, err := session.NewManager(cfg, session.Dependencies{
		Catalog: catalog.New(catalog.Config{BaseURL: server.URL}),
		Library: lib,
	})
	require.NoError(t, err)
	require.NoError(t, mgr.Start(context.Background()))
	t.Cleanup(mgr.Close)

	var out bytes.Buffer
	return newShell(mgr, strings.NewReader(""), &out), &out
}

func execAll(t *testing.T, s *shell, lines ...string) {
	t.Helper()
	for _, line := range lines {
		_, err := s.exec(context.Background(), line)
		require.NoError(t, err, line)
	}
}

func TestShell_SearchAndPlay(t *testing.T) {
	s, out := newTestShell(t)

	execAll(t, s, "search testers")
	assert.Contains(t, out.String(), "1. The Testers - First Song [0:30]")
	assert.Contains(t, out.String(), "2. The Testers - Second Song")

	execAll(t, s, "play 1")
	current, err := s.current()
	require.NoError(t, err)
	assert.Equal(t, "First Song", current.Name)

	execAll(t, s, "next")
	current, err = s.current()
	require.NoError(t, err)
	assert.Equal(t, "Second Song", current.Name)

	execAll(t, s, "prev")
	current, err = s.current()
	require.NoError(t, err)
	assert.Equal(t, "First Song", current.Name)

	out.Reset()
	execAll(t, s, "status")
	assert.Contains(t, out.String(), "track:   The Testers - First Song")
	assert.Contains(t, out.String(), "queue:   2 tracks")
}

func TestShell_Playlists(t *testing.T) {
	s, out := newTestShell(t)

	execAll(t, s, "search testers", "play 2", "create Road Trip")
	playlists := s.mgr.Snapshot().Playlists
	require.Len(t, playlists, 1)
	id := playlists[0].ID
	ref := strconv.FormatInt(id, 10)

	execAll(t, s, "add "+ref)
	p, ok := s.mgr.Playlist(id)
	require.True(t, ok)
	assert.Equal(t, "Road Trip", p.Name)
	require.Len(t, p.Tracks, 1)
	assert.Equal(t, "Second Song", p.Tracks[0].Name)

	execAll(t, s, "rename "+ref+" Long Drive", "describe "+ref+" songs for the highway")
	p, _ = s.mgr.Playlist(id)
	assert.Equal(t, "Long Drive", p.Name)
	assert.Equal(t, "songs for the highway", p.Description)

	out.Reset()
	execAll(t, s, "playlists")
	assert.Contains(t, out.String(), ref+": Long Drive (1 tracks")

	execAll(t, s, "remove "+ref+" 1")
	p, _ = s.mgr.Playlist(id)
	assert.Empty(t, p.Tracks)

	execAll(t, s, "delete "+ref)
	_, ok = s.mgr.Playlist(id)
	assert.False(t, ok)
}

func TestShell_Like(t *testing.T) {
	s, _ := newTestShell(t)

	execAll(t, s, "search testers", "play 1", "like")
	liked := s.mgr.Snapshot().LikedTracks
	require.Len(t, liked, 1)
	assert.Equal(t, "First Song", liked[0].Name)

	execAll(t, s, "like")
	assert.Empty(t, s.mgr.Snapshot().LikedTracks)
}

func TestShell_Errors(t *testing.T) {
	s, _ := newTestShell(t)

	tests := []struct {
		name string
		line string
	}{
		{name: "unknown command", line: "dance"},
		{name: "play without list", line: "play 1"},
		{name: "bad track number", line: "play one"},
		{name: "like without track", line: "like"},
		{name: "missing playlist", line: "add 42"},
		{name: "bad repeat mode", line: "repeat twice"},
		{name: "bad shuffle value", line: "shuffle maybe"},
		{name: "import disabled", line: "import spotify:playlist:abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.exec(context.Background(), tt.line)
			assert.Error(t, err)
		})
	}
}

func TestShell_PolicyCommands(t *testing.T) {
	s, _ := newTestShell(t)

	execAll(t, s, "shuffle on", "repeat one")
	st := s.mgr.Snapshot()
	assert.True(t, st.Shuffle)
	assert.Equal(t, "one", st.Repeat.String())

	execAll(t, s, "shuffle", "repeat")
	st = s.mgr.Snapshot()
	assert.False(t, st.Shuffle)
	assert.Equal(t, "off", st.Repeat.String())
}

func TestShell_RunStopsOnQuit(t *testing.T) {
	s, out := newTestShell(t)
	s.in = strings.NewReader("help\nquit\nsearch never\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Run(ctx))
	assert.Contains(t, out.String(), "previewbox ready")
	assert.Contains(t, out.String(), "Commands:")
	assert.NotContains(t, out.String(), "(no tracks)")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:30", formatDuration(30000))
	assert.Equal(t, "3:05", formatDuration(185000))
	assert.Equal(t, "0:00", formatDuration(0))
}
