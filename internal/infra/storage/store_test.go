package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStores(t *testing.T) {
	backends := []struct {
		name string
		open func(t *testing.T) Store
	}{
		{
			name: "memory",
			open: func(t *testing.T) Store { return NewMemoryStore() },
		},
		{
			name: "file",
			open: func(t *testing.T) Store {
				s, err := NewFileStore(filepath.Join(t.TempDir(), "data"))
				require.NoError(t, err)
				return s
			},
		},
		{
			name: "sqlite",
			open: func(t *testing.T) Store {
				s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
				require.NoError(t, err)
				return s
			},
		},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			s := b.open(t)
			defer s.Close()

			_, ok, err := s.Get(ctx, "playlists")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Put(ctx, "playlists", []byte(`[{"id":1}]`)))
			v, ok, err := s.Get(ctx, "playlists")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[{"id":1}]`, string(v))

			require.NoError(t, s.Put(ctx, "playlists", []byte(`[]`)))
			v, _, err = s.Get(ctx, "playlists")
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(v))

			require.NoError(t, s.Put(ctx, "likedTracks", []byte(`[1]`)))
			v, _, err = s.Get(ctx, "playlists")
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(v), "keys are independent")
		})
	}
}

func TestSQLite_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")

	s, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "likedTracks", []byte(`[{"id":5}]`)))
	require.NoError(t, s.Close())

	s, err = NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(ctx, "likedTracks")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":5}]`, string(v))
}

func TestFileStore_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Put(context.Background(), "playlists", []byte(`[]`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "playlists.json", entries[0].Name())
}

func TestFileStore_RejectsPathKeys(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	err = s.Put(context.Background(), "../escape", []byte(`x`))
	assert.Error(t, err)
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	value := []byte("abc")
	require.NoError(t, s.Put(ctx, "k", value))
	value[0] = 'x'

	v, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(v))
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name     string
		typ      string
		settings map[string]any
		wantErr  bool
	}{
		{name: "memory", typ: TypeMemory},
		{name: "file", typ: TypeFile, settings: map[string]any{"dir": filepath.Join(t.TempDir(), "f")}},
		{name: "sqlite", typ: TypeSQLite, settings: map[string]any{"path": filepath.Join(t.TempDir(), "s.db")}},
		{name: "unknown type", typ: "redis", wantErr: true},
		{name: "bad settings", typ: TypeFile, settings: map[string]any{"dir": 42}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.typ, tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, s.Close())
		})
	}
}

func TestStripComments(t *testing.T) {
	in := "-- header\nCREATE TABLE x (\n  id INTEGER -- pk\n)"
	assert.Equal(t, "CREATE TABLE x (\n  id INTEGER \n)", stripComments(in))
}
