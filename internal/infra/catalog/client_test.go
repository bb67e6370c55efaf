package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchBody = `{
	"resultCount": 2,
	"results": [
		{
			"wrapperType": "track",
			"trackId": 101,
			"collectionId": 11,
			"artistId": 1,
			"trackName": "First",
			"collectionName": "Album",
			"artistName": "Artist",
			"artworkUrl100": "https://img.example.com/a/100x100bb.jpg",
			"previewUrl": "https://audio.example.com/101.m4a",
			"trackTimeMillis": 215000,
			"releaseDate": "2019-03-01T12:00:00Z",
			"primaryGenreName": "Pop"
		},
		{
			"wrapperType": "track",
			"trackId": 102,
			"trackName": "Second",
			"artistName": "Artist",
			"previewUrl": "https://audio.example.com/102.m4a"
		}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(Config{BaseURL: server.URL, Country: "JP", Limit: 10})
}

func TestSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "daft punk", q.Get("term"))
		assert.Equal(t, "music", q.Get("media"))
		assert.Equal(t, "song", q.Get("entity"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, "JP", q.Get("country"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, searchBody)
	})

	tracks, err := client.Search(context.Background(), "daft punk")
	require.NoError(t, err)
	require.Len(t, tracks, 2)

	assert.Equal(t, int64(101), tracks[0].ID)
	assert.Equal(t, "First", tracks[0].Name)
	assert.Equal(t, "https://img.example.com/a/600x600bb.jpg", tracks[0].AlbumCover)
	assert.Equal(t, 2019, tracks[0].ReleaseYear)
	assert.Equal(t, int64(215000), tracks[0].DurationMs)
	assert.Equal(t, "", tracks[1].AlbumCover)
}

func TestSearch_NonSuccessStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	tracks, err := client.Search(context.Background(), "anything")
	require.Error(t, err)
	assert.Nil(t, tracks)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.Status)
	assert.Equal(t, "search", fetchErr.Op)
	assert.Contains(t, err.Error(), "service unavailable")
}

func TestSearch_APIErrorMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"errorMessage": "Invalid value(s) for key(s): [entity]"}`)
	})

	_, err := client.Search(context.Background(), "x")
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "Invalid value(s) for key(s): [entity]", fetchErr.Message)
}

func TestSearch_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()
	client := New(Config{BaseURL: server.URL})

	_, err := client.Search(context.Background(), "x")
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, 0, fetchErr.Status)
	assert.NotNil(t, fetchErr.Unwrap())
}

func TestHomeSections(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		term := r.URL.Query().Get("term")
		fmt.Fprintf(w, `{"resultCount":1,"results":[{"trackId":1,"trackName":%q,"entity":%q}]}`,
			term, r.URL.Query().Get("entity"))
	})

	sections, err := client.HomeSections(context.Background(), []SectionQuery{
		{Title: "Hits", Term: "top hits"},
		{Title: "Jazz", Term: "jazz", Entity: "song"},
		{Title: "Chill", Term: "chill"},
	})
	require.NoError(t, err)
	require.Len(t, sections, 3)
	assert.Equal(t, "Hits", sections[0].Title)
	assert.Equal(t, "top hits", sections[0].Tracks[0].Name)
	assert.Equal(t, "Jazz", sections[1].Title)
	assert.Equal(t, "Chill", sections[2].Title)
}

func TestHomeSections_OneFailureFailsAll(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("term") == "broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, searchBody)
	})

	sections, err := client.HomeSections(context.Background(), []SectionQuery{
		{Title: "Good", Term: "good"},
		{Title: "Bad", Term: "broken"},
	})
	require.Error(t, err)
	assert.Nil(t, sections)
}

func TestTopArtists(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query()
		assert.Equal(t, "artistTerm", q.Get("attribute"))
		assert.Equal(t, "1", q.Get("limit"))

		if q.Get("term") == "Nobody" {
			fmt.Fprint(w, `{"resultCount":0,"results":[]}`)
			return
		}
		fmt.Fprintf(w, `{"resultCount":1,"results":[{"trackId":5,"artistId":9,"trackName":"Hit","artistName":%q,"primaryGenreName":"Rock","artworkUrl100":"https://img/100x100.jpg"}]}`,
			q.Get("term"))
	})

	artists, err := client.TopArtists(context.Background(), []string{"Queen", "Nobody", "Muse"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, artists, 2)

	assert.Equal(t, "Queen", artists[0].Name)
	assert.Equal(t, int64(9), artists[0].ID)
	assert.Equal(t, "Rock", artists[0].Genre)
	assert.Equal(t, "https://img/600x600.jpg", artists[0].Image)
	assert.Equal(t, "Hit", artists[0].TopTrack.Name)
	assert.Equal(t, "Muse", artists[1].Name)
}

func TestTopArtists_Failure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	artists, err := client.TopArtists(context.Background(), []string{"Queen"})
	require.Error(t, err)
	assert.Nil(t, artists)
}

func TestQuery_CancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searchBody)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Search(ctx, "x")
	require.Error(t, err)
}
