package catalog

import (
	"strconv"
	"strings"
	"time"

	"github.com/osa030/previewbox/internal/domain/track"
)

// Item is a raw search result record.
type Item struct {
	WrapperType      string `json:"wrapperType"`
	Kind             string `json:"kind"`
	TrackID          int64  `json:"trackId"`
	CollectionID     int64  `json:"collectionId"`
	ArtistID         int64  `json:"artistId"`
	TrackName        string `json:"trackName"`
	CollectionName   string `json:"collectionName"`
	ArtistName       string `json:"artistName"`
	ArtworkURL100    string `json:"artworkUrl100"`
	PreviewURL       string `json:"previewUrl"`
	TrackTimeMillis  int64  `json:"trackTimeMillis"`
	ReleaseDate      string `json:"releaseDate"`
	PrimaryGenreName string `json:"primaryGenreName"`
}

// Normalize maps a raw record to a Track. It never fails.
func Normalize(it Item) track.Track {
	id := it.TrackID
	if id == 0 {
		id = it.CollectionID
	}
	name := it.TrackName
	if name == "" {
		name = it.CollectionName
	}

	return track.Track{
		ID:          id,
		Source:      track.SourceCatalog,
		Name:        name,
		ArtistName:  it.ArtistName,
		AlbumName:   it.CollectionName,
		AlbumCover:  UpscaleArtwork(it.ArtworkURL100),
		Song:        it.PreviewURL,
		ReleaseYear: releaseYear(it.ReleaseDate),
		DurationMs:  it.TrackTimeMillis,
	}
}

// NormalizeAll normalizes a list of records, keeping order.
func NormalizeAll(items []Item) []track.Track {
	tracks := make([]track.Track, 0, len(items))
	for _, it := range items {
		tracks = append(tracks, Normalize(it))
	}
	return tracks
}

// UpscaleArtwork rewrites a 100x100 artwork URL to its 600x600 variant.
func UpscaleArtwork(u string) string {
	return strings.Replace(u, "100x100", "600x600", 1)
}

// releaseYear returns the year of an RFC3339 date, or of a leading
// 4-digit year. Returns 0 when neither can be read.
func releaseYear(date string) int {
	if date == "" {
		return 0
	}
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		return t.Year()
	}
	if len(date) >= 4 {
		if y, err := strconv.Atoi(date[:4]); err == nil && y > 0 {
			return y
		}
	}
	return 0
}
