// Package importer copies a Spotify playlist into the local library, resolving
// each entry to a playable catalog preview.
package importer

import (
	"context"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/previewbox/internal/domain/playlist"
	"github.com/osa030/previewbox/internal/domain/track"
	"github.com/osa030/previewbox/internal/infra/spotify"
)

// DefaultThreshold is the minimum Jaro-Winkler similarity for a match.
const DefaultThreshold = 0.85

// PlaylistSource reads remote playlists.
type PlaylistSource interface {
	GetPlaylist(ctx context.Context, playlistURL string) (*spotify.Playlist, error)
}

// Searcher is the catalog search used to resolve entries.
type Searcher interface {
	Search(ctx context.Context, term string) ([]track.Track, error)
}

// Collections is the part of the library an import writes to.
type Collections interface {
	CreatePlaylist(ctx context.Context, name string) (playlist.Playlist, error)
	UpdatePlaylist(ctx context.Context, id int64, u playlist.Update) error
	AddTrackToPlaylist(ctx context.Context, id int64, t track.Track) error
	DeletePlaylist(ctx context.Context, id int64) error
}

// Progress is called after each entry is processed.
type Progress func(done, total int, ref spotify.TrackRef, matched bool)

// Result summarizes an import.
type Result struct {
	PlaylistID int64
	Name       string
	Matched    int
	Unmatched  []spotify.TrackRef
}

// Importer imports remote playlists.
type Importer struct {
	source    PlaylistSource
	catalog   Searcher
	library   Collections
	threshold float64
}

// New creates an importer. A threshold outside (0, 1] falls back to DefaultThreshold.
func New(source PlaylistSource, catalog Searcher, library Collections, threshold float64) *Importer {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Importer{
		source:    source,
		catalog:   catalog,
		library:   library,
		threshold: threshold,
	}
}

// Import creates a local playlist from playlistURL. Entries without a catalog
// match are reported in Result.Unmatched; only cancellation and library
// write failures abort the import. A non-nil Result means the playlist
// exists in the library, even when an error is returned.
func (im *Importer) Import(ctx context.Context, playlistURL string, progress Progress) (*Result, error) {
	remote, err := im.source.GetPlaylist(ctx, playlistURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read playlist")
	}

	local, err := im.library.CreatePlaylist(ctx, remote.Name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create playlist")
	}
	if remote.Description != "" || remote.Image != "" {
		u := playlist.Update{}
		if remote.Description != "" {
			u.Description = &remote.Description
		}
		if remote.Image != "" {
			u.Image = &remote.Image
		}
		if err := im.library.UpdatePlaylist(ctx, local.ID, u); err != nil {
			err = errors.Wrap(err, "failed to update playlist")
			if derr := im.library.DeletePlaylist(ctx, local.ID); derr != nil {
				zlog.Warn().Msgf("importer: failed to remove partial playlist id=%d: %v", local.ID, derr)
				return &Result{PlaylistID: local.ID, Name: local.Name}, err
			}
			return nil, err
		}
	}

	result := &Result{PlaylistID: local.ID, Name: local.Name}
	for i, ref := range remote.Tracks {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		t, ok := im.match(ctx, ref)
		if ok {
			if err := im.library.AddTrackToPlaylist(ctx, local.ID, t); err != nil {
				return result, errors.Wrap(err, "failed to add track")
			}
			result.Matched++
		} else {
			result.Unmatched = append(result.Unmatched, ref)
		}

		if progress != nil {
			progress(i+1, len(remote.Tracks), ref, ok)
		}
	}

	zlog.Info().Msgf("importer: imported playlist id=%d name=%s matched=%d unmatched=%d",
		local.ID, local.Name, result.Matched, len(result.Unmatched))
	return result, nil
}

// match finds the catalog track most similar to ref. The title is searched
// without bracketed suffixes first, then in full if that finds nothing.
func (im *Importer) match(ctx context.Context, ref spotify.TrackRef) (track.Track, bool) {
	cleanTitle := ref.Name
	if idx := strings.IndexAny(cleanTitle, "(["); idx != -1 {
		cleanTitle = strings.TrimSpace(cleanTitle[:idx])
	}

	query := strings.ToLower(ref.Artist + " " + cleanTitle)
	results, err := im.catalog.Search(ctx, query)
	if err != nil {
		zlog.Warn().Msgf("importer: search failed query=%q err=%v", query, err)
		return track.Track{}, false
	}
	if len(results) == 0 && cleanTitle != ref.Name {
		query = strings.ToLower(ref.Artist + " " + ref.Name)
		if results, err = im.catalog.Search(ctx, query); err != nil {
			zlog.Warn().Msgf("importer: search failed query=%q err=%v", query, err)
			return track.Track{}, false
		}
	}

	var best track.Track
	var highestScore float64
	for _, cand := range results {
		candStr := strings.ToLower(cand.ArtistName + " " + cand.Name)
		score := strutil.Similarity(query, candStr, metrics.NewJaroWinkler())
		if score > highestScore && score >= im.threshold {
			highestScore = score
			best = cand
		}
	}
	if highestScore == 0 {
		return track.Track{}, false
	}
	zlog.Debug().Msgf("importer: matched %q to id=%d score=%.3f", query, best.ID, highestScore)
	return best, true
}
