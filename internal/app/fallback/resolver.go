package fallback

import (
	"context"
	"strings"
	"sync"

	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/osa030/previewbox/internal/domain/track"
)

// maxConcurrentLookups bounds parallel catalog searches per build.
const maxConcurrentLookups = 8

// trackRef names a track known only by title and artist.
type trackRef struct {
	Name   string
	Artist string
}

// resolver maps external track references to playable catalog tracks.
type resolver struct {
	catalog Searcher

	// Catalog lookups keyed by "name:artist". Misses are cached as nil.
	cache map[string]*track.Track
	mu    sync.RWMutex
}

func newResolver(catalog Searcher) *resolver {
	return &resolver{
		catalog: catalog,
		cache:   make(map[string]*track.Track),
	}
}

// resolveAll resolves refs concurrently, keeping their order.
// References with no catalog match are dropped.
func (r *resolver) resolveAll(ctx context.Context, refs []trackRef) []track.Track {
	resolved := make([]*track.Track, len(refs))

	var g errgroup.Group
	g.SetLimit(maxConcurrentLookups)
	for i, ref := range refs {
		g.Go(func() error {
			resolved[i] = r.resolve(ctx, ref)
			return nil
		})
	}
	_ = g.Wait()

	tracks := make([]track.Track, 0, len(refs))
	for _, t := range resolved {
		if t != nil {
			tracks = append(tracks, *t)
		}
	}
	return tracks
}

// resolve finds the catalog track for ref. The first result credited to the
// same artist wins. Search errors are not cached.
func (r *resolver) resolve(ctx context.Context, ref trackRef) *track.Track {
	key := ref.Name + ":" + ref.Artist

	r.mu.RLock()
	if cached, ok := r.cache[key]; ok {
		r.mu.RUnlock()
		return cached
	}
	r.mu.RUnlock()

	results, err := r.catalog.Search(ctx, ref.Artist+" "+ref.Name)
	if err != nil {
		zlog.Warn().Msgf("fallback: catalog search failed track=%s artist=%s err=%v", ref.Name, ref.Artist, err)
		return nil
	}

	var found *track.Track
	for _, t := range results {
		if strings.EqualFold(t.ArtistName, ref.Artist) {
			found = &t
			break
		}
	}

	r.mu.Lock()
	r.cache[key] = found
	r.mu.Unlock()
	return found
}
