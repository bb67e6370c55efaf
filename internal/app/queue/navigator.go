package queue

import (
	"math/rand"
	"sync"
	"time"

	"github.com/osa030/previewbox/internal/domain/track"
)

// Step is a navigation result: the track to load and the artist it is attributed to.
type Step struct {
	Artist track.Artist
	Track  track.Track
}

// Navigator resolves neighbors of the current track.
type Navigator struct {
	mu   sync.Mutex
	intn func(n int) int
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithIntn replaces the random index source used in shuffle mode.
func WithIntn(intn func(n int) int) Option {
	return func(n *Navigator) {
		n.intn = intn
	}
}

// New creates a new Navigator.
func New(opts ...Option) *Navigator {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	n := &Navigator{intn: rng.Intn}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Next returns the track after current.
// The context is list when non-empty, otherwise the fallback artist's tracks.
// Returns false when the context is empty.
func (n *Navigator) Next(current track.Track, list []track.Track, fallback track.Artist, p Policy) (Step, bool) {
	if !p.Shuffle && p.Repeat == RepeatOne {
		return attribute(current, fallback), true
	}

	ctx := resolve(list, fallback)
	if len(ctx) == 0 {
		return Step{}, false
	}

	if p.Shuffle {
		i := n.randomIndex(len(ctx))
		if len(ctx) > 1 && ctx[i].Key() == current.Key() {
			i = (i + 1) % len(ctx)
		}
		return attribute(ctx[i], fallback), true
	}

	i := track.IndexOf(ctx, current.Key())
	if i < 0 || i == len(ctx)-1 {
		// RepeatAll and RepeatOff both wrap on an explicit next.
		return attribute(ctx[0], fallback), true
	}
	return attribute(ctx[i+1], fallback), true
}

// Previous returns the track before current, wrapping to the last track.
// In shuffle mode the pick is unguarded and may return current.
func (n *Navigator) Previous(current track.Track, list []track.Track, fallback track.Artist, p Policy) (Step, bool) {
	ctx := resolve(list, fallback)
	if len(ctx) == 0 {
		return Step{}, false
	}

	if p.Shuffle {
		return attribute(ctx[n.randomIndex(len(ctx))], fallback), true
	}

	i := track.IndexOf(ctx, current.Key())
	if i <= 0 {
		return attribute(ctx[len(ctx)-1], fallback), true
	}
	return attribute(ctx[i-1], fallback), true
}

// Following returns the track to auto-advance to after current ends naturally.
// Unlike Next, RepeatOff stops at the end of the context.
func (n *Navigator) Following(current track.Track, list []track.Track, fallback track.Artist, p Policy) (Step, bool) {
	if p.Repeat == RepeatOne {
		return attribute(current, fallback), true
	}
	if p.Shuffle || p.Repeat == RepeatAll {
		return n.Next(current, list, fallback, p)
	}

	ctx := resolve(list, fallback)
	i := track.IndexOf(ctx, current.Key())
	if i < 0 || i == len(ctx)-1 {
		return Step{}, false
	}
	return attribute(ctx[i+1], fallback), true
}

func (n *Navigator) randomIndex(length int) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.intn(length)
}

// resolve returns the navigation context.
func resolve(list []track.Track, fallback track.Artist) []track.Track {
	if len(list) > 0 {
		return list
	}
	return fallback.Tracks
}

// attribute pairs a track with the artist it is loaded under.
func attribute(t track.Track, fallback track.Artist) Step {
	if t.ArtistName != "" {
		return Step{Artist: fallback.WithName(t.ArtistName), Track: t}
	}
	return Step{Artist: fallback, Track: t}
}
