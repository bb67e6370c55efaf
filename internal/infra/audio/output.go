// Package audio provides audio outputs driven by the playback controller.
package audio

import (
	"time"

	"github.com/cockroachdb/errors"
)

// DefaultLength is used when a track does not report its length.
// Catalog previews are 30 seconds long.
const DefaultLength = 30 * time.Second

// ErrNoSource is returned when an output is opened without a source.
var ErrNoSource = errors.New("no audio source")

// Output is a single audio handle bound to one source.
// A fresh output is paused.
type Output interface {
	// Source returns the bound source, or "" once cleared.
	Source() string
	Play() error
	Pause() error
	Paused() bool
	// Clear stops the output and releases its source. Done is closed afterwards.
	Clear() error
	// Done is closed when the track ends or the output is cleared.
	Done() <-chan struct{}
}

// Opener creates outputs.
type Opener interface {
	Open(src string, length time.Duration) (Output, error)
}
