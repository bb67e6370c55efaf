// Package playback provides single-output playback control with a delayed start.
package playback

// State represents the playback state.
type State int

const (
	StateIdle    State = iota // No current track
	StateLoading              // Track loaded, deferred start pending
	StatePlaying              // Track is playing
	StatePaused               // Track is loaded but not playing
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}
