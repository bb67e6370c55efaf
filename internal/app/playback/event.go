package playback

import "github.com/osa030/previewbox/internal/domain/track"

// EventType represents a playback event type.
type EventType int

const (
	EventTrackLoaded     EventType = iota // A track was loaded as current
	EventPlaybackStarted                  // The deferred start fired
	EventStateChanged                     // Play/pause toggled
	EventTrackEnded                       // The output reached the end of the track
	EventReset                            // Playback was reset
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackLoaded:
		return "track_loaded"
	case EventPlaybackStarted:
		return "playback_started"
	case EventStateChanged:
		return "state_changed"
	case EventTrackEnded:
		return "track_ended"
	case EventReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
type Event struct {
	Type  EventType
	Track *track.Track // Track the event refers to (nil for reset)
	State State        // Playback state after the event
}
