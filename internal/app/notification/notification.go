package notification

// Type names the area of state a notification is about.
type Type string

const (
	TypePlayback   Type = "playback"
	TypeCollection Type = "collection"
	TypeSearch     Type = "search"
	TypeHome       Type = "home"
	TypeTopArtists Type = "top_artists"
	TypeError      Type = "error"
)

// Observable field names carried in Notification.Fields.
const (
	FieldIsPlaying      = "isPlaying"
	FieldPlaybackState  = "playbackState"
	FieldCurrentTrack   = "currentTrack"
	FieldCurrentArtist  = "currentArtist"
	FieldCurrentList    = "currentList"
	FieldRecentlyPlayed = "recentlyPlayed"
	FieldShuffle        = "shuffle"
	FieldRepeat         = "repeat"
	FieldLikedTracks    = "likedTracks"
	FieldPlaylists      = "playlists"
	FieldSearchTracks   = "searchTracks"
	FieldHomeSections   = "homeSections"
	FieldTopArtists     = "topArtists"
	FieldError          = "error"
)

// Notification tells subscribers which observable fields changed.
// Subscribers read the new values from a session snapshot.
type Notification struct {
	SequenceNo uint64
	Type       Type
	Fields     []string
}

// New creates a notification without a sequence number; Broadcast assigns one.
func New(typ Type, fields ...string) *Notification {
	return &Notification{Type: typ, Fields: fields}
}

// copy returns a deep copy so subscribers cannot affect each other.
func (n *Notification) copy() *Notification {
	c := *n
	c.Fields = append([]string(nil), n.Fields...)
	return &c
}

// Has reports whether the notification names the field.
func (n *Notification) Has(field string) bool {
	for _, f := range n.Fields {
		if f == field {
			return true
		}
	}
	return false
}
