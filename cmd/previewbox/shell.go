package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/previewbox/internal/app/notification"
	"github.com/osa030/previewbox/internal/app/queue"
	"github.com/osa030/previewbox/internal/app/session"
	"github.com/osa030/previewbox/internal/domain/playlist"
	"github.com/osa030/previewbox/internal/domain/track"
	"github.com/osa030/previewbox/internal/infra/catalog"
)

const shellHelp = `Commands:
  search TERM            search the catalog
  home                   fetch the home sections
  section N              list the tracks of home section N
  top                    fetch the top artists
  artist                 list the default artist's tracks
  liked                  list liked tracks
  playlists              list saved playlists
  playlist ID            list the tracks of a playlist
  play N                 play track N of the last listed tracks
  toggle | p             play or pause
  next | n               next track
  prev | b               previous track
  first                  restart from the first track of the queue
  reset                  stop and clear the current track
  shuffle [on|off]       set or toggle shuffle
  repeat [off|all|one]   set or cycle the repeat mode
  like                   like or unlike the current track
  create NAME            create a playlist
  add ID                 add the current track to a playlist
  remove ID N            remove track N from a playlist
  rename ID NAME         rename a playlist
  describe ID TEXT       set a playlist description
  delete ID              delete a playlist
  import URL             import a Spotify playlist
  status                 show the playback state
  quit                   exit`

// shell is the interactive player.
type shell struct {
	mgr *session.Manager
	in  io.Reader

	outMu sync.Mutex
	out   io.Writer

	// listed is the list "play N" indexes into.
	listed []track.Track
}

func newShell(mgr *session.Manager, in io.Reader, out io.Writer) *shell {
	return &shell{mgr: mgr, in: in, out: out}
}

// Run reads commands until quit, EOF or cancellation.
func (s *shell) Run(ctx context.Context) error {
	subID := s.mgr.Subscribe(notification.StreamFunc(s.onNotification))
	defer s.mgr.Unsubscribe(subID)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	s.printf("previewbox ready, type \"help\" for commands\n")
	for {
		s.printf("> ")
		select {
		case <-ctx.Done():
			s.printf("\n")
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := s.exec(ctx, line)
			if err != nil {
				s.printf("error: %v\n", err)
			}
			if quit {
				return nil
			}
		}
	}
}

// exec runs a single command line. It reports whether the shell should exit.
func (s *shell) exec(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

	switch cmd {
	case "help", "?":
		s.printf("%s\n", shellHelp)
	case "quit", "exit", "q":
		return true, nil

	case "search":
		if err := s.mgr.Search(ctx, rest); err != nil {
			return false, err
		}
		s.list(s.mgr.Snapshot().SearchTracks)
	case "home":
		if err := s.mgr.FetchHomeSections(ctx); err != nil {
			return false, err
		}
		s.withOut(func(w io.Writer) { printSections(w, s.mgr.Snapshot().HomeSections) })
	case "section":
		n, err := argIndex(args, 0)
		if err != nil {
			return false, err
		}
		sections := s.mgr.Snapshot().HomeSections
		if n < 0 || n >= len(sections) {
			return false, session.ErrIndexOutOfRange
		}
		s.list(sections[n].Tracks)
	case "top":
		if err := s.mgr.FetchTopArtists(ctx); err != nil {
			return false, err
		}
		artists := s.mgr.Snapshot().TopArtists
		s.withOut(func(w io.Writer) { printArtists(w, artists) })
		s.listed = make([]track.Track, 0, len(artists))
		for _, a := range artists {
			s.listed = append(s.listed, a.TopTrack)
		}
	case "artist":
		s.list(s.mgr.Snapshot().DefaultArtist.Tracks)
	case "liked":
		s.list(s.mgr.Snapshot().LikedTracks)
	case "playlists":
		s.withOut(func(w io.Writer) { printPlaylists(w, s.mgr.Snapshot().Playlists) })
	case "playlist":
		p, err := s.playlistArg(args)
		if err != nil {
			return false, err
		}
		s.list(p.Tracks)

	case "play":
		n, err := argIndex(args, 0)
		if err != nil {
			return false, err
		}
		return false, s.mgr.PlayFromList(s.listed, n)
	case "toggle", "p":
		return false, s.mgr.Toggle()
	case "next", "n":
		return false, s.navigate(s.mgr.Next)
	case "prev", "b":
		return false, s.navigate(s.mgr.Previous)
	case "first":
		return false, s.mgr.PlayFromFirst()
	case "reset", "stop":
		s.mgr.Reset()
	case "shuffle":
		if len(args) == 0 {
			s.printf("shuffle: %t\n", s.mgr.ToggleShuffle())
			return false, nil
		}
		switch strings.ToLower(args[0]) {
		case "on":
			s.mgr.SetShuffle(true)
		case "off":
			s.mgr.SetShuffle(false)
		default:
			return false, errors.Newf("shuffle takes on or off, got %q", args[0])
		}
	case "repeat":
		if len(args) == 0 {
			s.printf("repeat: %s\n", s.mgr.CycleRepeatMode())
			return false, nil
		}
		mode, err := queue.ParseRepeatMode(args[0])
		if err != nil {
			return false, err
		}
		s.mgr.SetRepeatMode(mode)

	case "like":
		current, err := s.current()
		if err != nil {
			return false, err
		}
		liked, err := s.mgr.ToggleLike(ctx, current)
		if err != nil {
			return false, err
		}
		s.printf("%s liked: %t\n", current.Name, liked)
	case "create":
		if rest == "" {
			return false, errors.New("create needs a playlist name")
		}
		p, err := s.mgr.CreatePlaylist(ctx, rest)
		if err != nil {
			return false, err
		}
		s.printf("created playlist %d: %s\n", p.ID, p.Name)
	case "add":
		p, err := s.playlistArg(args)
		if err != nil {
			return false, err
		}
		current, err := s.current()
		if err != nil {
			return false, err
		}
		return false, s.mgr.AddTrackToPlaylist(ctx, p.ID, current)
	case "remove":
		p, err := s.playlistArg(args)
		if err != nil {
			return false, err
		}
		n, err := argIndex(args, 1)
		if err != nil {
			return false, err
		}
		if n < 0 || n >= len(p.Tracks) {
			return false, session.ErrIndexOutOfRange
		}
		return false, s.mgr.RemoveTrackFromPlaylist(ctx, p.ID, p.Tracks[n].Key())
	case "rename", "describe":
		p, err := s.playlistArg(args)
		if err != nil {
			return false, err
		}
		text := strings.TrimSpace(strings.TrimPrefix(rest, args[0]))
		var u playlist.Update
		if cmd == "rename" {
			if text == "" {
				return false, errors.New("rename needs a new name")
			}
			u.Name = &text
		} else {
			u.Description = &text
		}
		return false, s.mgr.UpdatePlaylist(ctx, p.ID, u)
	case "delete":
		p, err := s.playlistArg(args)
		if err != nil {
			return false, err
		}
		return false, s.mgr.DeletePlaylist(ctx, p.ID)
	case "import":
		if rest == "" {
			return false, errors.New("import needs a playlist URL")
		}
		result, err := s.mgr.ImportPlaylist(ctx, rest, nil)
		if result != nil {
			s.printf("imported %q as playlist %d: %d matched, %d unmatched\n",
				result.Name, result.PlaylistID, result.Matched, len(result.Unmatched))
		}
		return false, err

	case "status":
		s.withOut(func(w io.Writer) { printStatus(w, s.mgr.Snapshot()) })
	default:
		return false, errors.Newf("unknown command %q, type \"help\"", cmd)
	}
	return false, nil
}

func (s *shell) navigate(nav func(track.Track) error) error {
	current, _ := s.current()
	return nav(current)
}

// current returns the loaded track.
func (s *shell) current() (track.Track, error) {
	st := s.mgr.Snapshot()
	if st.CurrentTrack == nil {
		return track.Track{}, errors.New("nothing is playing")
	}
	return *st.CurrentTrack, nil
}

// playlistArg resolves the playlist ID in args[0].
func (s *shell) playlistArg(args []string) (playlist.Playlist, error) {
	if len(args) == 0 {
		return playlist.Playlist{}, errors.New("missing playlist id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return playlist.Playlist{}, errors.Newf("invalid playlist id %q", args[0])
	}
	p, ok := s.mgr.Playlist(id)
	if !ok {
		return playlist.Playlist{}, errors.Newf("playlist %d not found", id)
	}
	return p, nil
}

// list prints tracks and makes them the target of "play N".
func (s *shell) list(tracks []track.Track) {
	s.listed = tracks
	s.withOut(func(w io.Writer) { printTracks(w, tracks) })
}

// onNotification prints playback changes as they happen.
func (s *shell) onNotification(n *notification.Notification) error {
	switch {
	case n.Type == notification.TypeError:
		if msg := s.mgr.Snapshot().Error; msg != "" {
			s.printf("\n[error] %s\n", msg)
		}
	case n.Has(notification.FieldCurrentTrack):
		st := s.mgr.Snapshot()
		if st.CurrentTrack != nil {
			s.printf("\n[now playing] %s - %s\n", st.CurrentTrack.ArtistName, st.CurrentTrack.Name)
		}
	}
	return nil
}

func (s *shell) printf(format string, args ...any) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

func (s *shell) withOut(fn func(w io.Writer)) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fn(s.out)
}

// argIndex parses the 1-based track number in args[i] into a list index.
func argIndex(args []string, i int) (int, error) {
	if len(args) <= i {
		return 0, errors.New("missing track number")
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, errors.Newf("invalid track number %q", args[i])
	}
	return n - 1, nil
}

func printTracks(w io.Writer, tracks []track.Track) {
	if len(tracks) == 0 {
		fmt.Fprintln(w, "  (no tracks)")
		return
	}
	for i, t := range tracks {
		fmt.Fprintf(w, "  %3d. %s - %s", i+1, t.ArtistName, t.Name)
		if t.ReleaseYear > 0 {
			fmt.Fprintf(w, " (%d)", t.ReleaseYear)
		}
		fmt.Fprintf(w, " [%s]\n", formatDuration(t.DurationMs))
	}
}

func printSections(w io.Writer, sections []catalog.Section) {
	for i, sec := range sections {
		fmt.Fprintf(w, "  %d. %s (%d tracks)\n", i+1, sec.Title, len(sec.Tracks))
	}
}

func printArtists(w io.Writer, artists []catalog.ArtistSummary) {
	for i, a := range artists {
		fmt.Fprintf(w, "  %3d. %s", i+1, a.Name)
		if a.Genre != "" {
			fmt.Fprintf(w, " [%s]", a.Genre)
		}
		fmt.Fprintf(w, " - %s\n", a.TopTrack.Name)
	}
}

func printPlaylists(w io.Writer, playlists []playlist.Playlist) {
	if len(playlists) == 0 {
		fmt.Fprintln(w, "  (no playlists)")
		return
	}
	for _, p := range playlists {
		fmt.Fprintf(w, "  %d: %s (%d tracks, %s)\n",
			p.ID, p.Name, len(p.Tracks), p.TotalDuration().Round(time.Second))
	}
}

func printStatus(w io.Writer, st session.State) {
	fmt.Fprintf(w, "  state:   %s\n", st.PlaybackState)
	if st.CurrentTrack != nil {
		fmt.Fprintf(w, "  track:   %s - %s\n", st.CurrentTrack.ArtistName, st.CurrentTrack.Name)
	}
	if st.CurrentArtist != nil {
		fmt.Fprintf(w, "  artist:  %s\n", st.CurrentArtist.Name)
	}
	fmt.Fprintf(w, "  queue:   %d tracks\n", len(st.CurrentList))
	fmt.Fprintf(w, "  shuffle: %t  repeat: %s\n", st.Shuffle, st.Repeat)
	fmt.Fprintf(w, "  history: %d tracks\n", len(st.RecentlyPlayed))
	if st.Error != "" {
		fmt.Fprintf(w, "  error:   %s\n", st.Error)
	}
}

// formatDuration formats milliseconds as m:ss.
func formatDuration(ms int64) string {
	sec := ms / 1000
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}
