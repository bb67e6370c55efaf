// Package main provides the previewbox command line player.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"github.com/osa030/previewbox/internal/app/filter"
	"github.com/osa030/previewbox/internal/app/library"
	"github.com/osa030/previewbox/internal/app/session"
	"github.com/osa030/previewbox/internal/infra/audio"
	"github.com/osa030/previewbox/internal/infra/catalog"
	"github.com/osa030/previewbox/internal/infra/config"
	"github.com/osa030/previewbox/internal/infra/lastfm"
	"github.com/osa030/previewbox/internal/infra/logger"
	"github.com/osa030/previewbox/internal/infra/spotify"
	"github.com/osa030/previewbox/internal/infra/storage"
)

var (
	app        = kingpin.New("previewbox", "previewbox catalog preview player")
	configPath = app.Flag("config", "Path to config file").Envar("PREVIEWBOX_CONFIG").String()
	verbose    = app.Flag("verbose", "Enable debug logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Write JSON logs to this file instead of stderr").String()
	ephemeral  = app.Flag("ephemeral", "Keep liked tracks and playlists in memory only").Bool()

	shellCmd = app.Command("shell", "Start the interactive player").Default()

	searchCmd  = app.Command("search", "Search the catalog")
	searchTerm = searchCmd.Arg("term", "Search term").Required().Strings()

	homeCmd       = app.Command("home", "Show the home sections")
	topArtistsCmd = app.Command("top-artists", "Show the top artists")
	playlistsCmd  = app.Command("playlists", "List saved playlists")

	importCmd = app.Command("import", "Import a Spotify playlist")
	importURL = importCmd.Arg("url", "Spotify playlist URL, URI or ID").Required().String()

	listFiltersCmd = app.Command("list-filters", "List available filters")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == listFiltersCmd.FullCommand() {
		printFilters()
		return
	}

	level := "info"
	if *verbose {
		level = "debug"
	}
	closeLog, err := logger.Init(logger.Config{Level: level, File: *logfile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()

	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Error().Msgf("Failed to load config: %v", err)
		os.Exit(1)
	}

	if *ephemeral {
		cfg.Storage = config.StorageConfig{Type: storage.TypeMemory}
	}

	if err := run(cfg, command); err != nil {
		zlog.Error().Msgf("previewbox: %v", err)
		_ = closeLog()
		os.Exit(1)
	}
}

func run(cfg *config.Config, command string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg.Storage.Type, cfg.Storage.Settings)
	if err != nil {
		return errors.Wrap(err, "failed to open storage")
	}
	defer store.Close()

	lib, err := library.Open(ctx, store)
	if err != nil {
		return errors.Wrap(err, "failed to open library")
	}

	deps, err := buildDependencies(ctx, cfg, lib)
	if err != nil {
		return err
	}

	mgr, err := session.NewManager(cfg, deps)
	if err != nil {
		return errors.Wrap(err, "failed to create session manager")
	}
	defer mgr.Close()

	if err := mgr.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start session")
	}

	switch command {
	case shellCmd.FullCommand():
		return newShell(mgr, os.Stdin, os.Stdout).Run(ctx)
	case searchCmd.FullCommand():
		if err := mgr.Search(ctx, strings.Join(*searchTerm, " ")); err != nil {
			return err
		}
		printTracks(os.Stdout, mgr.Snapshot().SearchTracks)
	case homeCmd.FullCommand():
		if err := mgr.FetchHomeSections(ctx); err != nil {
			return err
		}
		printSections(os.Stdout, mgr.Snapshot().HomeSections)
	case topArtistsCmd.FullCommand():
		if err := mgr.FetchTopArtists(ctx); err != nil {
			return err
		}
		printArtists(os.Stdout, mgr.Snapshot().TopArtists)
	case playlistsCmd.FullCommand():
		printPlaylists(os.Stdout, mgr.Snapshot().Playlists)
	case importCmd.FullCommand():
		return importPlaylist(ctx, mgr, *importURL)
	}
	return nil
}

// buildDependencies creates the external clients the configuration enables.
func buildDependencies(ctx context.Context, cfg *config.Config, lib *library.Library) (session.Dependencies, error) {
	deps := session.Dependencies{
		Catalog: catalog.New(catalog.Config{
			BaseURL:   cfg.Catalog.BaseURL,
			Country:   cfg.Catalog.Country,
			Limit:     cfg.Catalog.Limit,
			Timeout:   cfg.CatalogTimeout(),
			RateLimit: cfg.Catalog.RateLimitPerSec,
		}),
		Library: lib,
		Opener:  audio.NewVirtualOpener(),
	}

	if cfg.Playback.Player.Command != "" {
		opener, err := audio.NewProcessOpener(cfg.Playback.Player.Command, cfg.Playback.Player.Args)
		if err != nil {
			return deps, errors.Wrap(err, "failed to create audio player")
		}
		deps.Opener = opener
	}

	if cfg.LastFM.APIKey != "" {
		lastfmClient, err := lastfm.New(lastfm.Config{APIKey: cfg.LastFM.APIKey})
		if err != nil {
			return deps, errors.Wrap(err, "failed to create Last.fm client")
		}
		deps.Charts = lastfmClient
		deps.TopTracks = lastfmClient
		zlog.Info().Msg("Last.fm client initialized")
	}

	if cfg.HasSpotify() {
		spotifyClient, err := spotify.New(ctx, spotify.Config{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
			RefreshToken: cfg.Spotify.RefreshToken,
			Market:       cfg.Spotify.Market,
		})
		if err != nil {
			return deps, errors.Wrap(err, "failed to create Spotify client")
		}
		deps.Playlists = spotifyClient
		zlog.Info().Msg("Spotify client initialized, playlist import enabled")
	}

	return deps, nil
}

// importPlaylist imports a playlist while drawing a progress bar.
func importPlaylist(ctx context.Context, mgr *session.Manager, url string) error {
	var bar *progressbar.ProgressBar
	result, err := mgr.ImportPlaylist(ctx, url, func(done, total int, ref spotify.TrackRef, matched bool) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetTheme(progressbar.ThemeASCII),
				progressbar.OptionFullWidth(),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("Matching tracks..."),
			)
		}
		_ = bar.Set(done)
	})
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
	if result != nil {
		fmt.Printf("Imported %q as playlist %d: %d matched, %d unmatched\n",
			result.Name, result.PlaylistID, result.Matched, len(result.Unmatched))
		for _, ref := range result.Unmatched {
			fmt.Printf("  not found: %s - %s\n", ref.Artist, ref.Name)
		}
	}
	return err
}

// printFilters prints available filters.
func printFilters() {
	registered := filter.GetRegistered()
	fmt.Println("Available Filters:")
	for _, name := range filter.RegisteredNames() {
		f := registered[name]()
		codes := strings.Join(f.ReturnCodes(), ", ")
		fmt.Printf("  %-30s - %s [codes: %s]\n", f.Name(), f.Description(), codes)
	}
}
