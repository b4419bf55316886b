// Package main provides the scqueue player entry point.
package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/hotafrosauce1/Soundcloud-Queue/internal/app/catalog"
	"github.com/hotafrosauce1/Soundcloud-Queue/internal/app/filter"
	"github.com/hotafrosauce1/Soundcloud-Queue/internal/app/playback"
	"github.com/hotafrosauce1/Soundcloud-Queue/internal/app/source"
	"github.com/hotafrosauce1/Soundcloud-Queue/internal/infra/audio"
	"github.com/hotafrosauce1/Soundcloud-Queue/internal/infra/audio/speaker"
	"github.com/hotafrosauce1/Soundcloud-Queue/internal/infra/config"
	"github.com/hotafrosauce1/Soundcloud-Queue/internal/infra/console"
	"github.com/hotafrosauce1/Soundcloud-Queue/internal/infra/logger"
	"github.com/hotafrosauce1/Soundcloud-Queue/internal/infra/soundcloud"
)

const defaultConfigPath = "config/scqueue.yaml"

var (
	app        = kingpin.New("scqueue", "Sequential queue player for SoundCloud and other playlists")
	configPath = app.Flag("config", "Path to config file").Default(defaultConfigPath).String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stderr)").String()

	playCmd = app.Command("play", "Pick tracks from a playlist and play them (default)").Default()
	playURL = playCmd.Arg("url", "Playlist URL (prompted for when omitted)").String()

	catalogCmd = app.Command("catalog", "Print the playable tracks of a playlist and exit")
	catalogURL = catalogCmd.Arg("url", "Playlist URL").Required().String()

	filtersCmd = app.Command("filters", "List available catalog filters and exit")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))
	term := console.New(os.Stdin, os.Stdout)

	if command == filtersCmd.FullCommand() {
		printFilters(term)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	loggerConfig := logger.Config{
		Output: cfg.Log.Output,
		Level:  cfg.Log.Level,
		File:   cfg.Log.File,
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = "file"
		loggerConfig.File = *logfile
	}
	closer, err := logger.Init(loggerConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	// After the first signal the default handlers are restored, so a second Ctrl-C kills.
	interrupted := context.AfterFunc(ctx, func() {
		stop()
		fmt.Fprintln(os.Stderr, "\nInterrupted. Press Enter to exit, or Ctrl-C again to quit now.")
	})
	err = run(ctx, command, cfg, term)
	interrupted()
	stop()
	_ = closer.Close()

	if err != nil && !errors.Is(err, playback.ErrEmptyCatalog) {
		zlog.Error().Msgf("scqueue: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file. A missing file at the default path falls back to
// built-in defaults; an explicitly given path must exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) && path == defaultConfigPath {
		return config.Default()
	}
	return cfg, err
}

func run(ctx context.Context, command string, cfg *config.Config, term *console.Console) error {
	chain, err := filter.NewChainFromConfig(filterConfigs(cfg.Filters))
	if err != nil {
		return errors.Wrap(err, "invalid filter config")
	}

	router, err := source.NewRouterFromConfig(ctx, cfg)
	if err != nil {
		return err
	}

	if cfg.YTDLP.AutoInstall {
		if err := soundcloud.Install(ctx); err != nil {
			return err
		}
	}

	switch command {
	case catalogCmd.FullCommand():
		return printCatalog(ctx, term, router, *catalogURL, chain)
	default:
		return play(ctx, term, router, *playURL, chain, cfg)
	}
}

func play(ctx context.Context, term *console.Console, src catalog.Source, url string, chain *filter.Chain, cfg *config.Config) error {
	if strings.TrimSpace(url) == "" {
		line, err := term.Prompt(ctx, "Please enter the URL of your Soundcloud playlist: ")
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return err
		}
		url = strings.TrimSpace(line)
	}

	term.Println("Loading...")
	cat, err := catalog.Build(ctx, src, url, chain)
	if err != nil {
		return err
	}
	zlog.Info().Msgf("Loaded %q: %d playable tracks", cat.Name(), cat.Size())

	ctrl := playback.NewController(
		cat,
		audio.NewTranscoder(cfg.Media.Dir),
		speaker.NewRenderer(),
		term,
		playback.Config{
			Messages: playback.Messages{
				Intro:        cfg.Messages.Intro,
				Instructions: cfg.Messages.Instructions,
				QueueEmpty:   cfg.Messages.QueueEmpty,
				Add:          cfg.Messages.Add,
			},
			Listener: logEvent,
		},
	)
	return ctrl.Run(ctx)
}

func filterConfigs(configs map[string]config.FilterConfig) map[string]filter.FilterConfig {
	out := make(map[string]filter.FilterConfig, len(configs))
	for name, fc := range configs {
		out[name] = filter.FilterConfig{Enabled: fc.Enabled, Settings: fc.Settings}
	}
	return out
}

func logEvent(e playback.Event) {
	ev := zlog.Debug().Str("event", e.Type.String()).Str("state", e.State.String())
	if e.Track != nil {
		ev = ev.Str("track", e.Track.Label())
	}
	if e.Type == playback.EventTracksQueued {
		ev = ev.Int("count", e.Count)
	}
	ev.Msg("playback event")
}

func printCatalog(ctx context.Context, term *console.Console, src catalog.Source, url string, chain *filter.Chain) error {
	cat, err := catalog.Build(ctx, src, url, chain)
	if err != nil {
		return err
	}

	var items []string
	for i, t := range cat.All() {
		items = append(items, fmt.Sprintf("%d) %s - %s", i, t.Title, t.Artist))
	}
	term.List(cat.Name(), items, "No playable tracks in this playlist.")
	return nil
}

// printFilters prints available filters.
func printFilters(term *console.Console) {
	registered := filter.GetRegistered()
	names := make([]string, 0, len(registered))
	for name := range registered {
		names = append(names, name)
	}
	slices.Sort(names)

	items := make([]string, 0, len(names))
	for _, name := range names {
		f := registered[name]()
		codes := strings.Join(f.ReturnCodes(), ", ")
		items = append(items, fmt.Sprintf("  %-30s - %s [codes: %s]", f.Name(), f.Description(), codes))
	}
	term.List("Available Filters:", items, "  (none)")
}
