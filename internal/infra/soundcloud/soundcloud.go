// Package soundcloud provides a yt-dlp backed playlist source.
// SoundCloud sets are the primary target, but any playlist yt-dlp understands resolves.
package soundcloud

import (
	"context"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lrstanley/go-ytdlp"
	zlog "github.com/rs/zerolog/log"

	"github.com/hotafrosauce1/Soundcloud-Queue/internal/domain/playlist"
	"github.com/hotafrosauce1/Soundcloud-Queue/internal/domain/track"
)

// SourceName is the name reported on resolved tracks.
const SourceName = "soundcloud"

// printTemplate emits one tab separated line per playlist entry.
const printTemplate = "%(webpage_url)s\t%(title)s\t%(uploader)s\t%(duration)s\t%(id)s\t%(playlist_title)s"

const missing = "NA"

// Config holds yt-dlp settings.
type Config struct {
	Proxy string
}

type runFunc func(ctx context.Context, cmd *ytdlp.Command, args ...string) (*ytdlp.Result, error)

func run(ctx context.Context, cmd *ytdlp.Command, args ...string) (*ytdlp.Result, error) {
	return cmd.Run(ctx, args...)
}

// Source resolves playlists with yt-dlp.
type Source struct {
	proxy string
	run   runFunc
}

// New creates a yt-dlp source.
func New(cfg Config) *Source {
	return &Source{proxy: cfg.Proxy, run: run}
}

// Install makes sure a yt-dlp binary is available, downloading one if needed.
func Install(ctx context.Context) error {
	_, err := ytdlp.Install(ctx, nil)
	return errors.Wrap(err, "failed to install yt-dlp")
}

// Name returns the source name.
func (s *Source) Name() string {
	return SourceName
}

// Matches reports whether rawURL is an http(s) URL. yt-dlp decides later whether it can
// extract a playlist from it.
func (s *Source) Matches(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (s *Source) command() *ytdlp.Command {
	cmd := ytdlp.New().
		Quiet().
		NoWarnings().
		IgnoreConfig()
	if s.proxy != "" {
		cmd.Proxy(s.proxy)
	}
	return cmd
}

// Resolve lists the playlist entries without downloading them.
func (s *Source) Resolve(ctx context.Context, playlistURL string) (*playlist.Playlist, error) {
	cmd := s.command().Print(printTemplate)

	res, err := s.run(ctx, cmd, "--yes-playlist", strings.TrimSpace(playlistURL))
	if err != nil {
		return nil, errors.Wrapf(err, "yt-dlp failed to list %s%s", playlistURL, stderrOf(res))
	}

	p := parsePlaylist(res.Stdout, s)
	p.URL = playlistURL
	if len(p.Tracks) == 0 {
		return nil, errors.Newf("yt-dlp found no tracks at %s", playlistURL)
	}

	zlog.Info().Msgf("soundcloud: resolved %s: %d tracks", playlistURL, len(p.Tracks))
	return p, nil
}

func stderrOf(res *ytdlp.Result) string {
	if res == nil || strings.TrimSpace(res.Stderr) == "" {
		return ""
	}
	return ": " + strings.TrimSpace(res.Stderr)
}

// parsePlaylist parses printTemplate output. Lines without a URL or title are skipped.
func parsePlaylist(stdout string, s *Source) *playlist.Playlist {
	p := &playlist.Playlist{}
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		fields := strings.Split(strings.TrimRight(line, "\r"), "\t")
		if len(fields) < 5 {
			continue
		}

		pageURL, title := value(fields[0]), value(fields[1])
		if pageURL == "" || title == "" {
			continue
		}
		if p.Name == "" && len(fields) > 5 {
			p.Name = value(fields[5])
		}

		p.Tracks = append(p.Tracks, track.Track{
			ID:       value(fields[4]),
			Title:    title,
			Artist:   value(fields[2]),
			Duration: parseSeconds(fields[3]),
			URL:      pageURL,
			Source:   SourceName,
			Content:  &Content{url: pageURL, source: s},
		})
	}
	return p
}

func value(field string) string {
	field = strings.TrimSpace(field)
	if field == missing {
		return ""
	}
	return field
}

func parseSeconds(field string) time.Duration {
	secs, err := strconv.ParseFloat(value(field), 64)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

// Content downloads a single entry as MP3 with yt-dlp.
type Content struct {
	url    string
	source *Source
}

// Download extracts the audio of the entry into dst, which must end in ".mp3".
func (c *Content) Download(ctx context.Context, dst string) error {
	if !strings.HasSuffix(dst, ".mp3") {
		return errors.Newf("destination %s is not an mp3 file", dst)
	}

	cmd := c.source.command().Output(strings.TrimSuffix(dst, ".mp3") + ".%(ext)s")
	res, err := c.source.run(ctx, cmd, "-x", "--audio-format", "mp3", "--no-playlist", "--force-overwrites", c.url)
	if err != nil {
		return errors.Wrapf(err, "yt-dlp failed to download %s%s", c.url, stderrOf(res))
	}

	if _, err := os.Stat(dst); err != nil {
		return errors.Wrapf(err, "yt-dlp did not produce %s", dst)
	}
	return nil
}
