// Package m3u provides a playlist source for remote .m3u, .m3u8 and .pls files.
package m3u

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/url"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/hotafrosauce1/Soundcloud-Queue/internal/domain/playlist"
	"github.com/hotafrosauce1/Soundcloud-Queue/internal/domain/track"
	"github.com/hotafrosauce1/Soundcloud-Queue/internal/infra/httpcontent"
)

// SourceName is the name reported on resolved tracks.
const SourceName = "m3u"

// maxPlaylistSize bounds the playlist body read into memory.
const maxPlaylistSize = 4 << 20

// Source resolves playlist files served over HTTP.
type Source struct {
	client *http.Client
}

// New creates a source using client for the playlist and its entries.
func New(client *http.Client) *Source {
	if client == nil {
		client = http.DefaultClient
	}
	return &Source{client: client}
}

// Name returns the source name.
func (s *Source) Name() string {
	return SourceName
}

// Matches reports whether rawURL is an http(s) URL to a playlist file.
func (s *Source) Matches(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	return IsPlaylistExt(path.Ext(u.Path))
}

// IsPlaylistExt reports whether ext is a supported playlist extension.
func IsPlaylistExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".m3u", ".m3u8", ".pls":
		return true
	}
	return false
}

// Resolve downloads and parses the playlist. Relative entries are resolved against its URL.
func (s *Source) Resolve(ctx context.Context, rawURL string) (*playlist.Playlist, error) {
	base, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, errors.Wrap(err, "invalid playlist URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("fetch %s: unexpected status %s", rawURL, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPlaylistSize))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read playlist")
	}
	if !utf8.Valid(data) {
		return nil, errors.New("playlist is not valid UTF-8")
	}

	var entries []entry
	name := ""
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	if strings.EqualFold(path.Ext(base.Path), ".pls") {
		entries = parsePLS(scanner)
	} else {
		entries, name = parseM3U(scanner)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to scan playlist")
	}
	if name == "" {
		name = strings.TrimSuffix(path.Base(base.Path), path.Ext(base.Path))
	}

	tracks := make([]track.Track, 0, len(entries))
	for _, e := range entries {
		ref, err := url.Parse(e.location)
		if err != nil {
			zlog.Warn().Err(err).Msgf("m3u: skipping entry %q", e.location)
			continue
		}
		loc := base.ResolveReference(ref)
		tracks = append(tracks, e.toTrack(loc, s.client))
	}

	zlog.Info().Msgf("m3u: resolved %s: %d tracks", rawURL, len(tracks))
	return &playlist.Playlist{URL: rawURL, Name: name, Tracks: tracks}, nil
}

type entry struct {
	location string
	info     string // "Artist - Title", or just a title
	seconds  int    // -1 when unknown
}

func (e entry) toTrack(loc *url.URL, client *http.Client) track.Track {
	artist, title := splitInfo(e.info)
	if title == "" {
		title = strings.TrimSuffix(path.Base(loc.Path), path.Ext(loc.Path))
		if unescaped, err := url.PathUnescape(title); err == nil {
			title = unescaped
		}
	}

	var d time.Duration
	if e.seconds > 0 {
		d = time.Duration(e.seconds) * time.Second
	}

	t := track.Track{
		ID:       loc.String(),
		Title:    title,
		Artist:   artist,
		Duration: d,
		URL:      loc.String(),
		Source:   SourceName,
	}
	if loc.Scheme == "http" || loc.Scheme == "https" {
		t.Content = httpcontent.New(loc.String(), client)
	}
	return t
}

// splitInfo splits "Artist - Title". Text without the separator is a bare title.
func splitInfo(info string) (artist, title string) {
	info = strings.TrimSpace(info)
	if a, t, ok := strings.Cut(info, " - "); ok {
		return strings.TrimSpace(a), strings.TrimSpace(t)
	}
	return "", info
}

func parseM3U(scanner *bufio.Scanner) ([]entry, string) {
	entries := make([]entry, 0)
	name := ""
	pending := entry{seconds: -1}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#EXTINF:"):
			secs, info, _ := strings.Cut(strings.TrimPrefix(line, "#EXTINF:"), ",")
			// Attributes such as tvg-id="x" may follow the duration.
			secs, _, _ = strings.Cut(strings.TrimSpace(secs), " ")
			n, err := strconv.Atoi(secs)
			if err != nil {
				n = -1
			}
			pending.seconds = n
			pending.info = info
		case strings.HasPrefix(line, "#PLAYLIST:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "#PLAYLIST:"))
		case strings.HasPrefix(line, "#"):
			continue
		default:
			pending.location = line
			entries = append(entries, pending)
			pending = entry{seconds: -1}
		}
	}
	return entries, name
}

func parsePLS(scanner *bufio.Scanner) []entry {
	byIndex := make(map[int]*entry)
	order := make([]int, 0)
	get := func(i int) *entry {
		e, ok := byIndex[i]
		if !ok {
			e = &entry{seconds: -1}
			byIndex[i] = e
			order = append(order, i)
		}
		return e
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)

		field, index, ok := plsKey(key)
		if !ok || val == "" {
			continue
		}
		switch field {
		case "File":
			get(index).location = val
		case "Title":
			get(index).info = val
		case "Length":
			if n, err := strconv.Atoi(val); err == nil {
				get(index).seconds = n
			}
		}
	}

	slices.Sort(order)
	entries := make([]entry, 0, len(order))
	for _, i := range order {
		if e := byIndex[i]; e.location != "" {
			entries = append(entries, *e)
		}
	}
	return entries
}

// plsKey splits keys such as "File12" into ("File", 12).
func plsKey(key string) (string, int, bool) {
	for _, field := range []string{"File", "Title", "Length"} {
		rest, ok := strings.CutPrefix(key, field)
		if !ok || rest == "" {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			return "", 0, false
		}
		return field, n, true
	}
	return "", 0, false
}
