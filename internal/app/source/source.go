// Package source routes playlist URLs to the playlist source that can resolve them.
package source

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/hotafrosauce1/Soundcloud-Queue/internal/domain/playlist"
)

// ErrNoSource is returned when no configured source accepts a URL.
var ErrNoSource = errors.New("no playlist source for url")

// Source resolves a playlist URL into its tracks.
// Different implementations talk to different services (Spotify, yt-dlp, plain m3u files).
type Source interface {
	// Name returns the source name (used in logs and on tracks).
	Name() string
	// Matches reports whether the source can resolve the URL.
	Matches(url string) bool
	// Resolve fetches the playlist. Failures are not retried.
	Resolve(ctx context.Context, url string) (*playlist.Playlist, error)
}

// Router tries sources in order and delegates to the first that matches.
type Router struct {
	sources []Source
}

// NewRouter creates a router over the given sources. Order matters: earlier sources win.
func NewRouter(sources ...Source) *Router {
	return &Router{sources: sources}
}

// For returns the source that will resolve the URL.
func (r *Router) For(url string) (Source, error) {
	for _, s := range r.sources {
		if s.Matches(url) {
			return s, nil
		}
	}
	return nil, errors.Wrapf(ErrNoSource, "%q", url)
}

// Name returns the router name.
func (r *Router) Name() string {
	return "router"
}

// Matches reports whether any source accepts the URL.
func (r *Router) Matches(url string) bool {
	_, err := r.For(url)
	return err == nil
}

// Resolve delegates to the matching source.
func (r *Router) Resolve(ctx context.Context, url string) (*playlist.Playlist, error) {
	s, err := r.For(url)
	if err != nil {
		return nil, err
	}
	zlog.Debug().Msgf("source: resolving %s with %s", url, s.Name())
	return s.Resolve(ctx, url)
}

// Names returns the names of the routed sources in order.
func (r *Router) Names() []string {
	names := make([]string, len(r.sources))
	for i, s := range r.sources {
		names[i] = s.Name()
	}
	return names
}
