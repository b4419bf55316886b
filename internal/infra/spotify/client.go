// Package spotify provides a playlist source backed by the Spotify Web API.
package spotify

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/hotafrosauce1/Soundcloud-Queue/internal/domain/playlist"
	"github.com/hotafrosauce1/Soundcloud-Queue/internal/domain/track"
	"github.com/hotafrosauce1/Soundcloud-Queue/internal/infra/httpcontent"
)

// SourceName is the name reported on resolved tracks.
const SourceName = "spotify"

const (
	pageLimit   = 100
	trackURL    = "https://open.spotify.com/track/"
	playlistURI = "spotify:playlist:"
)

// Client is a Spotify API client that resolves playlists.
type Client struct {
	client     *spotify.Client
	content    *http.Client
	limiter    *rate.Limiter
	market     string
	maxRetries int
	retryDelay time.Duration
}

// Config represents Spotify client configuration.
type Config struct {
	ClientID          string
	ClientSecret      string
	RefreshToken      string // Optional; enables private playlists
	Market            string
	MaxRetries        int     // Attempts per request; 1 disables retries
	RequestsPerSecond float64 // Page request rate; 0 means unlimited
	HTTPClient        *http.Client
}

// New creates a new Spotify client. Without a refresh token the client credentials
// flow is used, which can read public playlists only.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("spotify client id and secret are required")
	}

	if cfg.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, cfg.HTTPClient)
	}

	var httpClient *http.Client
	if cfg.RefreshToken != "" {
		auth := spotifyauth.New(
			spotifyauth.WithClientID(cfg.ClientID),
			spotifyauth.WithClientSecret(cfg.ClientSecret),
			spotifyauth.WithScopes(spotifyauth.ScopePlaylistReadPrivate),
		)
		httpClient = auth.Client(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	} else {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     spotifyauth.TokenURL,
		}
		httpClient = cc.Client(ctx)
	}

	return NewWithAPI(spotify.New(httpClient), cfg), nil
}

// NewWithAPI wraps an existing API client.
func NewWithAPI(api *spotify.Client, cfg Config) *Client {
	market := cfg.Market
	if market == "" {
		market = "US"
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	content := cfg.HTTPClient
	if content == nil {
		content = http.DefaultClient
	}

	return &Client{
		client:     api,
		content:    content,
		limiter:    rate.NewLimiter(limit, 1),
		market:     market,
		maxRetries: maxRetries,
		retryDelay: time.Second,
	}
}

// Name returns the source name.
func (c *Client) Name() string {
	return SourceName
}

// Matches reports whether url is a Spotify playlist URL or URI.
func (c *Client) Matches(url string) bool {
	return extractPlaylistID(url) != ""
}

// Resolve fetches the playlist name and all of its tracks.
func (c *Client) Resolve(ctx context.Context, playlistURL string) (*playlist.Playlist, error) {
	playlistID := extractPlaylistID(playlistURL)
	if playlistID == "" {
		return nil, errors.New("invalid playlist URL")
	}

	tracks, err := c.playlistTracks(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	p := &playlist.Playlist{URL: playlistURL, Tracks: tracks}

	var full *spotify.FullPlaylist
	err = c.retry(ctx, func() error {
		fp, err := c.client.GetPlaylist(ctx, spotify.ID(playlistID), spotify.Market(c.market))
		if err != nil {
			return err
		}
		full = fp
		return nil
	})
	if err != nil {
		zlog.Warn().Err(err).Msgf("spotify: failed to get name of playlist %s", playlistID)
	} else {
		p.Name = full.Name
	}

	zlog.Info().Msgf("spotify: resolved playlist %s: %d tracks", playlistID, len(tracks))
	return p, nil
}

// playlistTracks pages through the playlist, skipping episodes.
func (c *Client) playlistTracks(ctx context.Context, playlistID string) ([]track.Track, error) {
	var tracks []track.Track
	offset := 0

	for {
		var page *spotify.PlaylistItemPage
		err := c.retry(ctx, func() error {
			p, err := c.client.GetPlaylistItems(ctx, spotify.ID(playlistID),
				spotify.Limit(pageLimit),
				spotify.Offset(offset),
				spotify.Market(c.market),
			)
			if err != nil {
				return err
			}
			page = p
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to get playlist items")
		}

		for _, item := range page.Items {
			if item.Track.Track != nil && item.Track.Track.ID != "" {
				tracks = append(tracks, c.convertTrack(item.Track.Track))
			}
		}

		if len(page.Items) < pageLimit {
			break
		}
		offset += pageLimit
	}

	return tracks, nil
}

// convertTrack converts a Spotify FullTrack to domain Track.
// The 30 second preview is the only audio the Web API exposes.
func (c *Client) convertTrack(t *spotify.FullTrack) track.Track {
	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}

	tr := track.Track{
		ID:       string(t.ID),
		Title:    t.Name,
		Artist:   strings.Join(artists, ", "),
		Duration: time.Duration(t.Duration) * time.Millisecond,
		URL:      trackURL + string(t.ID),
		Source:   SourceName,
	}
	if t.PreviewURL != "" {
		tr.Content = httpcontent.New(t.PreviewURL, c.content)
	}
	return tr
}

// retry runs fn up to maxRetries times, waiting on the rate limiter before each attempt.
func (c *Client) retry(ctx context.Context, fn func() error) error {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.Wrap(err, "rate limiter")
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if i < c.maxRetries-1 {
			zlog.Debug().Err(err).Msgf("spotify: retrying (%d/%d)", i+1, c.maxRetries)
			time.Sleep(c.retryDelay * time.Duration(i+1))
		}
	}
	if c.maxRetries == 1 {
		return lastErr
	}
	return errors.Wrap(lastErr, "max retries exceeded")
}

// isRetryable reports whether the API answered with a rate limit or server error.
func isRetryable(err error) bool {
	var apiErr spotify.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= http.StatusInternalServerError
}

// extractPlaylistID returns the playlist ID of a Spotify playlist URI or
// open.spotify.com URL, or "" when input is neither.
func extractPlaylistID(input string) string {
	input = strings.TrimSpace(input)
	if id, ok := strings.CutPrefix(input, playlistURI); ok {
		return id
	}
	if !strings.Contains(input, "open.spotify.com") {
		return ""
	}
	// open.spotify.com/playlist/ID and open.spotify.com/intl-xx/playlist/ID
	_, id, ok := strings.Cut(input, "/playlist/")
	if !ok {
		return ""
	}
	id, _, _ = strings.Cut(id, "?")
	return strings.TrimRight(id, "/")
}
