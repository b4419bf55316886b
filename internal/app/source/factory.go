package source

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/hotafrosauce1/Soundcloud-Queue/internal/infra/config"
	"github.com/hotafrosauce1/Soundcloud-Queue/internal/infra/httpcontent"
	"github.com/hotafrosauce1/Soundcloud-Queue/internal/infra/m3u"
	"github.com/hotafrosauce1/Soundcloud-Queue/internal/infra/soundcloud"
	"github.com/hotafrosauce1/Soundcloud-Queue/internal/infra/spotify"
)

// NewRouterFromConfig creates the source router from configuration.
// Spotify is only routed when credentials are configured; yt-dlp comes last since it
// accepts any http(s) URL.
func NewRouterFromConfig(ctx context.Context, cfg *config.Config) (*Router, error) {
	httpClient := httpcontent.NewClient(cfg.HTTP.Timeout())

	var sources []Source
	if cfg.Spotify.Enabled() {
		sp, err := spotify.New(ctx, spotify.Config{
			ClientID:          cfg.Spotify.ClientID,
			ClientSecret:      cfg.Spotify.ClientSecret,
			RefreshToken:      cfg.Spotify.RefreshToken,
			Market:            cfg.Spotify.Market,
			MaxRetries:        cfg.Spotify.MaxRetries,
			RequestsPerSecond: cfg.Spotify.RequestsPerSecond,
			HTTPClient:        httpClient,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create spotify source")
		}
		sources = append(sources, sp)
	}

	sources = append(sources,
		m3u.New(httpClient),
		soundcloud.New(soundcloud.Config{Proxy: cfg.YTDLP.Proxy}),
	)

	r := NewRouter(sources...)
	zlog.Debug().Msgf("source: routing %v", r.Names())
	return r, nil
}
