// Package main provides the Spotify authorization helper. It runs the authorization
// code flow once and prints the refresh token scqueue uses for private playlists.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/hotafrosauce1/Soundcloud-Queue/internal/infra/console"
	"github.com/hotafrosauce1/Soundcloud-Queue/internal/infra/logger"
)

var (
	app          = kingpin.New("scqueue-auth", "Obtain a Spotify refresh token for reading private playlists")
	clientID     = app.Flag("client-id", "Spotify Client ID").Envar("SPOTIFY_CLIENT_ID").Required().String()
	clientSecret = app.Flag("client-secret", "Spotify Client Secret").Envar("SPOTIFY_CLIENT_SECRET").Required().String()
	port         = app.Flag("port", "Callback server port").Default("8888").Int()
	timeout      = app.Flag("timeout", "Give up waiting for authorization after this long").Default("5m").Duration()
)

const state = "scqueue-auth-state"

const completePage = `<!DOCTYPE html>
<html>
<head><title>scqueue - Authorization Complete</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 20vh;">
    <h1>Authorization Complete</h1>
    <p>You can close this window and return to the terminal.</p>
</body>
</html>
`

func main() {
	_ = godotenv.Load()
	kingpin.MustParse(app.Parse(os.Args[1:]))

	if _, err := logger.Init(logger.Config{Output: "stderr", Level: "info"}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	term := console.New(os.Stdin, os.Stdout)
	token, err := authorize(term)
	if err != nil {
		zlog.Fatal().Msgf("Authorization failed: %v", err)
	}

	term.Banner(
		"Authorization successful.",
		"",
		"Add this to config/scqueue.yaml:",
		"",
		"spotify:",
		fmt.Sprintf("  refresh_token: %q", token.RefreshToken),
		"",
		"Or set as environment variable:",
		fmt.Sprintf("export SPOTIFY_REFRESH_TOKEN=%q", token.RefreshToken),
	)
}

func authorize(term *console.Console) (*oauth2.Token, error) {
	auth := spotifyauth.New(
		spotifyauth.WithRedirectURL(fmt.Sprintf("http://127.0.0.1:%d/callback", *port)),
		spotifyauth.WithClientID(*clientID),
		spotifyauth.WithClientSecret(*clientSecret),
		spotifyauth.WithScopes(
			spotifyauth.ScopePlaylistReadPrivate,
			spotifyauth.ScopePlaylistReadCollaborative,
		),
	)

	tokens := make(chan *oauth2.Token, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if st := r.FormValue("state"); st != state {
			http.Error(w, "State mismatch", http.StatusForbidden)
			zlog.Warn().Msgf("State mismatch: %s != %s", st, state)
			return
		}
		token, err := auth.Token(r.Context(), state, r)
		if err != nil {
			http.Error(w, "Failed to get token", http.StatusForbidden)
			zlog.Warn().Msgf("Failed to get token: %v", err)
			return
		}
		fmt.Fprint(w, completePage)
		select {
		case tokens <- token:
		default:
		}
	})

	server := &http.Server{Addr: fmt.Sprintf(":%d", *port), Handler: mux}
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			zlog.Warn().Msgf("Failed to shutdown server: %v", err)
		}
	}()

	term.Println("Please visit the following URL to let scqueue read your playlists:")
	term.Println("")
	term.Println(auth.AuthURL(state))
	term.Println("")
	term.Println("Waiting for authorization...")

	select {
	case token := <-tokens:
		return token, nil
	case err := <-serverErr:
		return nil, errors.Wrap(err, "callback server failed")
	case <-time.After(*timeout):
		return nil, errors.Newf("no authorization within %s", *timeout)
	}
}
