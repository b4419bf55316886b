package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SPOTIFY_CLIENT_ID",
		"SPOTIFY_CLIENT_SECRET",
		"SPOTIFY_REFRESH_TOKEN",
		"SCQUEUE_MEDIA_DIR",
		"YTDLP_PROXY",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scqueue.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	clearEnv(t)

	cfg, err := Default()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "stderr", cfg.Log.Output)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, filepath.Join(os.TempDir(), "scqueue"), cfg.Media.Dir)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout())
	assert.Equal(t, "US", cfg.Spotify.Market)
	assert.Equal(t, 1, cfg.Spotify.MaxRetries)
	assert.False(t, cfg.Spotify.Enabled())
	assert.Equal(t, "Which song/songs do you want to add to the queue?", cfg.Messages.Add)
}

func TestLoad(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
log:
  level: debug
media:
  dir: /var/tmp/music
http:
  timeout_sec: 5
spotify:
  client_id: id
  client_secret: secret
  market: JP
  max_retries: 3
ytdlp:
  proxy: socks5://127.0.0.1:1080
filters:
  duration_limit_filter:
    enabled: true
    settings:
      max_minutes: 10
messages:
  add: "More?"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "stderr", cfg.Log.Output)
	assert.Equal(t, "/var/tmp/music", cfg.Media.Dir)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout())
	assert.True(t, cfg.Spotify.Enabled())
	assert.Equal(t, "JP", cfg.Spotify.Market)
	assert.Equal(t, 3, cfg.Spotify.MaxRetries)
	assert.Equal(t, "socks5://127.0.0.1:1080", cfg.YTDLP.Proxy)
	assert.True(t, cfg.IsFilterEnabled("duration_limit_filter"))
	assert.False(t, cfg.IsFilterEnabled("streamable_filter"))
	assert.Equal(t, 10, cfg.Filters["duration_limit_filter"].Settings["max_minutes"])
	assert.Equal(t, "More?", cfg.Messages.Add)
	assert.NotEmpty(t, cfg.Messages.QueueEmpty, "unset messages keep their defaults")
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPOTIFY_CLIENT_ID", "env-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "env-secret")
	t.Setenv("SPOTIFY_REFRESH_TOKEN", "env-token")
	t.Setenv("SCQUEUE_MEDIA_DIR", "/env/media")
	t.Setenv("YTDLP_PROXY", "http://proxy:3128")

	path := writeConfig(t, `
media:
  dir: /file/media
spotify:
  client_id: file-id
  client_secret: file-secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-id", cfg.Spotify.ClientID)
	assert.Equal(t, "env-secret", cfg.Spotify.ClientSecret)
	assert.Equal(t, "env-token", cfg.Spotify.RefreshToken)
	assert.Equal(t, "/env/media", cfg.Media.Dir)
	assert.Equal(t, "http://proxy:3128", cfg.YTDLP.Proxy)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name   string
		body   string
		errMsg string
	}{
		{
			name:   "invalid yaml",
			body:   "log: [",
			errMsg: "failed to parse config file",
		},
		{
			name:   "unknown log level",
			body:   "log:\n  level: loud\n",
			errMsg: "Level",
		},
		{
			name:   "client id without secret",
			body:   "spotify:\n  client_id: id\n",
			errMsg: "ClientSecret",
		},
		{
			name:   "bad market",
			body:   "spotify:\n  market: USA\n",
			errMsg: "Market",
		},
		{
			name:   "timeout too large",
			body:   "http:\n  timeout_sec: 601\n",
			errMsg: "TimeoutSec",
		},
		{
			name:   "too many retries",
			body:   "spotify:\n  max_retries: 11\n",
			errMsg: "MaxRetries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
