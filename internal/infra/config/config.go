// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Log      LogConfig               `yaml:"log"`
	Media    MediaConfig             `yaml:"media"`
	HTTP     HTTPConfig              `yaml:"http"`
	Spotify  SpotifyConfig           `yaml:"spotify"`
	YTDLP    YTDLPConfig             `yaml:"ytdlp"`
	Filters  map[string]FilterConfig `yaml:"filters"`
	Messages MessagesConfig          `yaml:"messages"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Output string `yaml:"output" default:"stderr"`
	Level  string `yaml:"level" default:"warn" validate:"oneof=debug info warn warning error"`
	File   string `yaml:"file"`
}

// MediaConfig represents where materialised tracks are written.
type MediaConfig struct {
	Dir string `yaml:"dir"`
}

// HTTPConfig represents outbound HTTP settings.
type HTTPConfig struct {
	TimeoutSec int `yaml:"timeout_sec" default:"30" validate:"gte=1,lte=600"`
}

// Timeout returns the configured timeout as a duration.
func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSec) * time.Second
}

// SpotifyConfig represents Spotify API configuration.
// Spotify playlists are only routed when the client id is set.
type SpotifyConfig struct {
	ClientID          string  `yaml:"client_id"`
	ClientSecret      string  `yaml:"client_secret" validate:"required_with=ClientID"`
	RefreshToken      string  `yaml:"refresh_token"`
	Market            string  `yaml:"market" validate:"omitempty,len=2" default:"US"`
	MaxRetries        int     `yaml:"max_retries" default:"1" validate:"gte=1,lte=10"`
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"`
}

// Enabled reports whether Spotify credentials are configured.
func (s SpotifyConfig) Enabled() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// YTDLPConfig represents yt-dlp settings.
type YTDLPConfig struct {
	Proxy       string `yaml:"proxy"`
	AutoInstall bool   `yaml:"auto_install"`
}

// FilterConfig represents a catalog filter's configuration.
type FilterConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// MessagesConfig represents the texts shown around selections.
type MessagesConfig struct {
	Intro        string `yaml:"intro" default:"Here is a list of your songs that are available to play.\n\nPick the number corresponding to the song you want to play."`
	Instructions string `yaml:"instructions" default:"If you want to play a series of songs in succession, just separate the numbers with a comma!"`
	QueueEmpty   string `yaml:"queue_empty" default:"Your music queue is now empty. Please choose new songs to play."`
	Add          string `yaml:"add" default:"Which song/songs do you want to add to the queue?"`
}

// Default returns the built-in configuration used when no file is present.
func Default() (*Config, error) {
	var cfg Config
	cfg.overrideFromEnv()
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() error {
	if err := defaults.Set(c); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}
	if c.Media.Dir == "" {
		c.Media.Dir = filepath.Join(os.TempDir(), "scqueue")
	}
	return nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REFRESH_TOKEN"); v != "" {
		c.Spotify.RefreshToken = v
	}
	if v := os.Getenv("SCQUEUE_MEDIA_DIR"); v != "" {
		c.Media.Dir = v
	}
	if v := os.Getenv("YTDLP_PROXY"); v != "" {
		c.YTDLP.Proxy = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// IsFilterEnabled checks if a filter is enabled.
func (c *Config) IsFilterEnabled(filterName string) bool {
	if f, ok := c.Filters[filterName]; ok {
		return f.Enabled
	}
	return false
}
