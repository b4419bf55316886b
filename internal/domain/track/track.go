// Package track provides the Track domain entity.
package track

import (
	"context"
	"strings"
	"time"
)

// Content gives access to a track's compressed audio.
// Implementations are supplied by the playlist source that produced the track.
type Content interface {
	// Download writes the compressed (MP3) audio to dst, creating or truncating it.
	Download(ctx context.Context, dst string) error
}

// Track represents a single playable item resolved from a remote playlist.
// Tracks are treated as immutable once resolved.
type Track struct {
	ID       string        // Source specific ID (may be empty)
	Title    string        // Track title
	Artist   string        // Artist (comma separated when the source reports several)
	Duration time.Duration // Duration (zero if the source does not report it)
	URL      string        // Permalink
	Source   string        // Name of the source that resolved the track
	Content  Content       // Audio accessor (nil if the source exposes no audio)
}

// IsASCIITitle reports whether every character of the title is in the 0-127 range.
func (t *Track) IsASCIITitle() bool {
	for _, r := range t.Title {
		if r > 127 {
			return false
		}
	}
	return true
}

// HasContent reports whether the track exposes downloadable audio.
func (t *Track) HasContent() bool {
	return t.Content != nil
}

// Label returns "title by artist", or the bare title when the artist is unknown.
func (t *Track) Label() string {
	if strings.TrimSpace(t.Artist) == "" {
		return t.Title
	}
	return t.Title + " by " + t.Artist
}
