// Package playlist provides the Playlist domain entity.
package playlist

import (
	"time"

	"github.com/hotafrosauce1/Soundcloud-Queue/internal/domain/track"
)

// Playlist represents a resolved remote playlist.
// Tracks are kept in source order and are not filtered.
type Playlist struct {
	URL    string        // URL the playlist was resolved from
	Name   string        // Playlist name (may be empty)
	Tracks []track.Track // Tracks in source order
}

// Titles returns all track titles in source order.
func (p *Playlist) Titles() []string {
	titles := make([]string, len(p.Tracks))
	for i, t := range p.Tracks {
		titles[i] = t.Title
	}
	return titles
}

// TotalDuration returns the sum of all reported track durations.
func (p *Playlist) TotalDuration() time.Duration {
	var total time.Duration
	for _, t := range p.Tracks {
		total += t.Duration
	}
	return total
}
