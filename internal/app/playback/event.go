package playback

import "github.com/hotafrosauce1/Soundcloud-Queue/internal/domain/track"

// EventType represents a playback event type.
type EventType int

const (
	EventStateChanged EventType = iota // Controller state changed
	EventTracksQueued                  // A selection was enqueued
	EventTrackStarted                  // Track started playing
	EventTrackEnded                    // Track finished playing
	EventTrackSkipped                  // Track was skipped
	EventQueueEmpty                    // Dequeue found the queue empty
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventStateChanged:
		return "state_changed"
	case EventTracksQueued:
		return "tracks_queued"
	case EventTrackStarted:
		return "track_started"
	case EventTrackEnded:
		return "track_ended"
	case EventTrackSkipped:
		return "track_skipped"
	case EventQueueEmpty:
		return "queue_empty"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
type Event struct {
	Type  EventType
	Track *track.Track // Track concerned (nil for some events)
	State State        // Controller state after the event
	Count int          // Number of tracks for EventTracksQueued
}
