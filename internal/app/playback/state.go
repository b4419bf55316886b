// Package playback provides the queue player state machine.
package playback

// State represents the controller state.
type State int

const (
	StateIdle      State = iota // No track loaded
	StateSelecting              // Catalog displayed, waiting for a selection
	StateQueued                 // Tracks enqueued, none playing yet
	StatePlaying                // Track is being rendered
	StateStopped                // Rendering halted (paused, skipped or ended)
	StateExited                 // Terminal
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelecting:
		return "selecting"
	case StateQueued:
		return "queued"
	case StatePlaying:
		return "playing"
	case StateStopped:
		return "stopped"
	case StateExited:
		return "exited"
	default:
		return "unknown"
	}
}
