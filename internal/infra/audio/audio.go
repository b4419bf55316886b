// Package audio turns track content into playable WAV files. Rendering them lives in
// the speaker subpackage so that only the device code needs cgo.
package audio

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Errors
var (
	ErrNoContent         = errors.New("track has no audio content")
	ErrFormatMismatch    = errors.New("audio format differs from the open device")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

const (
	bitDepth    = 16
	channels    = 2
	pcmFormat   = 1 // WAVE_FORMAT_PCM
	bytesPerPCM = bitDepth / 8
	frameBytes  = channels * bytesPerPCM
)

// Handle refers to a decoded WAV file ready for rendering.
type Handle struct {
	Path       string
	SampleRate int
	Channels   int
}

// Playback is a started render of a single handle.
type Playback interface {
	// IsPlaying reports whether audio is still being rendered. It never blocks.
	IsPlaying() bool
	// Pause halts output, keeping the position.
	Pause()
	// Resume continues output from the paused position.
	Resume()
	// Stop halts output and releases the device player and file.
	Stop() error
}

// FileName returns the file name base used for a track title.
func FileName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, title)

	name = strings.Trim(strings.TrimSpace(name), ".")
	if name == "" {
		return "track"
	}
	return name
}

func mediaPaths(dir, title string) (mp3Path, wavPath string) {
	base := filepath.Join(dir, FileName(title))
	return base + ".mp3", base + ".wav"
}
