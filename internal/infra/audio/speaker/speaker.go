// Package speaker renders decoded WAV files on the sound device through oto.
// It is the only package that needs cgo and the platform audio headers.
package speaker

import (
	"io"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ebitengine/oto/v3"
	"github.com/go-audio/wav"
	zlog "github.com/rs/zerolog/log"

	"github.com/hotafrosauce1/Soundcloud-Queue/internal/infra/audio"
)

const (
	bitDepth  = 16
	pcmFormat = 1 // WAVE_FORMAT_PCM
)

// player is the subset of *oto.Player the renderer drives.
type player interface {
	Play()
	Pause()
	IsPlaying() bool
	Close() error
}

// device opens players for PCM streams of a given format.
type device interface {
	NewPlayer(h audio.Handle, pcm io.Reader) (player, error)
}

// formatGuard remembers the first format a device was opened with.
type formatGuard struct {
	mu         sync.Mutex
	claimed    bool
	sampleRate int
	channels   int
}

// claim records h's format on first use and rejects any later, different format.
func (g *formatGuard) claim(h audio.Handle) (first bool, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.claimed {
		g.claimed = true
		g.sampleRate = h.SampleRate
		g.channels = h.Channels
		return true, nil
	}
	if h.SampleRate != g.sampleRate || h.Channels != g.channels {
		return false, errors.Wrapf(audio.ErrFormatMismatch, "device is %d Hz/%d ch, got %d Hz/%d ch",
			g.sampleRate, g.channels, h.SampleRate, h.Channels)
	}
	return false, nil
}

// otoDevice owns the process wide oto context. oto allows a single context per process,
// so the context is created with the format of the first rendered handle.
type otoDevice struct {
	guard formatGuard
	once  sync.Once
	ctx   *oto.Context
	err   error
}

var defaultDevice = &otoDevice{}

func (d *otoDevice) NewPlayer(h audio.Handle, pcm io.Reader) (player, error) {
	if _, err := d.guard.claim(h); err != nil {
		return nil, err
	}

	d.once.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   h.SampleRate,
			ChannelCount: h.Channels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		d.ctx, ready, d.err = oto.NewContext(op)
		if d.err == nil {
			<-ready
		}
	})
	if d.err != nil {
		return nil, errors.Wrap(d.err, "failed to open audio device")
	}

	return d.ctx.NewPlayer(pcm), nil
}

// Renderer plays WAV handles on the sound device.
type Renderer struct {
	device device
}

// NewRenderer creates a renderer on the default sound device.
func NewRenderer() *Renderer {
	return &Renderer{device: defaultDevice}
}

// Play opens the WAV file and starts rendering it.
func (r *Renderer) Play(h audio.Handle) (audio.Playback, error) {
	f, err := os.Open(h.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open wav")
	}

	pcm, err := openPCM(f, &h)
	if err != nil {
		f.Close()
		return nil, err
	}

	p, err := r.device.NewPlayer(h, pcm)
	if err != nil {
		f.Close()
		return nil, err
	}

	p.Play()
	zlog.Debug().Msgf("speaker: rendering %s", h.Path)
	return &playback{player: p, file: f}, nil
}

// openPCM validates the WAV header and positions f at the PCM data.
// The handle's format is refreshed from the header.
func openPCM(f *os.File, h *audio.Handle) (io.Reader, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, errors.Wrapf(audio.ErrUnsupportedFormat, "%s is not a wav file", h.Path)
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, errors.Wrap(err, "failed to read wav pcm chunk")
	}
	if dec.WavAudioFormat != pcmFormat || dec.BitDepth != bitDepth {
		return nil, errors.Wrapf(audio.ErrUnsupportedFormat, "format %d with %d bits", dec.WavAudioFormat, dec.BitDepth)
	}

	h.SampleRate = int(dec.SampleRate)
	h.Channels = int(dec.NumChans)
	return io.LimitReader(f, dec.PCMLen()), nil
}

type playback struct {
	mu     sync.Mutex
	player player
	file   *os.File
	closed bool
}

func (p *playback) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closed && p.player.IsPlaying()
}

func (p *playback) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.player.Pause()
	}
}

func (p *playback) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.player.Play()
	}
}

func (p *playback) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	p.player.Pause()
	return errors.CombineErrors(p.player.Close(), p.file.Close())
}
