package speaker

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotafrosauce1/Soundcloud-Queue/internal/infra/audio"
)

// writeTestWAV writes 16-bit stereo samples and returns the handle for the file.
func writeTestWAV(t *testing.T, path string, rate int, samples ...int) audio.Handle {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, rate, bitDepth, 2, pcmFormat)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 2, SampleRate: rate},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}))
	require.NoError(t, enc.Close())
	return audio.Handle{Path: path, SampleRate: rate, Channels: 2}
}

func le16(samples ...int16) []byte {
	out := make([]byte, 0, len(samples)*2)
	for _, s := range samples {
		out = append(out, byte(uint16(s)), byte(uint16(s)>>8))
	}
	return out
}

func TestFormatGuard_Claim(t *testing.T) {
	var g formatGuard

	first, err := g.claim(audio.Handle{SampleRate: 44100, Channels: 2})
	require.NoError(t, err)
	assert.True(t, first)

	first, err = g.claim(audio.Handle{SampleRate: 44100, Channels: 2})
	require.NoError(t, err)
	assert.False(t, first)

	_, err = g.claim(audio.Handle{SampleRate: 48000, Channels: 2})
	assert.True(t, errors.Is(err, audio.ErrFormatMismatch))
}

type fakePlayer struct {
	playing bool
	closed  bool
	pcm     io.Reader
}

func (p *fakePlayer) Play()           { p.playing = true }
func (p *fakePlayer) Pause()          { p.playing = false }
func (p *fakePlayer) IsPlaying() bool { return p.playing }
func (p *fakePlayer) Close() error    { p.closed = true; return nil }

type fakeDevice struct {
	guard   formatGuard
	handles []audio.Handle
	players []*fakePlayer
}

func (d *fakeDevice) NewPlayer(h audio.Handle, pcm io.Reader) (player, error) {
	if _, err := d.guard.claim(h); err != nil {
		return nil, err
	}
	p := &fakePlayer{pcm: pcm}
	d.handles = append(d.handles, h)
	d.players = append(d.players, p)
	return p, nil
}

func TestRenderer_Play(t *testing.T) {
	h := writeTestWAV(t, filepath.Join(t.TempDir(), "a.wav"), 44100, 1, 2, 3, 4)

	dev := &fakeDevice{}
	r := &Renderer{device: dev}

	pb, err := r.Play(h)
	require.NoError(t, err)
	require.Len(t, dev.players, 1)
	assert.True(t, pb.IsPlaying())
	assert.Equal(t, 44100, dev.handles[0].SampleRate)

	pcm, err := io.ReadAll(dev.players[0].pcm)
	require.NoError(t, err)
	assert.Equal(t, le16(1, 2, 3, 4), pcm)

	pb.Pause()
	assert.False(t, pb.IsPlaying())
	pb.Resume()
	assert.True(t, pb.IsPlaying())

	require.NoError(t, pb.Stop())
	assert.True(t, dev.players[0].closed)
	assert.False(t, pb.IsPlaying())
	assert.NoError(t, pb.Stop(), "second stop is a no-op")
}

func TestRenderer_PlayFormatMismatch(t *testing.T) {
	dir := t.TempDir()
	first := writeTestWAV(t, filepath.Join(dir, "a.wav"), 44100, 1, 2)
	second := writeTestWAV(t, filepath.Join(dir, "b.wav"), 22050, 1, 2)

	r := &Renderer{device: &fakeDevice{}}

	pb, err := r.Play(first)
	require.NoError(t, err)
	require.NoError(t, pb.Stop())

	_, err = r.Play(second)
	assert.True(t, errors.Is(err, audio.ErrFormatMismatch))
}

func TestRenderer_PlayRejectsNonWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.wav")
	require.NoError(t, os.WriteFile(path, []byte("definitely not riff data"), 0o644))

	_, err := (&Renderer{device: &fakeDevice{}}).Play(audio.Handle{Path: path})
	assert.True(t, errors.Is(err, audio.ErrUnsupportedFormat))
}
