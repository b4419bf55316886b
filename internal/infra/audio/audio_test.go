package audio

import (
	"context"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotafrosauce1/Soundcloud-Queue/internal/domain/track"
)

// fakePCM returns its chunks one Read at a time.
type fakePCM struct {
	chunks [][]byte
	rate   int
}

func (f *fakePCM) Read(p []byte) (int, error) {
	if len(f.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, f.chunks[0])
	f.chunks[0] = f.chunks[0][n:]
	if len(f.chunks[0]) == 0 {
		f.chunks = f.chunks[1:]
	}
	return n, nil
}

func (f *fakePCM) SampleRate() int { return f.rate }

func pcmBytes(samples ...int16) []byte {
	out := make([]byte, 0, len(samples)*2)
	for _, s := range samples {
		out = binary.LittleEndian.AppendUint16(out, uint16(s))
	}
	return out
}

type fileContent struct {
	data []byte
	err  error
}

func (c fileContent) Download(_ context.Context, dst string) error {
	if c.err != nil {
		return c.err
	}
	return os.WriteFile(dst, c.data, 0o644)
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "plain", title: "Abba", want: "Abba"},
		{name: "separators", title: "AC/DC: Live?", want: "AC_DC_ Live_"},
		{name: "control characters", title: "a\tb\nc", want: "abc"},
		{name: "dots and spaces trimmed", title: "  ..hidden. ", want: "hidden"},
		{name: "empty", title: "   ", want: "track"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.title))
		})
	}
}

func TestWriteWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	data := pcmBytes(1, -2, 300, -400)

	// Split inside a sample to exercise carrying partial frames across reads.
	h, err := writeWAV(path, &fakePCM{chunks: [][]byte{data[:3], data[3:]}, rate: 22050})
	require.NoError(t, err)
	assert.Equal(t, Handle{Path: path, SampleRate: 22050, Channels: 2}, h)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)

	assert.Equal(t, uint32(22050), dec.SampleRate)
	assert.Equal(t, uint16(2), dec.NumChans)
	assert.Equal(t, uint16(16), dec.BitDepth)
	assert.Equal(t, []int{1, -2, 300, -400}, buf.Data)
}

func TestWriteWAV_DropsTrailingPartialFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	data := append(pcmBytes(5, 6), 0x01)

	_, err := writeWAV(path, &fakePCM{chunks: [][]byte{data}, rate: 44100})
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, []int{5, 6}, buf.Data)
}

func newTestTranscoder(dir string, pcm []byte) *Transcoder {
	return &Transcoder{
		dir: dir,
		decode: func(r io.Reader) (pcmStream, error) {
			if _, err := io.ReadAll(r); err != nil {
				return nil, err
			}
			return &fakePCM{chunks: [][]byte{pcm}, rate: 44100}, nil
		},
	}
}

func TestTranscoder_ToPlayable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "media")
	tr := newTestTranscoder(dir, pcmBytes(10, 20, 30, 40))

	h, err := tr.ToPlayable(context.Background(), track.Track{
		Title:   "Song/One",
		Artist:  "Band",
		Content: fileContent{data: []byte("not really mp3")},
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "Song_One.wav"), h.Path)
	assert.Equal(t, 44100, h.SampleRate)
	assert.FileExists(t, filepath.Join(dir, "Song_One.mp3"))
	assert.FileExists(t, h.Path)
}

func TestTranscoder_ToPlayableErrors(t *testing.T) {
	downloadErr := errors.New("gone")

	tests := []struct {
		name    string
		track   track.Track
		wantErr error
	}{
		{name: "no content", track: track.Track{Title: "a"}, wantErr: ErrNoContent},
		{name: "download fails", track: track.Track{Title: "b", Content: fileContent{err: downloadErr}}, wantErr: downloadErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestTranscoder(t.TempDir(), nil)
			_, err := tr.ToPlayable(context.Background(), tt.track)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}
