package soundcloud

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lrstanley/go-ytdlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRun struct {
	stdout string
	stderr string
	err    error
	args   [][]string
	create string // file created on each run, if set
}

func (f *fakeRun) run(_ context.Context, _ *ytdlp.Command, args ...string) (*ytdlp.Result, error) {
	f.args = append(f.args, args)
	if f.create != "" {
		if err := os.WriteFile(f.create, []byte("mp3"), 0o644); err != nil {
			return nil, err
		}
	}
	return &ytdlp.Result{Stdout: f.stdout, Stderr: f.stderr}, f.err
}

func newTestSource(f *fakeRun) *Source {
	s := New(Config{Proxy: "socks5://127.0.0.1:1080"})
	s.run = f.run
	return s
}

func TestSource_Matches(t *testing.T) {
	s := New(Config{})

	assert.True(t, s.Matches("https://soundcloud.com/artist/sets/mix"))
	assert.True(t, s.Matches(" http://example.com/playlist "))
	assert.False(t, s.Matches("spotify:playlist:abc"))
	assert.False(t, s.Matches("https://"))
	assert.False(t, s.Matches("not a url"))
}

func TestSource_Resolve(t *testing.T) {
	stdout := strings.Join([]string{
		"https://soundcloud.com/a/one\tOne\tArtist A\t215.5\t111\tMy Set",
		"https://soundcloud.com/b/two\tTwo\tNA\tNA\t222\tMy Set",
		"NA\tBroken\tX\t1\t333\tMy Set",
		"garbage line",
		"",
	}, "\n")
	f := &fakeRun{stdout: stdout}

	p, err := newTestSource(f).Resolve(context.Background(), "https://soundcloud.com/a/sets/my-set")
	require.NoError(t, err)

	assert.Equal(t, "My Set", p.Name)
	assert.Equal(t, "https://soundcloud.com/a/sets/my-set", p.URL)
	require.Len(t, p.Tracks, 2)

	one := p.Tracks[0]
	assert.Equal(t, "111", one.ID)
	assert.Equal(t, "One", one.Title)
	assert.Equal(t, "Artist A", one.Artist)
	assert.Equal(t, 215500*time.Millisecond, one.Duration)
	assert.Equal(t, SourceName, one.Source)
	assert.True(t, one.HasContent())

	two := p.Tracks[1]
	assert.Empty(t, two.Artist)
	assert.Zero(t, two.Duration)

	require.Len(t, f.args, 1)
	assert.Equal(t, []string{"--yes-playlist", "https://soundcloud.com/a/sets/my-set"}, f.args[0])
}

func TestSource_ResolveErrors(t *testing.T) {
	t.Run("command fails", func(t *testing.T) {
		f := &fakeRun{err: errors.New("exit status 1"), stderr: "ERROR: Unsupported URL"}
		_, err := newTestSource(f).Resolve(context.Background(), "https://example.com/x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Unsupported URL")
	})

	t.Run("no tracks", func(t *testing.T) {
		_, err := newTestSource(&fakeRun{}).Resolve(context.Background(), "https://example.com/x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no tracks")
	})
}

func TestContent_Download(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "One.mp3")
	f := &fakeRun{create: dst}
	s := newTestSource(f)

	c := &Content{url: "https://soundcloud.com/a/one", source: s}
	require.NoError(t, c.Download(context.Background(), dst))

	require.Len(t, f.args, 1)
	assert.Equal(t, []string{"-x", "--audio-format", "mp3", "--no-playlist", "--force-overwrites", "https://soundcloud.com/a/one"}, f.args[0])
}

func TestContent_DownloadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		dst     string
		run     *fakeRun
		wantErr string
	}{
		{name: "not mp3", dst: filepath.Join(dir, "a.wav"), run: &fakeRun{}, wantErr: "not an mp3"},
		{name: "command fails", dst: filepath.Join(dir, "b.mp3"), run: &fakeRun{err: errors.New("exit status 1")}, wantErr: "failed to download"},
		{name: "no output file", dst: filepath.Join(dir, "c.mp3"), run: &fakeRun{}, wantErr: "did not produce"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Content{url: "https://soundcloud.com/a/one", source: newTestSource(tt.run)}
			err := c.Download(context.Background(), tt.dst)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
