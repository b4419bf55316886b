package audio

import (
	"context"
	"encoding/binary"
	"io"
	"os"

	"github.com/bogem/id3v2/v2"
	"github.com/cockroachdb/errors"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	zlog "github.com/rs/zerolog/log"

	"github.com/hotafrosauce1/Soundcloud-Queue/internal/domain/track"
)

// pcmStream is decoded 16-bit little endian interleaved stereo PCM.
type pcmStream interface {
	io.Reader
	SampleRate() int
}

type decodeFunc func(r io.Reader) (pcmStream, error)

func decodeMP3(r io.Reader) (pcmStream, error) {
	return mp3.NewDecoder(r)
}

// Transcoder materialises track content as MP3 and converts it to WAV.
type Transcoder struct {
	dir    string
	decode decodeFunc
}

// NewTranscoder creates a transcoder writing its files into dir.
func NewTranscoder(dir string) *Transcoder {
	return &Transcoder{
		dir:    dir,
		decode: decodeMP3,
	}
}

// ToPlayable downloads the track to <dir>/<title>.mp3 and decodes it into <dir>/<title>.wav.
// Files are left on disk.
func (t *Transcoder) ToPlayable(ctx context.Context, tr track.Track) (Handle, error) {
	if !tr.HasContent() {
		return Handle{}, errors.Wrapf(ErrNoContent, "%q", tr.Title)
	}

	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return Handle{}, errors.Wrap(err, "failed to create media directory")
	}

	mp3Path, wavPath := mediaPaths(t.dir, tr.Title)

	if err := tr.Content.Download(ctx, mp3Path); err != nil {
		return Handle{}, errors.Wrapf(err, "failed to download %q", tr.Title)
	}

	if err := tagMP3(mp3Path, tr); err != nil {
		zlog.Warn().Err(err).Msgf("audio: failed to tag %s", mp3Path)
	}

	in, err := os.Open(mp3Path)
	if err != nil {
		return Handle{}, errors.Wrap(err, "failed to open mp3")
	}
	defer in.Close()

	stream, err := t.decode(in)
	if err != nil {
		return Handle{}, errors.Wrapf(err, "failed to decode %s", mp3Path)
	}

	h, err := writeWAV(wavPath, stream)
	if err != nil {
		return Handle{}, err
	}

	zlog.Debug().Msgf("audio: transcoded %q to %s (%d Hz)", tr.Title, wavPath, h.SampleRate)
	return h, nil
}

// tagMP3 writes title and artist frames so the materialised file is self describing.
func tagMP3(path string, tr track.Track) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return errors.Wrap(err, "failed to open id3 tag")
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(tr.Title)
	if tr.Artist != "" {
		tag.SetArtist(tr.Artist)
	}
	return errors.Wrap(tag.Save(), "failed to save id3 tag")
}

// writeWAV encodes a 16-bit stereo PCM stream as a PCM WAV file.
func writeWAV(path string, stream pcmStream) (Handle, error) {
	out, err := os.Create(path)
	if err != nil {
		return Handle{}, errors.Wrap(err, "failed to create wav")
	}
	defer out.Close()

	rate := stream.SampleRate()
	enc := wav.NewEncoder(out, rate, bitDepth, channels, pcmFormat)
	format := &goaudio.Format{NumChannels: channels, SampleRate: rate}

	raw := make([]byte, 16*1024)
	pending := 0
	for {
		n, readErr := stream.Read(raw[pending:])
		n += pending

		whole := n - n%frameBytes
		if whole > 0 {
			samples := make([]int, whole/bytesPerPCM)
			for i := range samples {
				samples[i] = int(int16(binary.LittleEndian.Uint16(raw[i*bytesPerPCM:])))
			}
			buf := &goaudio.IntBuffer{Format: format, Data: samples, SourceBitDepth: bitDepth}
			if err := enc.Write(buf); err != nil {
				return Handle{}, errors.Wrap(err, "failed to write wav samples")
			}
		}
		pending = copy(raw, raw[whole:n])

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return Handle{}, errors.Wrap(readErr, "failed to read pcm")
		}
	}

	if err := enc.Close(); err != nil {
		return Handle{}, errors.Wrap(err, "failed to finalize wav")
	}

	return Handle{Path: path, SampleRate: rate, Channels: channels}, nil
}
