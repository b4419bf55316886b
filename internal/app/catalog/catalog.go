// Package catalog provides the filtered, sorted list of tracks a session can choose from.
package catalog

import (
	"context"
	"iter"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/hotafrosauce1/Soundcloud-Queue/internal/app/filter"
	"github.com/hotafrosauce1/Soundcloud-Queue/internal/domain/playlist"
	"github.com/hotafrosauce1/Soundcloud-Queue/internal/domain/track"
)

// Errors
var (
	ErrSourceUnavailable = errors.New("playlist source unavailable")
	ErrIndexOutOfRange   = errors.New("selection index out of range")
	ErrInvalidSelection  = errors.New("selection is not a comma separated list of numbers")
	ErrEmptySelection    = errors.New("no tracks selected")
)

// Source resolves a playlist URL.
type Source interface {
	Resolve(ctx context.Context, url string) (*playlist.Playlist, error)
}

// Catalog is the immutable, title-sorted list of selectable tracks.
// Positions are 1-based.
type Catalog struct {
	name   string
	tracks []track.Track
}

// Build resolves the playlist through the source and builds the catalog from it.
// Resolution failures are returned marked with ErrSourceUnavailable and are not retried.
func Build(ctx context.Context, src Source, url string, chain *filter.Chain) (*Catalog, error) {
	p, err := src.Resolve(ctx, url)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to resolve playlist %s", url), ErrSourceUnavailable)
	}

	c := New(p.Tracks, chain)
	c.name = p.Name
	zlog.Info().Msgf("catalog: built from %s: raw=%d selectable=%d", url, len(p.Tracks), c.Size())
	return c, nil
}

// New filters raw tracks through the chain and sorts the survivors by title.
// A nil chain applies the default chain (ASCII titles only).
func New(raw []track.Track, chain *filter.Chain) *Catalog {
	if chain == nil {
		chain = filter.DefaultChain()
	}

	ctx := context.Background()
	tracks := make([]track.Track, 0, len(raw))
	for _, t := range raw {
		result := chain.Execute(ctx, t)
		if !result.Accepted {
			zlog.Debug().Msgf("catalog: dropped %q: code=%s", t.Title, result.Code)
			continue
		}
		tracks = append(tracks, t)
	}

	slices.SortStableFunc(tracks, func(a, b track.Track) int {
		return strings.Compare(a.Title, b.Title)
	})

	return &Catalog{tracks: tracks}
}

// Name returns the playlist name, if the source reported one.
func (c *Catalog) Name() string {
	return c.name
}

// Size returns the number of selectable tracks.
func (c *Catalog) Size() int {
	return len(c.tracks)
}

// At returns the track at the 1-based index.
func (c *Catalog) At(index int) (track.Track, error) {
	if index < 1 || index > len(c.tracks) {
		return track.Track{}, errors.Wrapf(ErrIndexOutOfRange, "%d is not between 1 and %d", index, len(c.tracks))
	}
	return c.tracks[index-1], nil
}

// All iterates over the catalog with 1-based indices.
func (c *Catalog) All() iter.Seq2[int, track.Track] {
	return func(yield func(int, track.Track) bool) {
		for i, t := range c.tracks {
			if !yield(i+1, t) {
				return
			}
		}
	}
}

// Select parses a selection and resolves every index against the catalog.
// Either every index resolves or nothing is returned.
func (c *Catalog) Select(input string) ([]track.Track, error) {
	indices, err := ParseSelection(input)
	if err != nil {
		return nil, err
	}

	tracks := make([]track.Track, 0, len(indices))
	for _, i := range indices {
		t, err := c.At(i)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}
