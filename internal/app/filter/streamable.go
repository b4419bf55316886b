package filter

import (
	"context"

	"github.com/hotafrosauce1/Soundcloud-Queue/internal/domain/track"
)

// StreamableFilter checks that the source exposed downloadable audio for the track.
// Spotify playlists, for instance, contain tracks without a preview.
type StreamableFilter struct{}

// NewStreamableFilter creates a new StreamableFilter.
func NewStreamableFilter() *StreamableFilter {
	return &StreamableFilter{}
}

func (f *StreamableFilter) Name() string {
	return "streamable_filter"
}

func (f *StreamableFilter) Description() string {
	return "Drops tracks that have no downloadable audio"
}

func (f *StreamableFilter) ReturnCodes() []string {
	return []string{"not_streamable"}
}

func (f *StreamableFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *StreamableFilter) Check(ctx context.Context, t track.Track) Result {
	if !t.HasContent() {
		return Reject("not_streamable")
	}
	return Accept()
}

func init() {
	Register("streamable_filter", func() Filter {
		return &StreamableFilter{}
	})
}
