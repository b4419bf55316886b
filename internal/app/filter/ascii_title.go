package filter

import (
	"context"

	"github.com/hotafrosauce1/Soundcloud-Queue/internal/domain/track"
)

const asciiTitleFilterName = "ascii_title_filter"

// ASCIITitleFilter rejects tracks whose title contains a character outside 0-127.
// Such titles cannot be reliably shown on every terminal or typed back at a prompt.
type ASCIITitleFilter struct{}

// NewASCIITitleFilter creates a new ASCII title filter.
func NewASCIITitleFilter() *ASCIITitleFilter {
	return &ASCIITitleFilter{}
}

func (f *ASCIITitleFilter) Name() string {
	return asciiTitleFilterName
}

func (f *ASCIITitleFilter) Description() string {
	return "Drops tracks whose title contains non-ASCII characters (always enabled)"
}

func (f *ASCIITitleFilter) ReturnCodes() []string {
	return []string{"non_ascii_title"}
}

func (f *ASCIITitleFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *ASCIITitleFilter) Check(ctx context.Context, t track.Track) Result {
	if !t.IsASCIITitle() {
		return Reject("non_ascii_title")
	}
	return Accept()
}

func init() {
	Register(asciiTitleFilterName, func() Filter {
		return &ASCIITitleFilter{}
	})
}
