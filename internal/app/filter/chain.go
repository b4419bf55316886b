package filter

import (
	"context"
	"slices"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/hotafrosauce1/Soundcloud-Queue/internal/domain/track"
)

// Chain executes filters in sequence.
type Chain struct {
	filters []Filter
}

// NewChain creates a new filter chain.
func NewChain() *Chain {
	return &Chain{
		filters: make([]Filter, 0),
	}
}

// DefaultChain returns a chain holding only the mandatory ASCII title filter.
func DefaultChain() *Chain {
	c := NewChain()
	c.Add(NewASCIITitleFilter())
	return c
}

// NewChainFromConfig builds a chain from the filters section of the configuration.
// The ASCII title filter always runs first and cannot be disabled. Enabled filters follow
// in name order so that the chain is stable across runs.
func NewChainFromConfig(configs map[string]FilterConfig) (*Chain, error) {
	c := DefaultChain()

	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		cfg := configs[name]
		if !cfg.Enabled || name == asciiTitleFilterName {
			continue
		}

		factory, exists := registry[name]
		if !exists {
			return nil, errors.Newf("unknown filter: %s", name)
		}

		f := factory()
		if err := f.ValidateConfig(cfg.Settings); err != nil {
			return nil, errors.Wrapf(err, "filter %s", name)
		}
		c.Add(f)
		zlog.Debug().Msgf("filter: enabled %s", name)
	}

	return c, nil
}

// Add adds a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Execute runs all filters in sequence.
// Returns immediately if any filter rejects the track.
func (c *Chain) Execute(ctx context.Context, t track.Track) Result {
	for _, f := range c.filters {
		result := f.Check(ctx, t)
		if !result.Accepted {
			return result
		}
	}
	return Accept()
}

// Filters returns all filters in the chain.
func (c *Chain) Filters() []Filter {
	return c.filters
}
