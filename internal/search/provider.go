// Package search fans analysis queries out across web-search providers and
// aggregates the hits into per-topic evidence sets. Provider failures
// degrade a run, never abort it.
package search

import (
	"context"

	"github.com/sells-group/intel-cli/internal/model"
)

// Options tunes a single provider call.
type Options struct {
	MaxResults int
	Depth      string // "basic" or "advanced"
}

// Provider is one web-search backend. Implementations return normalized
// results; a malformed provider response yields an empty slice, not an
// error, so one bad payload does not poison the aggregate.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, opts Options) ([]model.RawResult, error)
}
