package search

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/intel-cli/internal/model"
	"github.com/sells-group/intel-cli/pkg/tavily"
)

// tavilyProvider adapts the Tavily API client to the Provider interface.
type tavilyProvider struct {
	client tavily.Client
}

// NewTavilyProvider wraps a Tavily client as a search Provider.
func NewTavilyProvider(client tavily.Client) Provider {
	return &tavilyProvider{client: client}
}

func (p *tavilyProvider) Name() string { return "tavily" }

func (p *tavilyProvider) Search(ctx context.Context, query string, opts Options) ([]model.RawResult, error) {
	resp, err := p.client.Search(ctx, tavily.SearchRequest{
		Query:       query,
		MaxResults:  opts.MaxResults,
		SearchDepth: opts.Depth,
	})
	if err != nil {
		return nil, eris.Wrap(err, "search: tavily query")
	}

	out := make([]model.RawResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		if !model.IsAbsoluteHTTP(r.URL) {
			continue
		}
		out = append(out, model.RawResult{
			Title:      r.Title,
			URL:        r.URL,
			Content:    r.Content,
			ProviderID: p.Name(),
			Score:      r.Score,
		})
	}
	return out, nil
}
