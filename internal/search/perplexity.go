package search

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/intel-cli/internal/model"
	"github.com/sells-group/intel-cli/pkg/perplexity"
)

// perplexityPrompt asks for machine-readable results. The model sometimes
// wraps the array in prose or a code fence anyway; parsing is lenient.
const perplexityPrompt = `Search the web for: %s

Return the %d most relevant results as a JSON array only, no prose:
[{"title": "<page title>", "url": "<page url>", "content": "<two-sentence summary of what the page says>"}]`

var perplexityFenceRe = regexp.MustCompile("(?s)```(?:json)?(.*?)```")

// perplexityProvider adapts the Perplexity chat API to the Provider
// interface by asking for structured search results.
type perplexityProvider struct {
	client perplexity.Client
}

// NewPerplexityProvider wraps a Perplexity client as a search Provider.
func NewPerplexityProvider(client perplexity.Client) Provider {
	return &perplexityProvider{client: client}
}

func (p *perplexityProvider) Name() string { return "perplexity" }

func (p *perplexityProvider) Search(ctx context.Context, query string, opts Options) ([]model.RawResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	resp, err := p.client.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Messages: []perplexity.Message{
			{Role: "user", Content: fmt.Sprintf(perplexityPrompt, query, maxResults)},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "search: perplexity query")
	}
	if len(resp.Choices) == 0 {
		return nil, nil
	}

	return p.parseResults(resp.Choices[0].Message.Content), nil
}

// parseResults decodes the model's reply. Unparseable output is an empty
// result set; a malformed element skips only that element.
func (p *perplexityProvider) parseResults(text string) []model.RawResult {
	if m := perplexityFenceRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		zap.L().Debug("search: perplexity reply carried no result array")
		return nil
	}

	var blocks []json.RawMessage
	if err := json.Unmarshal([]byte(text[start:end+1]), &blocks); err != nil {
		zap.L().Debug("search: unparseable perplexity result array", zap.Error(err))
		return nil
	}

	var out []model.RawResult
	for _, blk := range blocks {
		var r struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		}
		if err := json.Unmarshal(blk, &r); err != nil {
			zap.L().Debug("search: skipping malformed perplexity result", zap.Error(err))
			continue
		}
		if !model.IsAbsoluteHTTP(r.URL) {
			continue
		}
		out = append(out, model.RawResult{
			Title:      r.Title,
			URL:        r.URL,
			Content:    r.Content,
			ProviderID: p.Name(),
		})
	}
	return out
}
