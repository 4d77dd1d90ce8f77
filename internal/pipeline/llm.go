package pipeline

import (
	"context"

	"github.com/sells-group/intel-cli/internal/cost"
	"github.com/sells-group/intel-cli/pkg/anthropic"
)

// extractMaxTokens bounds the regulatory extraction response.
const extractMaxTokens = 2048

// claudeLLM adapts the Anthropic client to the extractor's LLM interface
// and records spend on the run ledger. The system prompt is constant across
// runs, so it goes out as a cached block; repeat analyses pay cache-read
// rates on the preamble instead of full input rates.
type claudeLLM struct {
	client anthropic.Client
	model  string
	ledger *cost.Ledger
}

func (c *claudeLLM) Extract(ctx context.Context, system, prompt string) (string, error) {
	resp, err := c.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     c.model,
		MaxTokens: extractMaxTokens,
		System:    anthropic.BuildCachedSystemBlocks(system),
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	c.ledger.AddLLM(c.model, resp.Usage)
	resp.Usage.LogCost(c.model, "regulatory_extract")
	return resp.Text(), nil
}
