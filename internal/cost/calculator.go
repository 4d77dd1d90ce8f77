// Package cost tracks per-run provider spend. Pricing lives in config-shaped
// rate tables so billing changes never touch pipeline code.
package cost

import (
	"sync"

	"github.com/sells-group/intel-cli/internal/model"
	"github.com/sells-group/intel-cli/pkg/anthropic"
)

// Rates holds per-provider pricing configuration.
type Rates struct {
	Anthropic  map[string]ModelRate `yaml:"anthropic" mapstructure:"anthropic"`
	Tavily     QueryRate            `yaml:"tavily" mapstructure:"tavily"`
	Perplexity QueryRate            `yaml:"perplexity" mapstructure:"perplexity"`
}

// ModelRate holds per-model token pricing (per million tokens).
type ModelRate struct {
	Input         float64 `yaml:"input" mapstructure:"input"`
	Output        float64 `yaml:"output" mapstructure:"output"`
	CacheWriteMul float64 `yaml:"cache_write_mul" mapstructure:"cache_write_mul"`
	CacheReadMul  float64 `yaml:"cache_read_mul" mapstructure:"cache_read_mul"`
}

// QueryRate holds flat per-query pricing.
type QueryRate struct {
	PerQuery float64 `yaml:"per_query" mapstructure:"per_query"`
}

// Calculator computes costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Claude computes the cost of one Claude API call from its token usage.
func (c *Calculator) Claude(modelID string, u anthropic.TokenUsage) float64 {
	rate, ok := c.rates.Anthropic[modelID]
	if !ok {
		return 0
	}

	inCost := (float64(u.InputTokens) / 1e6) * rate.Input
	outCost := (float64(u.OutputTokens) / 1e6) * rate.Output
	cwCost := (float64(u.CacheCreationInputTokens) / 1e6) * rate.Input * rate.CacheWriteMul
	crCost := (float64(u.CacheReadInputTokens) / 1e6) * rate.Input * rate.CacheReadMul

	return inCost + outCost + cwCost + crCost
}

// TavilyQuery returns the flat cost per Tavily search.
func (c *Calculator) TavilyQuery() float64 {
	return c.rates.Tavily.PerQuery
}

// PerplexityQuery returns the flat cost per Perplexity query.
func (c *Calculator) PerplexityQuery() float64 {
	return c.rates.Perplexity.PerQuery
}

// DefaultRates returns the default pricing rates.
func DefaultRates() Rates {
	return Rates{
		Anthropic: map[string]ModelRate{
			"claude-haiku-4-5-20251001": {
				Input: 0.80, Output: 4.00,
				CacheWriteMul: 1.25, CacheReadMul: 0.1,
			},
			"claude-sonnet-4-5-20250929": {
				Input: 3.00, Output: 15.00,
				CacheWriteMul: 1.25, CacheReadMul: 0.1,
			},
			"claude-opus-4-6": {
				Input: 15.00, Output: 75.00,
				CacheWriteMul: 1.25, CacheReadMul: 0.1,
			},
		},
		Tavily:     QueryRate{PerQuery: 0.008},
		Perplexity: QueryRate{PerQuery: 0.005},
	}
}

// Ledger accumulates spend across one analysis run. Safe for concurrent use.
type Ledger struct {
	calc *Calculator

	mu            sync.Mutex
	searchQueries int
	llmCalls      int
	urlsVerified  int
	totalUSD      float64
}

// NewLedger creates an empty Ledger priced by calc.
func NewLedger(calc *Calculator) *Ledger {
	return &Ledger{calc: calc}
}

// AddSearch records one search query against the named provider.
func (l *Ledger) AddSearch(provider string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.searchQueries++
	switch provider {
	case "tavily":
		l.totalUSD += l.calc.TavilyQuery()
	case "perplexity":
		l.totalUSD += l.calc.PerplexityQuery()
	}
}

// AddLLM records one Claude call and its token spend.
func (l *Ledger) AddLLM(modelID string, u anthropic.TokenUsage) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.llmCalls++
	l.totalUSD += l.calc.Claude(modelID, u)
}

// AddVerification records one URL fetch. Verification is free but counted,
// so a report shows how much checking backed it.
func (l *Ledger) AddVerification() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.urlsVerified++
}

// Summary snapshots the ledger.
func (l *Ledger) Summary() model.CostSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return model.CostSummary{
		SearchQueries: l.searchQueries,
		LLMCalls:      l.llmCalls,
		URLsVerified:  l.urlsVerified,
		TotalUSD:      l.totalUSD,
	}
}
