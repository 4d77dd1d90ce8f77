package search

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/intel-cli/internal/config"
	"github.com/sells-group/intel-cli/internal/model"
)

// Aggregator fans the fixed topic queries out across all configured
// providers concurrently and merges the hits per topic.
type Aggregator struct {
	providers []Provider
	cfg       config.SearchConfig
}

// Results is the merged output of one aggregation run.
type Results struct {
	ByTopic  map[model.Topic][]model.RawResult
	Warnings []string

	// ProviderCalls counts completed (billable) calls per provider.
	ProviderCalls map[string]int

	// AllFailed is set when every provider call failed, meaning the run
	// has no evidence at all rather than thin evidence.
	AllFailed bool
}

// NewAggregator creates an Aggregator over the given providers.
func NewAggregator(cfg config.SearchConfig, providers ...Provider) *Aggregator {
	return &Aggregator{providers: providers, cfg: cfg}
}

// topicQueries builds the query set for one analysis run. The competitor
// topic gets one query per competitor; the rest get one query each.
func topicQueries(company string, competitors []string) map[model.Topic][]string {
	queries := map[model.Topic][]string{
		model.TopicNews:        {fmt.Sprintf("%q recent company news", company)},
		model.TopicCaseStudies: {fmt.Sprintf("%q customer case study", company)},
		model.TopicLeadership:  {fmt.Sprintf("%q executive appointed OR named OR promoted OR steps down", company)},
		model.TopicRegulatory:  {fmt.Sprintf("%q fine OR penalty OR settlement OR enforcement OR investigation", company)},
	}
	for _, comp := range competitors {
		queries[model.TopicCompetitor] = append(queries[model.TopicCompetitor],
			fmt.Sprintf("%q %q partnership OR customer OR comparison OR integration", company, comp))
	}
	return queries
}

// Gather runs every topic query against every provider. Each call gets its
// own timeout and a single attempt; failures become warnings. Hits are
// deduplicated by URL within each topic.
func (a *Aggregator) Gather(ctx context.Context, company string, competitors []string) *Results {
	timeout := time.Duration(a.cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	limit := a.cfg.MaxConcurrent
	if limit <= 0 {
		limit = 8
	}

	out := &Results{
		ByTopic:       make(map[model.Topic][]model.RawResult),
		ProviderCalls: make(map[string]int),
	}

	var mu sync.Mutex
	var attempts, successes int
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for topic, queries := range topicQueries(company, competitors) {
		for _, query := range queries {
			for _, p := range a.providers {
				attempts++
				g.Go(func() error {
					cctx, cancel := context.WithTimeout(gctx, timeout)
					defer cancel()

					hits, err := p.Search(cctx, query, Options{
						MaxResults: a.cfg.MaxResultsPerQuery,
						Depth:      a.cfg.SearchDepth,
					})
					mu.Lock()
					defer mu.Unlock()
					if err != nil {
						zap.L().Warn("search: provider call failed",
							zap.String("provider", p.Name()),
							zap.String("topic", string(topic)),
							zap.Error(err),
						)
						out.Warnings = append(out.Warnings,
							fmt.Sprintf("search provider %s failed for topic %s", p.Name(), topic))
						return nil
					}
					successes++
					out.ProviderCalls[p.Name()]++
					out.ByTopic[topic] = append(out.ByTopic[topic], hits...)
					return nil
				})
			}
		}
	}
	_ = g.Wait()

	out.AllFailed = attempts > 0 && successes == 0
	for topic := range out.ByTopic {
		out.ByTopic[topic] = dedupByURL(out.ByTopic[topic])
	}
	return out
}

// dedupByURL keeps the first hit per URL, then orders by descending
// provider relevance so downstream stages see a stable, best-first list.
func dedupByURL(in []model.RawResult) []model.RawResult {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, r := range in {
		if seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].URL < out[j].URL
	})
	return out
}
