package search

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/intel-cli/internal/config"
	"github.com/sells-group/intel-cli/internal/model"
)

// fakeProvider returns canned hits, or an error, for every query.
type fakeProvider struct {
	name string
	hits []model.RawResult
	err  error

	mu      sync.Mutex
	queries []string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Search(_ context.Context, query string, _ Options) ([]model.RawResult, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	return f.hits, f.err
}

func testSearchConfig() config.SearchConfig {
	return config.SearchConfig{MaxResultsPerQuery: 10, TimeoutSecs: 5, MaxConcurrent: 4}
}

func TestGather_MergesProviders(t *testing.T) {
	p1 := &fakeProvider{name: "one", hits: []model.RawResult{
		{Title: "A", URL: "https://a.example.com/1", Score: 0.5},
	}}
	p2 := &fakeProvider{name: "two", hits: []model.RawResult{
		{Title: "B", URL: "https://b.example.com/2", Score: 0.9},
	}}
	a := NewAggregator(testSearchConfig(), p1, p2)

	res := a.Gather(context.Background(), "Acme Corp", nil)
	require.NotNil(t, res)
	assert.False(t, res.AllFailed)
	assert.Empty(t, res.Warnings)

	// Four non-competitor topics, no competitor queries.
	assert.Len(t, res.ByTopic, 4)
	news := res.ByTopic[model.TopicNews]
	require.Len(t, news, 2)
	// Best-first ordering.
	assert.Equal(t, "https://b.example.com/2", news[0].URL)
}

func TestGather_DedupsByURL(t *testing.T) {
	hit := model.RawResult{Title: "Same", URL: "https://a.example.com/1", Score: 0.5}
	p1 := &fakeProvider{name: "one", hits: []model.RawResult{hit}}
	p2 := &fakeProvider{name: "two", hits: []model.RawResult{hit}}
	a := NewAggregator(testSearchConfig(), p1, p2)

	res := a.Gather(context.Background(), "Acme Corp", nil)
	assert.Len(t, res.ByTopic[model.TopicNews], 1)
}

func TestGather_CompetitorQueriesPerCompetitor(t *testing.T) {
	p := &fakeProvider{name: "one"}
	a := NewAggregator(testSearchConfig(), p)

	a.Gather(context.Background(), "Acme Corp", []string{"Globex", "Initech"})

	p.mu.Lock()
	defer p.mu.Unlock()
	// 4 fixed topics + 2 competitor queries.
	assert.Len(t, p.queries, 6)
	var competitorQueries int
	for _, q := range p.queries {
		if q == `"Acme Corp" "Globex" partnership OR customer OR comparison OR integration` ||
			q == `"Acme Corp" "Initech" partnership OR customer OR comparison OR integration` {
			competitorQueries++
		}
	}
	assert.Equal(t, 2, competitorQueries)
}

func TestGather_PartialFailureWarnsAndContinues(t *testing.T) {
	p1 := &fakeProvider{name: "broken", err: assert.AnError}
	p2 := &fakeProvider{name: "ok", hits: []model.RawResult{
		{Title: "A", URL: "https://a.example.com/1"},
	}}
	a := NewAggregator(testSearchConfig(), p1, p2)

	res := a.Gather(context.Background(), "Acme Corp", nil)
	assert.False(t, res.AllFailed)
	assert.NotEmpty(t, res.Warnings)
	assert.NotEmpty(t, res.ByTopic[model.TopicNews])
}

func TestGather_AllFailed(t *testing.T) {
	p := &fakeProvider{name: "broken", err: assert.AnError}
	a := NewAggregator(testSearchConfig(), p)

	res := a.Gather(context.Background(), "Acme Corp", nil)
	assert.True(t, res.AllFailed)
	assert.Empty(t, res.ByTopic)
	assert.Len(t, res.Warnings, 4)
}

func TestGather_NoProviders(t *testing.T) {
	a := NewAggregator(testSearchConfig())
	res := a.Gather(context.Background(), "Acme Corp", nil)
	assert.False(t, res.AllFailed)
	assert.Empty(t, res.ByTopic)
}
