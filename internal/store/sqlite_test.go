package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/intel-cli/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testReport(company string) *model.Report {
	return &model.Report{
		ID:          uuid.New().String(),
		Company:     company,
		Competitors: []string{"Globex"},
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
		Leadership: []model.LeadershipChange{
			{Name: "Jane Carter", Role: "CEO", ChangeType: model.ChangeAppointed, URL: "https://reuters.com/a"},
		},
		LeadershipState: model.SectionOK,
		CompetitorState: model.SectionNoResults,
		RegulatoryState: model.SectionNoResults,
	}
}

func TestSQLite_SaveAndGetReport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := testReport("Acme Corp")
	require.NoError(t, s.SaveReport(ctx, r, 24*time.Hour))

	got, err := s.GetReport(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Company, got.Company)
	require.Len(t, got.Leadership, 1)
	assert.Equal(t, "Jane Carter", got.Leadership[0].Name)
	assert.Equal(t, model.SectionNoResults, got.CompetitorState)
}

func TestSQLite_GetReport_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetReport(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_CachedReport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := testReport("Acme Corp")
	require.NoError(t, s.SaveReport(ctx, r, 24*time.Hour))

	key := CacheKey("Acme Corp", []string{"Globex"})
	got, err := s.GetCachedReport(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, r.ID, got.ID)

	// Different competitor set is a different cache identity.
	miss, err := s.GetCachedReport(ctx, CacheKey("Acme Corp", []string{"Initech"}))
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestSQLite_CachedReport_Expired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := testReport("Acme Corp")
	require.NoError(t, s.SaveReport(ctx, r, -time.Hour))

	got, err := s.GetCachedReport(ctx, CacheKey("Acme Corp", []string{"Globex"}))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_ListReports(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := testReport("Acme Corp")
	b := testReport("Beta Inc")
	require.NoError(t, s.SaveReport(ctx, a, time.Hour))
	require.NoError(t, s.SaveReport(ctx, b, time.Hour))

	all, err := s.ListReports(ctx, ReportFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := s.ListReports(ctx, ReportFilter{Company: "Acme Corp"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, a.ID, filtered[0].ID)
}

func TestSQLite_DeleteExpiredReports(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	live := testReport("Acme Corp")
	dead := testReport("Beta Inc")
	require.NoError(t, s.SaveReport(ctx, live, time.Hour))
	require.NoError(t, s.SaveReport(ctx, dead, -time.Hour))
	require.NoError(t, s.RecordUsage(ctx, dead.ID, model.CostSummary{SearchQueries: 1}))

	n, err := s.DeleteExpiredReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	remaining, err := s.ListReports(ctx, ReportFilter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, live.ID, remaining[0].ID)
}

func TestSQLite_RecordUsage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := testReport("Acme Corp")
	require.NoError(t, s.SaveReport(ctx, r, time.Hour))
	require.NoError(t, s.RecordUsage(ctx, r.ID, model.CostSummary{
		SearchQueries: 10, LLMCalls: 2, URLsVerified: 7, TotalUSD: 0.12,
	}))
}
