package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/intel-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_GetReport_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT report FROM reports WHERE id = \$1`).
		WithArgs("nonexistent").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetReport(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetCachedReport_Miss(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT report FROM reports WHERE cache_key = \$1`).
		WithArgs("acme corp|globex").
		WillReturnError(pgx.ErrNoRows)

	r, err := s.GetCachedReport(context.Background(), "acme corp|globex")
	require.NoError(t, err)
	assert.Nil(t, r)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetCachedReport_Hit(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	reportJSON := []byte(`{"id":"r1","company":"Acme Corp","generated_at":"2026-01-15T10:00:00Z","leadership":null,"leadership_state":"ok","competitor_mentions":null,"competitor_state":"no_results","regulatory_events":null,"regulatory_state":"no_results","cost":{"search_queries":0,"llm_calls":0,"urls_verified":0,"total_usd":0}}`)
	mock.ExpectQuery(`SELECT report FROM reports WHERE cache_key = \$1`).
		WithArgs("acme corp").
		WillReturnRows(pgxmock.NewRows([]string{"report"}).AddRow(reportJSON))

	r, err := s.GetCachedReport(context.Background(), "acme corp")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "r1", r.ID)
	assert.Equal(t, "Acme Corp", r.Company)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveReport(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO reports`).
		WithArgs("r1", "Acme Corp", "acme corp|globex",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SaveReport(context.Background(), &model.Report{
		ID:          "r1",
		Company:     "Acme Corp",
		Competitors: []string{"Globex"},
		GeneratedAt: time.Now().UTC(),
	}, 24*time.Hour)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RecordUsage(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO usage_ledger`).
		WithArgs(pgxmock.AnyArg(), "r1", 10, 2, 7, 0.25, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.RecordUsage(context.Background(), "r1", model.CostSummary{
		SearchQueries: 10, LLMCalls: 2, URLsVerified: 7, TotalUSD: 0.25,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteExpiredReports(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM usage_ledger`).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(`DELETE FROM reports`).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := s.DeleteExpiredReports(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
