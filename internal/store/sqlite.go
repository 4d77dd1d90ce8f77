package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/intel-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	if strings.Contains(dsn, ":memory:") {
		// Every pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS reports (
	id           TEXT PRIMARY KEY,
	company      TEXT NOT NULL,
	cache_key    TEXT NOT NULL,
	report       TEXT NOT NULL,
	generated_at DATETIME NOT NULL,
	expires_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS usage_ledger (
	id             TEXT PRIMARY KEY,
	report_id      TEXT NOT NULL REFERENCES reports(id),
	search_queries INTEGER NOT NULL,
	llm_calls      INTEGER NOT NULL,
	urls_verified  INTEGER NOT NULL,
	total_usd      REAL NOT NULL,
	recorded_at    DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_cache_key ON reports(cache_key);
CREATE INDEX IF NOT EXISTS idx_reports_company ON reports(company);
CREATE INDEX IF NOT EXISTS idx_reports_expires_at ON reports(expires_at);
CREATE INDEX IF NOT EXISTS idx_usage_report_id ON usage_ledger(report_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveReport(ctx context.Context, report *model.Report, ttl time.Duration) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal report")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (id, company, cache_key, report, generated_at, expires_at) VALUES (?, ?, ?, ?, ?, ?)`,
		report.ID, report.Company, CacheKey(report.Company, report.Competitors),
		string(reportJSON), report.GeneratedAt.UTC(), report.GeneratedAt.UTC().Add(ttl),
	)
	return eris.Wrapf(err, "sqlite: insert report %s", report.ID)
}

func (s *SQLiteStore) GetReport(ctx context.Context, id string) (*model.Report, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT report FROM reports WHERE id = ?`, id,
	)
	return scanReport(row, true)
}

func (s *SQLiteStore) GetCachedReport(ctx context.Context, cacheKey string) (*model.Report, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT report FROM reports
		 WHERE cache_key = ? AND expires_at > ?
		 ORDER BY generated_at DESC LIMIT 1`,
		cacheKey, time.Now().UTC(),
	)
	return scanReport(row, false)
}

func (s *SQLiteStore) ListReports(ctx context.Context, filter ReportFilter) ([]ReportMeta, error) {
	query := `SELECT id, company, generated_at FROM reports WHERE 1=1`
	var args []any

	if filter.Company != "" {
		query += ` AND company = ?`
		args = append(args, filter.Company)
	}
	query += ` ORDER BY generated_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list reports")
	}
	defer rows.Close()

	var metas []ReportMeta
	for rows.Next() {
		var m ReportMeta
		if err := rows.Scan(&m.ID, &m.Company, &m.GeneratedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan report meta")
		}
		metas = append(metas, m)
	}
	return metas, eris.Wrap(rows.Err(), "sqlite: list reports iterate")
}

func (s *SQLiteStore) DeleteExpiredReports(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM usage_ledger WHERE report_id IN (SELECT id FROM reports WHERE expires_at <= ?)`,
		now,
	); err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired usage")
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM reports WHERE expires_at <= ?`,
		now,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired reports")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

func (s *SQLiteStore) RecordUsage(ctx context.Context, reportID string, cost model.CostSummary) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage_ledger (id, report_id, search_queries, llm_calls, urls_verified, total_usd, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), reportID,
		cost.SearchQueries, cost.LLMCalls, cost.URLsVerified, cost.TotalUSD,
		time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: record usage for %s", reportID)
}

// scanReport decodes a single-report row. With required set, a missing row
// is an error; otherwise it is a cache miss.
func scanReport(row *sql.Row, required bool) (*model.Report, error) {
	var reportJSON string
	err := row.Scan(&reportJSON)
	if err == sql.ErrNoRows {
		if required {
			return nil, eris.New("report not found")
		}
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan report")
	}

	var r model.Report
	if err := json.Unmarshal([]byte(reportJSON), &r); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal report")
	}
	return &r, nil
}
