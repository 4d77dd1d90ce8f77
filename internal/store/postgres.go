package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/intel-cli/internal/db"
	"github.com/sells-group/intel-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_report":     `INSERT INTO reports (id, company, cache_key, report, generated_at, expires_at) VALUES ($1, $2, $3, $4, $5, $6)`,
	"get_report":        `SELECT report FROM reports WHERE id = $1`,
	"get_cached_report": `SELECT report FROM reports WHERE cache_key = $1 AND expires_at > now() ORDER BY generated_at DESC LIMIT 1`,
	"record_usage":      `INSERT INTO usage_ledger (id, report_id, search_queries, llm_calls, urls_verified, total_usd, recorded_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS reports (
	id           TEXT PRIMARY KEY,
	company      TEXT NOT NULL,
	cache_key    TEXT NOT NULL,
	report       JSONB NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL,
	expires_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS usage_ledger (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	report_id      TEXT NOT NULL REFERENCES reports(id),
	search_queries INTEGER NOT NULL,
	llm_calls      INTEGER NOT NULL,
	urls_verified  INTEGER NOT NULL,
	total_usd      DOUBLE PRECISION NOT NULL,
	recorded_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_reports_cache_key ON reports(cache_key);
CREATE INDEX IF NOT EXISTS idx_reports_company ON reports(company);
CREATE INDEX IF NOT EXISTS idx_reports_expires_at ON reports(expires_at);
CREATE INDEX IF NOT EXISTS idx_usage_report_id ON usage_ledger(report_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveReport(ctx context.Context, report *model.Report, ttl time.Duration) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal report")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO reports (id, company, cache_key, report, generated_at, expires_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		report.ID, report.Company, CacheKey(report.Company, report.Competitors),
		reportJSON, report.GeneratedAt.UTC(), report.GeneratedAt.UTC().Add(ttl),
	)
	return eris.Wrapf(err, "postgres: insert report %s", report.ID)
}

func (s *PostgresStore) GetReport(ctx context.Context, id string) (*model.Report, error) {
	row := s.pool.QueryRow(ctx, `SELECT report FROM reports WHERE id = $1`, id)

	r, err := scanPgReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("report not found: %s", id)
	}
	return r, err
}

func (s *PostgresStore) GetCachedReport(ctx context.Context, cacheKey string) (*model.Report, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT report FROM reports WHERE cache_key = $1 AND expires_at > now() ORDER BY generated_at DESC LIMIT 1`,
		cacheKey,
	)

	r, err := scanPgReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

func (s *PostgresStore) ListReports(ctx context.Context, filter ReportFilter) ([]ReportMeta, error) {
	query := `SELECT id, company, generated_at FROM reports WHERE 1=1`
	var args []any

	if filter.Company != "" {
		args = append(args, filter.Company)
		query += ` AND company = $1`
	}
	query += ` ORDER BY generated_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += placeholder(` LIMIT `, len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += placeholder(` OFFSET `, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list reports")
	}
	defer rows.Close()

	var metas []ReportMeta
	for rows.Next() {
		var m ReportMeta
		if err := rows.Scan(&m.ID, &m.Company, &m.GeneratedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan report meta")
		}
		metas = append(metas, m)
	}
	return metas, eris.Wrap(rows.Err(), "postgres: list reports iterate")
}

func (s *PostgresStore) DeleteExpiredReports(ctx context.Context) (int, error) {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM usage_ledger WHERE report_id IN (SELECT id FROM reports WHERE expires_at <= now())`,
	); err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired usage")
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM reports WHERE expires_at <= now()`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired reports")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) RecordUsage(ctx context.Context, reportID string, cost model.CostSummary) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO usage_ledger (id, report_id, search_queries, llm_calls, urls_verified, total_usd, recorded_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New().String(), reportID,
		cost.SearchQueries, cost.LLMCalls, cost.URLsVerified, cost.TotalUSD,
		time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: record usage for %s", reportID)
}

func scanPgReport(row pgx.Row) (*model.Report, error) {
	var reportJSON []byte
	if err := row.Scan(&reportJSON); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, eris.Wrap(err, "postgres: scan report")
	}

	var r model.Report
	if err := json.Unmarshal(reportJSON, &r); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal report")
	}
	return &r, nil
}

func placeholder(clause string, n int) string {
	return clause + "$" + strconv.Itoa(n)
}
