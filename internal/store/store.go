// Package store persists generated reports and the usage ledger. Reports
// double as a cache: a fresh report for the same company and competitor set
// is served instead of re-running the pipeline.
package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/intel-cli/internal/config"
	"github.com/sells-group/intel-cli/internal/model"
)

// ReportFilter specifies criteria for listing reports.
type ReportFilter struct {
	Company string `json:"company,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}

// ReportMeta is the listing view of a stored report.
type ReportMeta struct {
	ID          string    `json:"id"`
	Company     string    `json:"company"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Store defines the persistence interface for the analysis pipeline.
type Store interface {
	SaveReport(ctx context.Context, report *model.Report, ttl time.Duration) error
	GetReport(ctx context.Context, id string) (*model.Report, error)

	// GetCachedReport returns the freshest unexpired report for a cache
	// key, or nil when the pipeline has to run.
	GetCachedReport(ctx context.Context, cacheKey string) (*model.Report, error)

	ListReports(ctx context.Context, filter ReportFilter) ([]ReportMeta, error)
	DeleteExpiredReports(ctx context.Context) (int, error)

	RecordUsage(ctx context.Context, reportID string, cost model.CostSummary) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// CacheKey derives the cache identity of an analysis request. Competitor
// order does not matter.
func CacheKey(company string, competitors []string) string {
	parts := make([]string, 0, len(competitors)+1)
	parts = append(parts, strings.ToLower(strings.TrimSpace(company)))
	comps := make([]string, len(competitors))
	for i, c := range competitors {
		comps[i] = strings.ToLower(strings.TrimSpace(c))
	}
	sort.Strings(comps)
	return strings.Join(append(parts, comps...), "|")
}

// Open constructs the configured Store backend.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return NewSQLite(cfg.Path)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
