// Package dedup collapses duplicate findings after extraction and
// verification. Inputs arrive reputable-source-first, so keeping the first
// member of each duplicate group keeps the best-sourced record.
package dedup

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/intel-cli/internal/config"
	"github.com/sells-group/intel-cli/internal/model"
	"github.com/sells-group/intel-cli/internal/similarity"
)

// Deduper applies the duplicate-collapsing rules for each finding kind.
type Deduper struct {
	cfg config.DedupConfig
	wl  *config.Wordlists
}

// New creates a Deduper.
func New(cfg config.DedupConfig, wl *config.Wordlists) *Deduper {
	return &Deduper{cfg: cfg, wl: wl}
}

// Leadership collapses duplicate leadership changes and caps the output.
// Two records are duplicates when they cite the same URL, when their source
// titles describe the same story, or when they report the same person
// undergoing the same kind of change. The first record of each group wins.
func (d *Deduper) Leadership(in []model.LeadershipChange) []model.LeadershipChange {
	maxOut := d.cfg.MaxLeadership
	if maxOut <= 0 {
		maxOut = 6
	}

	seenURL := make(map[string]bool)
	seenPerson := make(map[string]bool)
	var kept []model.LeadershipChange

	for _, c := range in {
		if seenURL[c.URL] {
			continue
		}
		key := personKey(c)
		if seenPerson[key] {
			continue
		}
		dup := false
		for _, k := range kept {
			if similarity.TitleSimilar(c.Title, k.Title) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}

		seenURL[c.URL] = true
		seenPerson[key] = true
		kept = append(kept, c)
	}

	if len(kept) > maxOut {
		zap.L().Debug("dedup: leadership capped",
			zap.Int("kept", maxOut),
			zap.Int("dropped", len(kept)-maxOut),
		)
		kept = kept[:maxOut]
	}
	return kept
}

// personKey identifies a person-plus-change so the same appointment reported
// under two unrelated headlines still collapses.
func personKey(c model.LeadershipChange) string {
	return similarity.Normalize(c.Name) + "|" + strings.ToLower(string(c.ChangeType))
}
