// Package score assigns 0-100 confidence values to findings. Confidence is
// advisory: low-confidence findings are flagged unverified, never dropped.
package score

import (
	"strings"

	"github.com/sells-group/intel-cli/internal/config"
	"github.com/sells-group/intel-cli/internal/model"
)

// defaultBase is used when the search provider supplied no relevance score.
const defaultBase = 50

// Scorer computes confidence from provider relevance, verification outcome
// and source reputation.
type Scorer struct {
	cfg config.ScoreConfig
	wl  *config.Wordlists
}

// New creates a Scorer.
func New(cfg config.ScoreConfig, wl *config.Wordlists) *Scorer {
	return &Scorer{cfg: cfg, wl: wl}
}

// Mention scores a competitor mention. The provider relevance forms the
// base; verification adds, an unclassifiable mention type and an
// off-allowlist source each subtract. Clamped to [0, 100].
func (s *Scorer) Mention(r model.RawResult, typ model.MentionType, verified bool) int {
	conf := defaultBase
	if r.Score > 0 {
		conf = int(r.Score * 100)
	}

	if verified {
		conf += s.cfg.VerifiedBonus
	}
	if typ == model.MentionOther {
		conf -= s.cfg.UntypedPenalty
	}
	if !s.reputable(r.URL) {
		conf -= s.cfg.NonReputablePenalty
	}

	return clamp(conf)
}

// Unverified reports whether a confidence value falls below the threshold
// at which a finding must be flagged for the reader.
func (s *Scorer) Unverified(conf int) bool {
	threshold := s.cfg.UnverifiedThreshold
	if threshold <= 0 {
		threshold = 75
	}
	return conf < threshold
}

func (s *Scorer) reputable(url string) bool {
	host := model.HostnameOf(url)
	if host == "" {
		return false
	}
	for _, d := range s.wl.ReputableSources {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
