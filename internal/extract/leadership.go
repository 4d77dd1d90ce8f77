package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sells-group/intel-cli/internal/config"
	"github.com/sells-group/intel-cli/internal/model"
	"github.com/sells-group/intel-cli/internal/validate"
)

// maxRoleLen is the length above which a role with no recognized title
// keyword is assumed to be extraction drift into unrelated prose.
const maxRoleLen = 40

// proximityWindow is how close (in characters) a known title must occur to
// a name span for the fallback heuristic to pair them.
const proximityWindow = 100

var (
	nameSpanRe = regexp.MustCompile(namePat)
	dateRe     = regexp.MustCompile(`(?i)effective\s+((?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}|(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4})`)
)

// Extractor generates candidate leadership changes from raw results.
type Extractor struct {
	v     *validate.Validator
	wl    *config.Wordlists
	rules []rule
}

// NewExtractor builds an Extractor over the given wordlists.
func NewExtractor(v *validate.Validator, wl *config.Wordlists) *Extractor {
	return &Extractor{
		v:     v,
		wl:    wl,
		rules: buildRules(wl.KnownTitles),
	}
}

// LeadershipChanges proposes candidate records from the results. Candidates
// are validated against the name/role heuristics but not yet deduplicated.
// Output is ordered reputable-source-first so the dedup pass keeps the best
// source for each story.
func (e *Extractor) LeadershipChanges(company string, results []model.RawResult) []model.LeadershipChange {
	var out []model.LeadershipChange

	for _, r := range results {
		if !model.IsAbsoluteHTTP(r.URL) {
			continue
		}
		text := strings.TrimSpace(r.Title + " " + r.Content)
		if text == "" {
			continue
		}

		cands := e.extractFrom(text)
		if len(cands) == 0 {
			cands = e.proximityFallback(text)
		}

		for _, c := range cands {
			change, ok := e.finish(c, r, text)
			if !ok {
				continue
			}
			out = append(out, change)
		}
	}

	// Reputable sources first; stable so provider order breaks ties.
	sort.SliceStable(out, func(i, j int) bool {
		ri := e.v.IsReputableSource(out[i].Source)
		rj := e.v.IsReputableSource(out[j].Source)
		return ri && !rj
	})

	zap.L().Debug("extract: leadership candidates",
		zap.String("company", company),
		zap.Int("results", len(results)),
		zap.Int("candidates", len(out)),
	)

	return out
}

// extractFrom runs the rule list over text, collecting every structurally
// valid candidate the first matching rule family yields.
func (e *Extractor) extractFrom(text string) []candidate {
	for _, rl := range e.rules {
		matches := rl.re.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			continue
		}
		var cands []candidate
		for _, m := range matches {
			c := rl.extract(m)
			c.role = e.trimRole(c.role)
			if c.role == "" {
				continue
			}
			cands = append(cands, c)
		}
		if len(cands) > 0 {
			return cands
		}
	}
	return nil
}

// proximityFallback pairs capitalized name spans with a known title
// occurring within proximityWindow characters of the span.
func (e *Extractor) proximityFallback(text string) []candidate {
	var cands []candidate

	for _, loc := range nameSpanRe.FindAllStringIndex(text, -1) {
		name := text[loc[0]:loc[1]]

		start := loc[0] - proximityWindow
		if start < 0 {
			start = 0
		}
		end := loc[1] + proximityWindow
		if end > len(text) {
			end = len(text)
		}
		window := text[start:end]

		title := e.nearestTitle(window)
		if title == "" {
			continue
		}
		cands = append(cands, candidate{
			name:       name,
			role:       title,
			changeType: model.ChangeAppointed,
		})
	}

	return cands
}

// nearestTitle returns the longest known title present in window, or "".
func (e *Extractor) nearestTitle(window string) string {
	lower := strings.ToLower(window)
	best := ""
	for _, t := range e.wl.KnownTitles {
		if strings.Contains(lower, strings.ToLower(t)) && len(t) > len(best) {
			best = t
		}
	}
	return best
}

// trimRole cuts role text at the first stop-word, strips punctuation, and
// rejects spans that drifted into unrelated prose.
func (e *Extractor) trimRole(role string) string {
	role = strings.TrimSpace(role)

	lower := strings.ToLower(role)
	cut := len(role)
	for _, sw := range e.wl.RoleStopWords {
		if idx := strings.Index(lower, strings.ToLower(sw)); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	role = strings.TrimSpace(strings.Trim(role[:cut], " .,;:"))

	if role == "" {
		return ""
	}
	if !e.v.HasKnownTitle(role) && utf8.RuneCountInString(role) > maxRoleLen {
		return ""
	}
	return role
}

// finish validates a candidate and fills in provenance fields.
func (e *Extractor) finish(c candidate, r model.RawResult, text string) (model.LeadershipChange, bool) {
	name := e.shrinkName(c.name)
	if name == "" {
		zap.L().Debug("extract: name rejected", zap.String("name", c.name))
		return model.LeadershipChange{}, false
	}
	if e.v.IsPoliticalRole(c.role) {
		zap.L().Debug("extract: political role rejected",
			zap.String("name", name),
			zap.String("role", c.role),
		)
		return model.LeadershipChange{}, false
	}

	change := model.LeadershipChange{
		Name:       name,
		Role:       c.role,
		ChangeType: c.changeType,
		Title:      r.Title,
		URL:        r.URL,
		Source:     r.Hostname(),
	}
	if m := dateRe.FindStringSubmatch(text); m != nil {
		change.Date = m[1]
	}
	if change.ChangeType == model.ChangeAppointed && expandedRoleHint(text) {
		change.ChangeType = model.ChangeExpandedRole
	}
	return change, true
}

// shrinkName drops leading tokens from a greedy name span until the
// remainder passes validation ("Acme Corp Jane Carter" → "Jane Carter").
// Returns "" when no two-token suffix validates.
func (e *Extractor) shrinkName(name string) string {
	parts := strings.Fields(strings.TrimSpace(name))
	for len(parts) >= 2 {
		joined := strings.Join(parts, " ")
		if e.v.IsValidName(joined) {
			return joined
		}
		parts = parts[1:]
	}
	return ""
}

// expandedRoleHint detects phrasing that signals an expanded rather than
// new appointment.
func expandedRoleHint(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "expanded role") ||
		strings.Contains(lower, "additional responsibilities") ||
		strings.Contains(lower, "in addition to his current role") ||
		strings.Contains(lower, "in addition to her current role")
}
