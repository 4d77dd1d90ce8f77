// Package extract turns raw search results into candidate records:
// leadership changes, competitor mentions and regulatory events. Candidates
// are not yet validated or deduplicated; that happens downstream.
package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/intel-cli/internal/model"
)

// namePat matches a capitalized two-to-four word personal-name span.
const namePat = `([A-Z][A-Za-z'.-]+(?:\s+[A-Z][A-Za-z'.-]+){1,3})`

// rolePat matches a role span; trimming and vocabulary checks happen later.
const rolePat = `([A-Za-z][A-Za-z0-9 &,/'-]{1,80})`

// candidate is a raw (name, role) extraction before validation.
type candidate struct {
	name       string
	role       string
	changeType model.ChangeType
}

// rule pairs a compiled pattern with an extractor producing a candidate
// from its submatches. Rules are evaluated in order until one yields a
// structurally valid candidate for a given text.
type rule struct {
	name    string
	re      *regexp.Regexp
	extract func(m []string) candidate
}

// changeTypeForVerb maps an extraction verb to a change classification.
func changeTypeForVerb(verb string) model.ChangeType {
	switch strings.ToLower(verb) {
	case "promoted", "elevated":
		return model.ChangePromoted
	default:
		return model.ChangeAppointed
	}
}

// buildRules compiles the ordered rule list. knownTitles feeds the
// title-adjacent family.
func buildRules(knownTitles []string) []rule {
	titleAlt := titleAlternation(knownTitles)

	rules := []rule{
		{
			name: "action_verb",
			re: regexp.MustCompile(
				`\b((?i:named|appointed|promoted|hired|tapped|elevated))\b\s+` + namePat +
					`\s+(?:as|to serve as|to be)\s+` + rolePat),
			extract: func(m []string) candidate {
				return candidate{name: m[2], role: m[3], changeType: changeTypeForVerb(m[1])}
			},
		},
		{
			name: "tense_inverted",
			re: regexp.MustCompile(
				namePat + `\s+(?:has been|was|is)\s+(?i:(named|appointed|promoted|hired))\s+(?:as\s+)?` + rolePat),
			extract: func(m []string) candidate {
				return candidate{name: m[1], role: m[3], changeType: changeTypeForVerb(m[2])}
			},
		},
		{
			name: "departure",
			re: regexp.MustCompile(
				namePat + `\s+(?i:(?:steps down|stepped down|resigns|resigned|departs|is leaving|to leave))\s+as\s+` + rolePat),
			extract: func(m []string) candidate {
				return candidate{name: m[1], role: m[2], changeType: model.ChangeDeparted}
			},
		},
	}

	if titleAlt != "" {
		rules = append(rules,
			rule{
				name: "title_then_name",
				re:   regexp.MustCompile(`\b((?i:` + titleAlt + `))[,:]\s*` + namePat),
				extract: func(m []string) candidate {
					return candidate{name: m[2], role: m[1], changeType: model.ChangeAppointed}
				},
			},
			rule{
				name: "name_then_title",
				re:   regexp.MustCompile(namePat + `[,:]\s*(?i:(` + titleAlt + `))\b`),
				extract: func(m []string) candidate {
					return candidate{name: m[1], role: m[2], changeType: model.ChangeAppointed}
				},
			},
		)
	}

	return rules
}

// titleAlternation builds a regex alternation from the title vocabulary,
// longest entries first so "Chief Executive Officer" wins over "Chief".
func titleAlternation(titles []string) string {
	sorted := make([]string, len(titles))
	copy(sorted, titles)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if len(sorted[j]) > len(sorted[i]) {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}

	quoted := make([]string, 0, len(sorted))
	for _, t := range sorted {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(t))
	}
	return strings.Join(quoted, "|")
}
