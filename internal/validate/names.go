// Package validate filters extracted (name, role) candidates using pure
// heuristics. There is no ground-truth database: these checks are the only
// line of defense between regex extraction and the report.
package validate

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sells-group/intel-cli/internal/config"
)

const (
	minNameLen = 5
	maxNameLen = 40
	minPartLen = 2
)

// Validator applies name and role heuristics driven by injected wordlists.
type Validator struct {
	wl *config.Wordlists
}

// New creates a Validator over the given wordlists.
func New(wl *config.Wordlists) *Validator {
	return &Validator{wl: wl}
}

// IsValidName reports whether name plausibly names a real person.
func (v *Validator) IsValidName(name string) bool {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < minNameLen || utf8.RuneCountInString(name) > maxNameLen {
		return false
	}

	lower := strings.ToLower(name)

	for _, filler := range v.wl.FillerNames {
		if lower == strings.ToLower(filler) {
			return false
		}
	}

	// Matching or containing a known non-name phrase disqualifies the whole
	// candidate ("Senior Vice President" is a superset of "Vice President").
	for _, phrase := range v.wl.NonNamePhrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return false
		}
	}

	parts := strings.Fields(name)
	if len(parts) < 2 {
		return false
	}

	for _, part := range parts {
		if utf8.RuneCountInString(part) < minPartLen {
			return false
		}
		first, _ := utf8.DecodeRuneInString(part)
		if !unicode.IsUpper(first) {
			return false
		}
		if v.isBlockedPart(part) {
			return false
		}
	}

	return true
}

// isBlockedPart reports whether a single name part is a company indicator
// or a title/action word.
func (v *Validator) isBlockedPart(part string) bool {
	trimmed := strings.Trim(part, ".,;:")
	for _, ind := range v.wl.CompanyIndicators {
		if strings.EqualFold(trimmed, ind) {
			return true
		}
	}
	for _, tw := range v.wl.TitleWords {
		if strings.EqualFold(trimmed, tw) {
			return true
		}
	}
	return false
}

// IsPoliticalRole reports whether role names a government or political
// office rather than a corporate one. A bare "President" is ambiguous with
// political office and rejected; qualified forms ("Co-President",
// "President of Acme") pass.
func (v *Validator) IsPoliticalRole(role string) bool {
	trimmed := strings.TrimSpace(role)
	lower := strings.ToLower(trimmed)

	if lower == "president" || lower == "the president" {
		return true
	}

	for _, pr := range v.wl.PoliticalRoles {
		if strings.Contains(lower, strings.ToLower(pr)) {
			return true
		}
	}

	return false
}

// HasKnownTitle reports whether text contains any entry of the role
// vocabulary. Used by extraction to confirm a role span and by the
// proximity fallback.
func (v *Validator) HasKnownTitle(text string) bool {
	lower := strings.ToLower(text)
	for _, t := range v.wl.KnownTitles {
		if containsWord(lower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// containsWord reports whether sub occurs in s on word boundaries, so that
// "CIO" does not match inside "precious".
func containsWord(s, sub string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], sub)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(sub)
		beforeOK := start == 0 || !isWordRune(rune(s[start-1]))
		afterOK := end == len(s) || !isWordRune(rune(s[end]))
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// IsReputableSource reports whether host (or a parent domain of it) is on
// the reputable-source allow-list.
func (v *Validator) IsReputableSource(host string) bool {
	host = strings.ToLower(strings.TrimPrefix(host, "www."))
	for _, rs := range v.wl.ReputableSources {
		rs = strings.ToLower(rs)
		if host == rs || strings.HasSuffix(host, "."+rs) {
			return true
		}
	}
	return false
}
