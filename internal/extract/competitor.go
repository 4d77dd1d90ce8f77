package extract

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/sells-group/intel-cli/internal/model"
)

// summaryLen bounds the snippet copied into a mention summary.
const summaryLen = 240

// CompetitorMentions proposes candidate mentions: results where the subject
// company and the competitor co-occur. Confidence scoring and URL
// verification happen downstream; candidates here carry only the inferred
// mention type and provenance.
func (e *Extractor) CompetitorMentions(company, competitor string, results []model.RawResult) []model.CompetitorMention {
	var out []model.CompetitorMention

	companyLower := strings.ToLower(company)
	competitorLower := strings.ToLower(competitor)

	for _, r := range results {
		if !model.IsAbsoluteHTTP(r.URL) {
			continue
		}
		text := strings.ToLower(r.Title + " " + r.Content)
		if !strings.Contains(text, companyLower) || !strings.Contains(text, competitorLower) {
			continue
		}

		out = append(out, model.CompetitorMention{
			CompetitorName: competitor,
			MentionType:    InferMentionType(r),
			Title:          r.Title,
			URL:            r.URL,
			Summary:        summarize(r.Content),
		})
	}

	return out
}

// InferMentionType classifies the business context of a result from URL
// path and text cues. Defaults to MentionOther, which the scorer penalizes.
func InferMentionType(r model.RawResult) model.MentionType {
	path := ""
	if u, err := url.Parse(r.URL); err == nil {
		path = strings.ToLower(u.Path)
	}
	text := strings.ToLower(r.Title + " " + r.Content)

	switch {
	case strings.Contains(path, "/case-stud") || strings.Contains(text, "case study"):
		return model.MentionCaseStudy
	case strings.Contains(path, "/customer") || strings.Contains(text, "customer story") ||
		strings.Contains(text, "their customers include"):
		return model.MentionCustomer
	case strings.Contains(path, "/partner") || strings.Contains(text, "partnership") ||
		strings.Contains(text, "partners with"):
		return model.MentionPartner
	case strings.Contains(text, " vs ") || strings.Contains(text, " versus ") ||
		strings.Contains(text, "compared to") || strings.Contains(text, "comparison") ||
		strings.Contains(text, "alternative to"):
		return model.MentionComparison
	case strings.Contains(path, "/press") || strings.Contains(text, "press release") ||
		isWireHost(r.Hostname()):
		return model.MentionPressRelease
	case strings.Contains(text, "integration") || strings.Contains(text, "integrates with"):
		return model.MentionIntegration
	default:
		return model.MentionOther
	}
}

// isWireHost recognizes the common press-wire hosts.
func isWireHost(host string) bool {
	switch host {
	case "prnewswire.com", "businesswire.com", "globenewswire.com", "newswire.com":
		return true
	}
	return false
}

func summarize(content string) string {
	content = strings.TrimSpace(content)
	if len(content) <= summaryLen {
		return content
	}
	// Back up to a rune start so the cut never splits a multi-byte character.
	end := summaryLen
	for end > 0 && !utf8.RuneStart(content[end]) {
		end--
	}
	cut := content[:end]
	if idx := strings.LastIndex(cut, " "); idx > summaryLen/2 {
		cut = cut[:idx]
	}
	return cut + "…"
}
