// Package model defines the entities flowing through the intelligence pipeline.
package model

import (
	"net/url"
	"strings"
)

// Topic identifies one of the fixed search topics issued per analysis.
type Topic string

const (
	TopicNews        Topic = "news"
	TopicCaseStudies Topic = "case_studies"
	TopicLeadership  Topic = "leadership"
	TopicRegulatory  Topic = "regulatory"
	TopicCompetitor  Topic = "competitor"
)

// AllTopics returns the topics issued for a full analysis, in report order.
func AllTopics() []Topic {
	return []Topic{TopicNews, TopicCaseStudies, TopicLeadership, TopicRegulatory, TopicCompetitor}
}

// RawResult is one normalized search hit from one provider.
type RawResult struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Content    string  `json:"content"`
	ProviderID string  `json:"provider_id"`
	Score      float64 `json:"score,omitempty"` // provider relevance, 0-1
}

// Hostname returns the lowercased host of the result URL without a
// leading "www.", or "" if the URL does not parse.
func (r RawResult) Hostname() string {
	return HostnameOf(r.URL)
}

// HostnameOf extracts the normalized hostname from a raw URL.
func HostnameOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// IsAbsoluteHTTP reports whether rawURL is a well-formed absolute
// http(s) URL. RawResults failing this never enter the pipeline.
func IsAbsoluteHTTP(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ValidationOutcome is the result of fetching and inspecting a URL.
// A false Valid always carries a Reason.
type ValidationOutcome struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Invalid builds a failed outcome with the given reason.
func Invalid(reason string) ValidationOutcome {
	return ValidationOutcome{Valid: false, Reason: reason}
}
