package model

// MentionType classifies the business context in which a competitor
// co-occurs with the subject company.
type MentionType string

const (
	MentionCustomer     MentionType = "customer"
	MentionPartner      MentionType = "partner"
	MentionComparison   MentionType = "comparison"
	MentionCaseStudy    MentionType = "case_study"
	MentionPressRelease MentionType = "press_release"
	MentionIntegration  MentionType = "integration"
	MentionOther        MentionType = "other"
)

// CompetitorMention is evidence that the subject company and a named
// competitor co-occur in a business context. Unverified mentions are kept
// and flagged rather than dropped.
type CompetitorMention struct {
	CompetitorName string      `json:"competitor_name"`
	MentionType    MentionType `json:"mention_type"`
	Title          string      `json:"title"`
	URL            string      `json:"url"`
	Summary        string      `json:"summary"`
	Confidence     int         `json:"confidence"` // 0-100
	Unverified     bool        `json:"unverified"` // confidence below threshold
}
