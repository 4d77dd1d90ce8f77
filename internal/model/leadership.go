package model

// ChangeType classifies a leadership change.
type ChangeType string

const (
	ChangeAppointed    ChangeType = "appointed"
	ChangePromoted     ChangeType = "promoted"
	ChangeDeparted     ChangeType = "departed"
	ChangeExpandedRole ChangeType = "expanded_role"
)

// LeadershipChange records a person moving into, out of, or within a role
// at the subject company. URL always points at one of the RawResults the
// record was extracted from.
type LeadershipChange struct {
	Name       string     `json:"name"`
	Role       string     `json:"role"`
	ChangeType ChangeType `json:"change_type"`
	Date       string     `json:"date,omitempty"`
	Title      string     `json:"title"` // headline of the source article
	URL        string     `json:"url"`
	Source     string     `json:"source"` // hostname of URL
}
