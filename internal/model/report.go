package model

import "time"

// SectionState describes whether a report section produced results.
type SectionState string

const (
	SectionOK        SectionState = "ok"
	SectionNoResults SectionState = "no_results"
)

// CostSummary aggregates provider spend for one analysis run.
type CostSummary struct {
	SearchQueries int     `json:"search_queries"`
	LLMCalls      int     `json:"llm_calls"`
	URLsVerified  int     `json:"urls_verified"`
	TotalUSD      float64 `json:"total_usd"`
}

// Report is the assembled output of one analysis run. Everything in it is
// source-attributed: every URL traces back to a RawResult fetched during
// this run.
type Report struct {
	ID          string    `json:"id"`
	Company     string    `json:"company"`
	Competitors []string  `json:"competitors,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	Leadership        []LeadershipChange  `json:"leadership"`
	LeadershipState   SectionState        `json:"leadership_state"`
	CompetitorMention []CompetitorMention `json:"competitor_mentions"`
	CompetitorState   SectionState        `json:"competitor_state"`
	Regulatory        []RegulatoryEvent   `json:"regulatory_events"`
	RegulatoryState   SectionState        `json:"regulatory_state"`

	// Warnings are non-fatal: search degradation, provider failures.
	Warnings []string    `json:"warnings,omitempty"`
	Cost     CostSummary `json:"cost"`
}
