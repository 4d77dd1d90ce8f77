package model

// EventType classifies a regulatory event.
type EventType string

const (
	EventFine          EventType = "fine"
	EventPenalty       EventType = "penalty"
	EventSettlement    EventType = "settlement"
	EventEnforcement   EventType = "enforcement"
	EventInvestigation EventType = "investigation"
	EventConsent       EventType = "consent"
	EventOrder         EventType = "order"
	EventAction        EventType = "action"
	EventOther         EventType = "other"
)

// EventSource is a secondary source corroborating a regulatory event.
type EventSource struct {
	URL            string `json:"url"`
	Title          string `json:"title,omitempty"`
	RegulatoryBody string `json:"regulatory_body,omitempty"`
}

// RegulatoryEvent is a fine, penalty, settlement, enforcement action or
// investigation affecting the subject company. After deduplication the
// canonical record's URL comes from the most reputable contributing
// source; Sources holds the remaining corroborating reports.
type RegulatoryEvent struct {
	Date           string        `json:"date,omitempty"`
	RegulatoryBody string        `json:"regulatory_body"`
	EventType      EventType     `json:"event_type"`
	Amount         string        `json:"amount,omitempty"`
	Description    string        `json:"description"`
	URL            string        `json:"url"`
	Sources        []EventSource `json:"sources,omitempty"`
}
