package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/intel-cli/internal/model"
)

// LLM is the bounded extraction capability: a fixed system prompt plus a
// per-run user prompt in, text out. The system prompt never varies across
// runs, so implementations can cache it server-side. It constrains the
// model to copy URLs verbatim from the supplied evidence; anything else is
// discarded here before dedup.
type LLM interface {
	Extract(ctx context.Context, system, prompt string) (string, error)
}

var (
	amountRe = regexp.MustCompile(`(?i)\$\s?\d[\d,.]*(?:\s?(?:million|billion|thousand|mn|bn|[mbk]))?\b`)
	yearRe   = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	fenceRe  = regexp.MustCompile("(?s)```(?:json)?(.*?)```")
)

// eventTypeKeywords maps detection keywords to event classifications, in
// priority order.
var eventTypeKeywords = []struct {
	keyword string
	typ     model.EventType
}{
	{"consent order", model.EventConsent},
	{"consent decree", model.EventConsent},
	{"cease and desist", model.EventOrder},
	{"settlement", model.EventSettlement},
	{"settle", model.EventSettlement},
	{"fine", model.EventFine},
	{"fined", model.EventFine},
	{"penalty", model.EventPenalty},
	{"penalties", model.EventPenalty},
	{"enforcement", model.EventEnforcement},
	{"investigation", model.EventInvestigation},
	{"investigating", model.EventInvestigation},
	{"probe", model.EventInvestigation},
	{"order", model.EventOrder},
	{"action", model.EventAction},
}

// regulatorySystemPrompt is identical for every run, which makes it the
// cacheable half of the extraction call.
const regulatorySystemPrompt = `You are a compliance analyst. From the numbered evidence snippets in the user message, extract every distinct regulatory event (fine, penalty, settlement, enforcement action, investigation, consent order) affecting the named company.

Rules:
- Use only facts stated in the evidence. Do not add events you know from elsewhere.
- The "url" field MUST be copied verbatim from the evidence snippet the event came from. Never invent or modify a URL.
- If a field is not stated, omit it.

Return a JSON array only, no prose:
[{"date": "<date or year>", "regulatory_body": "<agency>", "event_type": "<fine|penalty|settlement|enforcement|investigation|consent|order|action|other>", "amount": "<dollar amount>", "description": "<one sentence>", "url": "<verbatim evidence url>"}]`

const regulatoryPrompt = `Company: %s

Evidence:
%s`

// rawEvent mirrors the JSON shape the extraction prompt requests.
type rawEvent struct {
	Date           string `json:"date"`
	RegulatoryBody string `json:"regulatory_body"`
	EventType      string `json:"event_type"`
	Amount         string `json:"amount"`
	Description    string `json:"description"`
	URL            string `json:"url"`
}

// RegulatoryEvents proposes candidate events from the results. When an LLM
// is configured it performs the extraction over the assembled evidence,
// with every returned URL checked against the evidence set; otherwise a
// keyword heuristic runs over each result directly. Either way no URL can
// appear that was not in the input.
func (e *Extractor) RegulatoryEvents(ctx context.Context, llm LLM, company string, results []model.RawResult) []model.RegulatoryEvent {
	evidence := make(map[string]bool, len(results))
	for _, r := range results {
		if model.IsAbsoluteHTTP(r.URL) {
			evidence[r.URL] = true
		}
	}
	if len(evidence) == 0 {
		return nil
	}

	if llm != nil {
		events, err := e.llmRegulatory(ctx, llm, company, results, evidence)
		if err == nil {
			return events
		}
		zap.L().Warn("extract: llm regulatory extraction failed, using heuristic",
			zap.Error(err),
		)
	}

	return e.heuristicRegulatory(company, results)
}

func (e *Extractor) llmRegulatory(ctx context.Context, llm LLM, company string, results []model.RawResult, evidence map[string]bool) ([]model.RegulatoryEvent, error) {
	var b strings.Builder
	n := 0
	for _, r := range results {
		if !evidence[r.URL] {
			continue
		}
		n++
		b.WriteString(formatSnippet(n, r))
	}

	text, err := llm.Extract(ctx, regulatorySystemPrompt, fmt.Sprintf(regulatoryPrompt, company, b.String()))
	if err != nil {
		return nil, err
	}

	var out []model.RegulatoryEvent
	for _, raw := range decodeEventBlocks(text) {
		if raw.URL == "" || !evidence[raw.URL] {
			// Hallucinated or synthesized URL: the grounding contract says
			// these never enter the pipeline.
			zap.L().Debug("extract: discarding ungrounded event url",
				zap.String("url", raw.URL),
			)
			continue
		}
		out = append(out, model.RegulatoryEvent{
			Date:           raw.Date,
			RegulatoryBody: normalizeBody(raw.RegulatoryBody),
			EventType:      normalizeEventType(raw.EventType),
			Amount:         raw.Amount,
			Description:    raw.Description,
			URL:            raw.URL,
		})
	}
	return out, nil
}

// heuristicRegulatory is the LLM-free path: keyword detection per result.
func (e *Extractor) heuristicRegulatory(company string, results []model.RawResult) []model.RegulatoryEvent {
	var out []model.RegulatoryEvent
	companyLower := strings.ToLower(company)

	for _, r := range results {
		if !model.IsAbsoluteHTTP(r.URL) {
			continue
		}
		text := r.Title + " " + r.Content
		lower := strings.ToLower(text)

		if !strings.Contains(lower, companyLower) {
			continue
		}
		typ := detectEventType(lower)
		if typ == "" {
			continue
		}

		ev := model.RegulatoryEvent{
			RegulatoryBody: e.detectBody(text),
			EventType:      typ,
			Description:    firstNonEmpty(r.Title, summarize(r.Content)),
			URL:            r.URL,
		}
		if m := amountRe.FindString(text); m != "" {
			ev.Amount = strings.TrimSpace(m)
		}
		if m := yearRe.FindString(text); m != "" {
			ev.Date = m
		}
		out = append(out, ev)
	}

	return out
}

// detectEventType returns the first keyword classification hit, or "".
// Single-word keywords match on word boundaries so "refined" is not a fine.
func detectEventType(lower string) model.EventType {
	for _, kw := range eventTypeKeywords {
		if strings.Contains(kw.keyword, " ") {
			if strings.Contains(lower, kw.keyword) {
				return kw.typ
			}
		} else if wordMatch(lower, kw.keyword) {
			return kw.typ
		}
	}
	return ""
}

// detectBody finds a known agency name in text, defaulting to "Regulatory"
// when none matches; the dedup pass treats that as unknown.
func (e *Extractor) detectBody(text string) string {
	lower := strings.ToLower(text)
	for _, body := range e.wl.RegulatoryBodies {
		if wordMatch(lower, strings.ToLower(body)) {
			return body
		}
	}
	return "Regulatory"
}

// wordMatch reports whether sub occurs in s on word boundaries.
func wordMatch(s, sub string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], sub)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(sub)
		beforeOK := start == 0 || !isAlnum(s[start-1])
		afterOK := end == len(s) || !isAlnum(s[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// decodeEventBlocks parses the LLM response leniently: fenced or bare JSON,
// and a malformed element skips only that element.
func decodeEventBlocks(text string) []rawEvent {
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil
	}

	var blocks []json.RawMessage
	if err := json.Unmarshal([]byte(text[start:end+1]), &blocks); err != nil {
		zap.L().Debug("extract: unparseable event array", zap.Error(err))
		return nil
	}

	var out []rawEvent
	for _, blk := range blocks {
		var ev rawEvent
		if err := json.Unmarshal(blk, &ev); err != nil {
			zap.L().Debug("extract: skipping malformed event block", zap.Error(err))
			continue
		}
		out = append(out, ev)
	}
	return out
}

// normalizeEventType maps free-form LLM output onto the enum.
func normalizeEventType(s string) model.EventType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fine":
		return model.EventFine
	case "penalty":
		return model.EventPenalty
	case "settlement":
		return model.EventSettlement
	case "enforcement":
		return model.EventEnforcement
	case "investigation":
		return model.EventInvestigation
	case "consent":
		return model.EventConsent
	case "order":
		return model.EventOrder
	case "action":
		return model.EventAction
	default:
		return model.EventOther
	}
}

// normalizeBody trims and defaults an agency name.
func normalizeBody(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "Regulatory"
	}
	return s
}

// ExtractYear pulls the first plausible year out of a date or description
// string. Returns 0 when none is found.
func ExtractYear(s ...string) int {
	for _, str := range s {
		if m := yearRe.FindString(str); m != "" {
			year := 0
			for _, c := range m {
				year = year*10 + int(c-'0')
			}
			return year
		}
	}
	return 0
}

func formatSnippet(n int, r model.RawResult) string {
	return fmt.Sprintf("--- Snippet %d ---\nTitle: %s\nURL: %s\nContent: %s\n\n",
		n, r.Title, r.URL, r.Content)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
