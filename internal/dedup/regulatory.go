package dedup

import (
	"sort"
	"strings"

	"github.com/sells-group/intel-cli/internal/extract"
	"github.com/sells-group/intel-cli/internal/model"
	"github.com/sells-group/intel-cli/internal/similarity"
)

// unknownBody is what extraction reports when no agency was recognized. It
// matches any body during grouping.
const unknownBody = "regulatory"

// Regulatory groups events that report the same underlying action and
// collapses each group into one canonical record. Events group when their
// regulatory bodies match, their descriptions describe the same story, and
// their years fall within the configured reporting-window tolerance. The
// most reputable source in a group becomes the canonical record; the rest
// become corroborating Sources.
func (d *Deduper) Regulatory(in []model.RegulatoryEvent) []model.RegulatoryEvent {
	if len(in) == 0 {
		return nil
	}

	// Reputable-first so the canonical pick is just "first in group".
	events := make([]model.RegulatoryEvent, len(in))
	copy(events, in)
	sort.SliceStable(events, func(i, j int) bool {
		return d.reputable(events[i].URL) && !d.reputable(events[j].URL)
	})

	var out []model.RegulatoryEvent
	for _, ev := range events {
		merged := false
		for i := range out {
			if d.sameEvent(out[i], ev) {
				mergeInto(&out[i], ev)
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, ev)
		}
	}
	return out
}

// sameEvent applies the three grouping tests.
func (d *Deduper) sameEvent(a, b model.RegulatoryEvent) bool {
	if a.URL == b.URL {
		return true
	}
	if !bodiesMatch(a.RegulatoryBody, b.RegulatoryBody) {
		return false
	}
	if !similarity.TitleSimilar(a.Description, b.Description) {
		return false
	}
	return d.yearsClose(a, b)
}

// bodiesMatch compares agency names case-insensitively; an unrecognized
// body matches anything rather than blocking an otherwise-clear merge.
func bodiesMatch(a, b string) bool {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" || a == unknownBody || b == unknownBody {
		return true
	}
	return a == b
}

// yearsClose reports whether the events' years fall within the tolerance
// window. An event with no discernible year matches any year, so a dated
// agency release still merges with an undated news recap.
func (d *Deduper) yearsClose(a, b model.RegulatoryEvent) bool {
	ya := extract.ExtractYear(a.Date, a.Description)
	yb := extract.ExtractYear(b.Date, b.Description)
	if ya == 0 || yb == 0 {
		return true
	}
	diff := ya - yb
	if diff < 0 {
		diff = -diff
	}
	tol := d.cfg.YearTolerance
	if tol < 0 {
		tol = 0
	}
	return diff <= tol
}

// mergeInto folds a duplicate event into the canonical record: its URL
// joins Sources, and fields the canonical record lacks are filled in.
func mergeInto(canon *model.RegulatoryEvent, dup model.RegulatoryEvent) {
	if dup.URL != canon.URL && !hasSource(canon, dup.URL) {
		canon.Sources = append(canon.Sources, model.EventSource{
			URL:            dup.URL,
			Title:          dup.Description,
			RegulatoryBody: dup.RegulatoryBody,
		})
	}
	for _, s := range dup.Sources {
		if s.URL != canon.URL && !hasSource(canon, s.URL) {
			canon.Sources = append(canon.Sources, s)
		}
	}
	if canon.Amount == "" {
		canon.Amount = dup.Amount
	}
	if canon.Date == "" {
		canon.Date = dup.Date
	}
	if strings.EqualFold(canon.RegulatoryBody, "Regulatory") && !strings.EqualFold(dup.RegulatoryBody, "Regulatory") {
		canon.RegulatoryBody = dup.RegulatoryBody
	}
	if canon.EventType == model.EventOther && dup.EventType != model.EventOther {
		canon.EventType = dup.EventType
	}
}

func hasSource(ev *model.RegulatoryEvent, url string) bool {
	for _, s := range ev.Sources {
		if s.URL == url {
			return true
		}
	}
	return false
}

// reputable reports whether the URL's host is on the reputable-source list.
func (d *Deduper) reputable(url string) bool {
	host := model.HostnameOf(url)
	if host == "" {
		return false
	}
	for _, dom := range d.wl.ReputableSources {
		if host == dom || strings.HasSuffix(host, "."+dom) {
			return true
		}
	}
	return false
}
