// Package pipeline orchestrates one analysis run: gather evidence, extract
// findings, verify every cited URL, deduplicate, score and assemble the
// report. The grounding invariant holds throughout: no URL appears in a
// report that was not fetched as evidence during the run.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/intel-cli/internal/config"
	"github.com/sells-group/intel-cli/internal/cost"
	"github.com/sells-group/intel-cli/internal/dedup"
	"github.com/sells-group/intel-cli/internal/extract"
	"github.com/sells-group/intel-cli/internal/model"
	"github.com/sells-group/intel-cli/internal/score"
	"github.com/sells-group/intel-cli/internal/search"
	"github.com/sells-group/intel-cli/internal/store"
	"github.com/sells-group/intel-cli/internal/validate"
	"github.com/sells-group/intel-cli/internal/verify"
	"github.com/sells-group/intel-cli/pkg/anthropic"
)

// Request describes one analysis run.
type Request struct {
	Company     string
	Competitors []string

	// Force skips the report cache.
	Force bool
}

// Pipeline wires the analysis stages together.
type Pipeline struct {
	cfg  *config.Config
	wl   *config.Wordlists
	st   store.Store
	agg  *search.Aggregator
	ext  *extract.Extractor
	ver  *verify.Verifier
	ded  *dedup.Deduper
	sc   *score.Scorer
	ai   anthropic.Client
	calc *cost.Calculator
}

// New creates a Pipeline. ai may be nil; regulatory extraction then runs on
// the keyword heuristic alone.
func New(cfg *config.Config, wl *config.Wordlists, st store.Store, agg *search.Aggregator, ai anthropic.Client) *Pipeline {
	v := validate.New(wl)
	return &Pipeline{
		cfg:  cfg,
		wl:   wl,
		st:   st,
		agg:  agg,
		ext:  extract.NewExtractor(v, wl),
		ver:  verify.New(cfg.Verify, wl),
		ded:  dedup.New(cfg.Dedup, wl),
		sc:   score.New(cfg.Score, wl),
		ai:   ai,
		calc: cost.NewCalculator(cost.DefaultRates()),
	}
}

// ExtractLeadershipChanges runs the leadership slice over the given
// evidence: extraction, URL verification, deduplication. Records whose URL
// fails verification never appear in the output.
func (p *Pipeline) ExtractLeadershipChanges(ctx context.Context, company string, results []model.RawResult) []model.LeadershipChange {
	return p.leadership(ctx, company, results, cost.NewLedger(p.calc))
}

// ExtractCompetitorMentions runs the competitor slice over the given
// evidence: extraction, mention verification, confidence scoring. Mentions
// whose URL fails verification never appear in the output; kept mentions
// below the confidence threshold carry the Unverified flag.
func (p *Pipeline) ExtractCompetitorMentions(ctx context.Context, company string, competitors []string, results []model.RawResult) []model.CompetitorMention {
	return p.competitorMentions(ctx, company, competitors, results, cost.NewLedger(p.calc))
}

// ExtractRegulatoryEvents runs the regulatory slice over the given
// evidence: extraction (LLM-backed when configured), URL verification,
// event grouping.
func (p *Pipeline) ExtractRegulatoryEvents(ctx context.Context, company string, results []model.RawResult) []model.RegulatoryEvent {
	return p.regulatory(ctx, company, results, cost.NewLedger(p.calc))
}

// Analyze runs the full pipeline for one company. A fresh cached report for
// the same company and competitor set short-circuits the run unless the
// request forces a rebuild.
func (p *Pipeline) Analyze(ctx context.Context, req Request) (*model.Report, error) {
	log := zap.L().With(zap.String("company", req.Company))

	cacheKey := store.CacheKey(req.Company, req.Competitors)
	if !req.Force && p.st != nil {
		cached, err := p.st.GetCachedReport(ctx, cacheKey)
		if err != nil {
			log.Warn("pipeline: cache lookup failed", zap.Error(err))
		} else if cached != nil {
			log.Info("pipeline: serving cached report", zap.String("report_id", cached.ID))
			return cached, nil
		}
	}

	start := time.Now()
	log.Info("pipeline: starting analysis", zap.Strings("competitors", req.Competitors))

	ledger := cost.NewLedger(p.calc)
	report := &model.Report{
		ID:          uuid.New().String(),
		Company:     req.Company,
		Competitors: req.Competitors,
		GeneratedAt: time.Now().UTC(),
	}

	res := p.agg.Gather(ctx, req.Company, req.Competitors)
	for provider, n := range res.ProviderCalls {
		for range n {
			ledger.AddSearch(provider)
		}
	}
	report.Warnings = append(report.Warnings, res.Warnings...)

	if res.AllFailed {
		report.Warnings = append(report.Warnings, "web search unavailable: all providers failed")
		report.LeadershipState = model.SectionNoResults
		report.CompetitorState = model.SectionNoResults
		report.RegulatoryState = model.SectionNoResults
		report.Cost = ledger.Summary()
		p.persist(ctx, report, log)
		return report, nil
	}

	leadershipEvidence := append([]model.RawResult{}, res.ByTopic[model.TopicLeadership]...)
	leadershipEvidence = append(leadershipEvidence, res.ByTopic[model.TopicNews]...)
	competitorEvidence := append([]model.RawResult{}, res.ByTopic[model.TopicCompetitor]...)
	competitorEvidence = append(competitorEvidence, res.ByTopic[model.TopicCaseStudies]...)

	report.Leadership = p.leadership(ctx, req.Company, leadershipEvidence, ledger)
	report.LeadershipState = sectionState(len(report.Leadership))

	report.CompetitorMention = p.competitorMentions(ctx, req.Company, req.Competitors, competitorEvidence, ledger)
	report.CompetitorState = sectionState(len(report.CompetitorMention))

	report.Regulatory = p.regulatory(ctx, req.Company, res.ByTopic[model.TopicRegulatory], ledger)
	report.RegulatoryState = sectionState(len(report.Regulatory))

	report.Cost = ledger.Summary()
	p.persist(ctx, report, log)

	log.Info("pipeline: analysis complete",
		zap.String("report_id", report.ID),
		zap.Int("leadership", len(report.Leadership)),
		zap.Int("competitor_mentions", len(report.CompetitorMention)),
		zap.Int("regulatory_events", len(report.Regulatory)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}

// leadership extracts, verifies and deduplicates leadership changes.
func (p *Pipeline) leadership(ctx context.Context, company string, results []model.RawResult, ledger *cost.Ledger) []model.LeadershipChange {
	cands := p.ext.LeadershipChanges(company, results)
	if len(cands) == 0 {
		return nil
	}

	// One verification per distinct URL; a dead or hollow page drops every
	// record citing it.
	verdicts := p.verifyURLs(ctx, leadershipChecks(cands), ledger)

	var out []model.LeadershipChange
	for _, c := range cands {
		if verdicts[c.URL] {
			out = append(out, c)
		} else {
			zap.L().Debug("pipeline: leadership record dropped, url failed verification",
				zap.String("name", c.Name),
				zap.String("url", c.URL),
			)
		}
	}
	return p.ded.Leadership(out)
}

// leadershipChecks maps each candidate URL to the page content that must be
// present: the person's surname. Multiple candidates for one URL merge
// their requirements.
func leadershipChecks(cands []model.LeadershipChange) map[string][]string {
	checks := make(map[string][]string)
	for _, c := range cands {
		parts := strings.Fields(c.Name)
		if len(parts) == 0 {
			continue
		}
		surname := parts[len(parts)-1]
		if !contains(checks[c.URL], surname) {
			checks[c.URL] = append(checks[c.URL], surname)
		}
	}
	return checks
}

// competitorMentions extracts, verifies and scores competitor mentions.
// Failed verification silently rejects a mention; only verified mentions
// reach the scorer, where sub-threshold confidence sets the Unverified flag.
func (p *Pipeline) competitorMentions(ctx context.Context, company string, competitors []string, results []model.RawResult, ledger *cost.Ledger) []model.CompetitorMention {
	byURL := make(map[string]model.RawResult, len(results))
	for _, r := range results {
		if _, ok := byURL[r.URL]; !ok {
			byURL[r.URL] = r
		}
	}

	var mentions []model.CompetitorMention
	seen := make(map[string]bool)
	for _, comp := range competitors {
		for _, m := range p.ext.CompetitorMentions(company, comp, results) {
			key := comp + "|" + m.URL
			if seen[key] {
				continue
			}
			seen[key] = true
			mentions = append(mentions, m)
		}
	}
	if len(mentions) == 0 {
		return nil
	}

	verified := p.verifyMentions(ctx, company, mentions, ledger)

	var out []model.CompetitorMention
	for i := range mentions {
		if !verified[i] {
			zap.L().Debug("pipeline: competitor mention dropped, url failed verification",
				zap.String("competitor", mentions[i].CompetitorName),
				zap.String("url", mentions[i].URL),
			)
			continue
		}
		conf := p.sc.Mention(byURL[mentions[i].URL], mentions[i].MentionType, true)
		mentions[i].Confidence = conf
		mentions[i].Unverified = p.sc.Unverified(conf)
		out = append(out, mentions[i])
	}
	return out
}

// regulatory extracts, verifies and groups regulatory events.
func (p *Pipeline) regulatory(ctx context.Context, company string, results []model.RawResult, ledger *cost.Ledger) []model.RegulatoryEvent {
	var llm extract.LLM
	if p.ai != nil {
		llm = &claudeLLM{client: p.ai, model: p.cfg.Anthropic.Model, ledger: ledger}
	}
	events := p.ext.RegulatoryEvents(ctx, llm, company, results)
	if len(events) == 0 {
		return nil
	}

	checks := make(map[string][]string, len(events))
	for _, ev := range events {
		if _, ok := checks[ev.URL]; !ok {
			checks[ev.URL] = []string{company}
		}
	}
	verdicts := p.verifyURLs(ctx, checks, ledger)

	var out []model.RegulatoryEvent
	for _, ev := range events {
		if verdicts[ev.URL] {
			out = append(out, ev)
		} else {
			zap.L().Debug("pipeline: regulatory event dropped, url failed verification",
				zap.String("url", ev.URL),
			)
		}
	}
	return p.ded.Regulatory(out)
}

// verifyURLs checks each URL concurrently, one attempt each. Returns a
// URL-to-verdict map.
func (p *Pipeline) verifyURLs(ctx context.Context, checks map[string][]string, ledger *cost.Ledger) map[string]bool {
	verdicts := make(map[string]bool, len(checks))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.verifyLimit())
	for url, mustContain := range checks {
		g.Go(func() error {
			outcome := p.ver.Verify(gctx, url, mustContain)
			ledger.AddVerification()
			mu.Lock()
			verdicts[url] = outcome.Valid
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return verdicts
}

// verifyMentions runs the competitor-specific verification for each
// mention. Returns per-mention verdicts, index-aligned with the input.
func (p *Pipeline) verifyMentions(ctx context.Context, company string, mentions []model.CompetitorMention, ledger *cost.Ledger) []bool {
	verdicts := make([]bool, len(mentions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.verifyLimit())
	for i, m := range mentions {
		g.Go(func() error {
			outcome := p.ver.VerifyCompetitorMention(gctx, m.URL, company, m.CompetitorName)
			ledger.AddVerification()
			verdicts[i] = outcome.Valid
			return nil
		})
	}
	_ = g.Wait()
	return verdicts
}

func (p *Pipeline) verifyLimit() int {
	if p.cfg.Verify.MaxConcurrent > 0 {
		return p.cfg.Verify.MaxConcurrent
	}
	return 10
}

// persist saves the report and its usage record. Storage failures degrade
// to warnings; the caller still gets the report.
func (p *Pipeline) persist(ctx context.Context, report *model.Report, log *zap.Logger) {
	if p.st == nil {
		return
	}
	ttl := time.Duration(p.cfg.Store.ReportTTLHours) * time.Hour
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	if err := p.st.SaveReport(ctx, report, ttl); err != nil {
		log.Warn("pipeline: save report failed", zap.Error(err))
		report.Warnings = append(report.Warnings, fmt.Sprintf("report not persisted: %v", err))
		return
	}
	if err := p.st.RecordUsage(ctx, report.ID, report.Cost); err != nil {
		log.Warn("pipeline: record usage failed", zap.Error(err))
	}
}

func sectionState(n int) model.SectionState {
	if n > 0 {
		return model.SectionOK
	}
	return model.SectionNoResults
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
