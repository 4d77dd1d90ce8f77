// Package verify confirms that cited URLs are live, real pages that
// actually contain the claims attributed to them. Failed verification is a
// silent rejection: it is how hallucinated evidence gets filtered, not an
// error condition.
package verify

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/intel-cli/internal/config"
	"github.com/sells-group/intel-cli/internal/model"
)

// maxBodyBytes caps how much of a page is read for content checks.
const maxBodyBytes = 1 << 20

// indexDirs are listing directories; a URL ending at one of these is a
// generic index page, not evidence about a specific relationship.
var indexDirs = map[string]bool{
	"customers":    true,
	"case-studies": true,
	"partners":     true,
	"resources":    true,
	"news":         true,
	"blog":         true,
}

// Verifier fetches candidate URLs and inspects status, content type and
// body content. One attempt per URL, no retries.
type Verifier struct {
	client *http.Client
	cfg    config.VerifyConfig
	wl     *config.Wordlists

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a Verifier from config and wordlists.
func New(cfg config.VerifyConfig, wl *config.Wordlists) *Verifier {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 8 * time.Second
	}
	return &Verifier{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		cfg:      cfg,
		wl:       wl,
		limiters: make(map[string]*rate.Limiter),
	}
}

// limiterFor returns (creating if needed) the politeness limiter for host.
func (v *Verifier) limiterFor(host string) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()
	lim, ok := v.limiters[host]
	if !ok {
		perHost := v.cfg.RatePerHost
		if perHost <= 0 {
			perHost = 2
		}
		lim = rate.NewLimiter(rate.Limit(perHost), int(perHost))
		v.limiters[host] = lim
	}
	return lim
}

// Verify fetches rawURL and confirms it is a live HTML page containing
// every string in mustContain (case-insensitive) and no soft-404 markers.
func (v *Verifier) Verify(ctx context.Context, rawURL string, mustContain []string) model.ValidationOutcome {
	if !model.IsAbsoluteHTTP(rawURL) {
		return model.Invalid("malformed url")
	}

	u, _ := url.Parse(rawURL)
	if err := v.limiterFor(u.Hostname()).Wait(ctx); err != nil {
		return model.Invalid("cancelled")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return model.Invalid("build request: " + err.Error())
	}
	req.Header.Set("User-Agent", v.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := v.client.Do(req)
	if err != nil {
		zap.L().Debug("verify: fetch failed",
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return model.Invalid("fetch failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return model.Invalid("http status " + resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(strings.ToLower(ct), "text/html") {
		return model.Invalid("not html: " + ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return model.Invalid("read body failed")
	}
	lower := strings.ToLower(string(body))

	for _, marker := range v.wl.Soft404Markers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			return model.Invalid("soft 404: " + marker)
		}
	}

	for _, want := range mustContain {
		if want == "" {
			continue
		}
		if !strings.Contains(lower, strings.ToLower(want)) {
			return model.Invalid("content missing: " + want)
		}
	}

	return model.ValidationOutcome{Valid: true}
}

// VerifyCompetitorMention applies the competitor-specific checks (domain
// ownership, index-page heuristic) before the general content check. Both
// the subject company and the competitor must appear in the page.
func (v *Verifier) VerifyCompetitorMention(ctx context.Context, rawURL, company, competitor string) model.ValidationOutcome {
	if !model.IsAbsoluteHTTP(rawURL) {
		return model.Invalid("malformed url")
	}
	u, _ := url.Parse(rawURL)

	if !v.domainAllowed(u.Hostname(), competitor) {
		return model.Invalid("domain does not belong to competitor")
	}
	if isIndexPage(u) {
		return model.Invalid("generic listing page")
	}

	return v.Verify(ctx, rawURL, []string{company, competitor})
}

// domainAllowed reports whether host equals or is a subdomain of one of
// the competitor's configured domains. A competitor with no configured
// domains skips the check: there is nothing to compare against, and the
// content check still has to pass.
func (v *Verifier) domainAllowed(host, competitor string) bool {
	domains := v.wl.CompetitorDomains[strings.ToLower(competitor)]
	if len(domains) == 0 {
		return true
	}
	host = strings.ToLower(strings.TrimPrefix(host, "www."))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimPrefix(d, "www."))
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// isIndexPage applies the listing-page heuristic: a path ending at a known
// listing directory, or with one or fewer non-empty segments overall.
func isIndexPage(u *url.URL) bool {
	segments := nonEmptySegments(u.Path)
	if len(segments) <= 1 {
		return true
	}
	return indexDirs[strings.ToLower(segments[len(segments)-1])]
}

func nonEmptySegments(path string) []string {
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
