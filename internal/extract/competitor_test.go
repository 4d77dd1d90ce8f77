package extract

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/intel-cli/internal/model"
)

func TestCompetitorMentions_CoOccurrence(t *testing.T) {
	e := newExtractor()
	results := []model.RawResult{
		{
			Title:   "Acme Corp and Globex announce partnership",
			URL:     "https://globex.com/press/acme-partnership",
			Content: "Acme Corp partners with Globex to deliver joint offerings.",
		},
		{
			Title:   "Globex quarterly results",
			URL:     "https://globex.com/ir/q3",
			Content: "Globex reported revenue growth.", // no Acme co-occurrence
		},
	}

	mentions := e.CompetitorMentions("Acme Corp", "Globex", results)
	require.Len(t, mentions, 1)
	assert.Equal(t, "Globex", mentions[0].CompetitorName)
	assert.Equal(t, model.MentionPartner, mentions[0].MentionType)
	assert.Equal(t, "https://globex.com/press/acme-partnership", mentions[0].URL)
}

func TestInferMentionType(t *testing.T) {
	tests := []struct {
		name string
		r    model.RawResult
		want model.MentionType
	}{
		{
			"case study path",
			model.RawResult{URL: "https://globex.com/case-studies/acme", Title: "How Acme scaled"},
			model.MentionCaseStudy,
		},
		{
			"customer path",
			model.RawResult{URL: "https://globex.com/customers/acme", Title: "Acme"},
			model.MentionCustomer,
		},
		{
			"comparison text",
			model.RawResult{URL: "https://review.example.com/a", Title: "Acme vs Globex: which wins?", Content: "Acme versus Globex compared"},
			model.MentionComparison,
		},
		{
			"press wire host",
			model.RawResult{URL: "https://prnewswire.com/release/123", Title: "Globex announces"},
			model.MentionPressRelease,
		},
		{
			"integration text",
			model.RawResult{URL: "https://globex.com/blog/post", Title: "Globex integration with Acme now live"},
			model.MentionIntegration,
		},
		{
			"no cues",
			model.RawResult{URL: "https://news.example.com/story", Title: "Industry roundup"},
			model.MentionOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferMentionType(tt.r))
		})
	}
}

func TestSummarize(t *testing.T) {
	short := "A short snippet."
	assert.Equal(t, short, summarize(short))

	long := ""
	for range 30 {
		long += "evidence snippet body "
	}
	got := summarize(long)
	assert.LessOrEqual(t, len(got), summaryLen+len("…"))
	assert.Contains(t, got, "…")
}

func TestSummarize_MultiByteContent(t *testing.T) {
	// The odd-length prefix forces the byte cut to land mid-rune, and with
	// no spaces there is no word boundary to rescue it. Every rune must
	// survive intact.
	long := "x" + strings.Repeat("ü", summaryLen)
	got := summarize(long)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), summaryLen+len("…"))

	for _, r := range got {
		if r != 'x' && r != 'ü' && r != '…' {
			t.Fatalf("unexpected rune %q in summary", r)
		}
	}
}
