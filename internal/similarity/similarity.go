// Package similarity provides the pure text-similarity primitives used for
// fuzzy company-name matching and duplicate detection. No I/O.
package similarity

import (
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
	"golang.org/x/text/cases"
)

// jaccardThreshold is the token-overlap ratio above which two normalized
// titles are considered the same story.
const jaccardThreshold = 0.6

// minTokenLen filters connective words out of the Jaccard token sets.
const minTokenLen = 2

var folder = cases.Fold()

// EditSimilarity returns 1 - levenshtein(a,b)/max(len(a),len(b)).
// Symmetric; 1 for identical strings; 1 for two empty strings.
func EditSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.Distance(a, b, nil)
	return 1 - float64(dist)/float64(maxLen)
}

// TitleSimilar reports whether two titles describe the same story:
// normalized equality, containment, or token Jaccard above the threshold.
func TitleSimilar(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}
	return TokenJaccard(na, nb) > jaccardThreshold
}

// Normalize lowercases (full case folding), replaces non-alphanumeric runes
// with spaces, and collapses runs of whitespace.
func Normalize(s string) string {
	s = folder.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// TokenJaccard computes Jaccard similarity over the word sets of two
// normalized strings, ignoring tokens of minTokenLen characters or fewer.
func TokenJaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for t := range setA {
		if setB[t] {
			intersection++
		}
	}
	union := len(setA)
	for t := range setB {
		if !setA[t] {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(s) {
		if len(t) > minTokenLen {
			set[t] = true
		}
	}
	return set
}
