// Package reproduce decides whether sessions generated under the same
// (corpus, seed) produced equivalent output.
//
// Equivalence is normalized Levenshtein similarity: both texts are
// case-folded, punctuation-stripped and whitespace-collapsed, then
// sim = 1 - dist/max(len). The measure is symmetric, bounded in [0,1] and
// order-sensitive. Grouping uses first-session-as-reference: within each
// (corpus, seed) group of two or more sessions the first session is the
// reference and counts as reproducible by identity; every other session
// counts iff its similarity to the reference meets the threshold.
package reproduce

import (
	"strings"
	"unicode"

	"github.com/ppiankov/medlens/internal/model"
)

// DefaultThreshold is the similarity at or above which two responses are
// considered equivalent
const DefaultThreshold = 0.90

// Comparator tests session output equivalence
type Comparator struct {
	threshold float64
}

// NewComparator creates a comparator with the given threshold. Values
// outside (0, 1] fall back to DefaultThreshold.
func NewComparator(threshold float64) *Comparator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Comparator{threshold: threshold}
}

// Threshold returns the configured equivalence threshold
func (c *Comparator) Threshold() float64 {
	return c.threshold
}

// AreEquivalent reports whether two response texts meet the threshold
func (c *Comparator) AreEquivalent(a, b string) bool {
	return c.Similarity(a, b) >= c.threshold
}

// Similarity computes the normalized similarity of two texts in [0, 1]
func (c *Comparator) Similarity(a, b string) float64 {
	na := Normalize(a)
	nb := Normalize(b)

	if na == nb {
		return 1.0
	}
	if len(na) == 0 || len(nb) == 0 {
		return 0.0
	}

	dist := levenshtein(na, nb)
	max := len(na)
	if len(nb) > max {
		max = len(nb)
	}

	return 1.0 - float64(dist)/float64(max)
}

// Rate computes the reproducibility rate over a session set: the fraction
// of sessions in multi-session (corpus, seed) groups equivalent to their
// group's first session. Returns the rate and the population size; both
// are zero when no group is comparable. Sessions without a seed are
// excluded by definition.
func (c *Comparator) Rate(sessions []model.SessionMetrics) (float64, int) {
	type group struct {
		reference string
		size      int
		matched   int
	}

	groups := make(map[string]*group)
	var order []string

	for i := range sessions {
		key, ok := sessions[i].GroupKey()
		if !ok {
			continue
		}
		g, exists := groups[key]
		if !exists {
			g = &group{reference: sessions[i].ResponseText}
			groups[key] = g
			order = append(order, key)
		}
		g.size++
		if g.size == 1 || c.AreEquivalent(g.reference, sessions[i].ResponseText) {
			g.matched++
		}
	}

	population := 0
	matched := 0
	for _, key := range order {
		g := groups[key]
		if g.size < 2 {
			continue
		}
		population += g.size
		matched += g.matched
	}

	if population == 0 {
		return 0.0, 0
	}
	return float64(matched) / float64(population), population
}

// Normalize case-folds, strips punctuation and collapses whitespace
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	space := false
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			space = true
		}
	}

	return b.String()
}

// levenshtein computes edit distance with a two-row table
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
