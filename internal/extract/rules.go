package extract

import (
	"regexp"
	"sort"

	"github.com/ppiankov/medlens/internal/model"
)

// Rule is one citation matcher: a named pattern producing typed matches.
// Rules are applied in order; overlapping matches keep the earlier rule.
type Rule struct {
	Name    string
	Kind    model.CitationKind
	Pattern *regexp.Regexp
}

// Match is a typed token produced by a rule
type Match struct {
	Rule  string
	Kind  model.CitationKind
	Text  string
	Start int
	End   int
}

// RuleSet is an ordered list of citation rules
type RuleSet struct {
	rules []Rule
}

// DefaultRules returns the built-in citation rule set
func DefaultRules() *RuleSet {
	return &RuleSet{rules: []Rule{
		{
			Name:    "bracket_numbered",
			Kind:    model.CitationNumbered,
			Pattern: regexp.MustCompile(`\[\d+\]`),
		},
		{
			Name:    "author_etal_year_paren",
			Kind:    model.CitationAuthorYear,
			Pattern: regexp.MustCompile(`\([A-Z][A-Za-z-]+ et al\.?,? \d{4}\)`),
		},
		{
			Name:    "author_year_paren",
			Kind:    model.CitationAuthorYear,
			Pattern: regexp.MustCompile(`\([A-Z][A-Za-z-]+,? \d{4}\)`),
		},
		{
			Name:    "author_etal_year",
			Kind:    model.CitationAuthorYear,
			Pattern: regexp.MustCompile(`[A-Z][A-Za-z-]+ et al\.?,? \(?\d{4}\)?`),
		},
		{
			Name:    "doi",
			Kind:    model.CitationURL,
			Pattern: regexp.MustCompile(`(?i)doi:\s*10\.\d+[/.][^\s]+`),
		},
		{
			Name:    "arxiv",
			Kind:    model.CitationURL,
			Pattern: regexp.MustCompile(`arXiv:\d{4}\.\d{4,5}`),
		},
		{
			Name:    "pmid",
			Kind:    model.CitationURL,
			Pattern: regexp.MustCompile(`PMID:\s*\d+`),
		},
		{
			Name:    "bare_url",
			Kind:    model.CitationURL,
			Pattern: regexp.MustCompile(`https?://[^\s)\]>]+`),
		},
		{
			Name: "quoted_title",
			Kind: model.CitationTitleRef,
			// Quoted phrase followed closely by a dataset/study keyword,
			// e.g. "Deep Dermatology" study
			Pattern: regexp.MustCompile(`"[^"]{8,120}"\s+(?:study|dataset|paper|trial|cohort|review)`),
		},
	}}
}

// Scan applies every rule to the text and returns non-overlapping matches
// in document order. When two rules match overlapping spans, the rule
// listed first wins.
func (rs *RuleSet) Scan(text string) []Match {
	var matches []Match
	claimed := make([]bool, len(text))

	for _, rule := range rs.rules {
		for _, loc := range rule.Pattern.FindAllStringIndex(text, -1) {
			if spanClaimed(claimed, loc[0], loc[1]) {
				continue
			}
			markSpan(claimed, loc[0], loc[1])
			matches = append(matches, Match{
				Rule:  rule.Name,
				Kind:  rule.Kind,
				Text:  text[loc[0]:loc[1]],
				Start: loc[0],
				End:   loc[1],
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Start < matches[j].Start
	})

	return matches
}

// Rules returns the rule list (read-only view for diagnostics)
func (rs *RuleSet) Rules() []Rule {
	return rs.rules
}

func spanClaimed(claimed []bool, start, end int) bool {
	for i := start; i < end && i < len(claimed); i++ {
		if claimed[i] {
			return true
		}
	}
	return false
}

func markSpan(claimed []bool, start, end int) {
	for i := start; i < end && i < len(claimed); i++ {
		claimed[i] = true
	}
}
