package extract

import (
	"strings"

	"github.com/ppiankov/medlens/internal/model"
)

// CitationDetector scans responses for citation patterns and binds them to
// the claims they support
type CitationDetector struct {
	rules  *RuleSet
	window int // Max tokens between a claim's end and a citation for binding
}

// NewCitationDetector creates a detector with the default rule set
func NewCitationDetector(window int) *CitationDetector {
	if window <= 0 {
		window = 12
	}
	return &CitationDetector{
		rules:  DefaultRules(),
		window: window,
	}
}

// Detect scans the response text and returns all citations in document
// order, unattributed (ClaimIndex = -1).
func (d *CitationDetector) Detect(responseText string) []model.Citation {
	matches := d.rules.Scan(responseText)

	citations := make([]model.Citation, 0, len(matches))
	for _, m := range matches {
		citations = append(citations, model.Citation{
			RawText:    m.Text,
			Kind:       m.Kind,
			Rule:       m.Rule,
			Position:   m.Start,
			ClaimIndex: -1,
		})
	}

	return citations
}

// Attribute binds each citation to the nearest preceding claim within the
// token window and marks bound claims as cited and verified. Verification
// here means a well-formed citation is present; it is not a truth check.
// Citations with no attributable claim stay orphaned and never inflate the
// verification rate. Returns the updated claims and citations.
func (d *CitationDetector) Attribute(responseText string, claims []model.Claim, citations []model.Citation) ([]model.Claim, []model.Citation) {
	out := make([]model.Claim, len(claims))
	copy(out, claims)

	bound := make([]model.Citation, len(citations))
	copy(bound, citations)

	for i := range bound {
		idx := d.attributeOne(responseText, out, bound[i].Position)
		bound[i].ClaimIndex = idx
		if idx >= 0 {
			out[idx].HasCitation = true
			out[idx].IsVerified = true
		}
	}

	return out, bound
}

// attributeOne finds the claim a citation at the given offset belongs to,
// or -1 when orphaned.
func (d *CitationDetector) attributeOne(text string, claims []model.Claim, citPos int) int {
	best := -1
	for i, c := range claims {
		if c.Position > citPos {
			break
		}
		best = i
	}
	if best < 0 {
		return -1
	}

	claim := claims[best]
	claimEnd := claim.Position + len(claim.Text)

	// Citation inside the claim span binds directly
	if citPos < claimEnd {
		return best
	}

	// Otherwise it must fall within the token window after the claim
	if claimEnd > len(text) || citPos > len(text) {
		return -1
	}
	between := text[claimEnd:citPos]
	if len(strings.Fields(between)) <= d.window {
		return best
	}

	return -1
}

// CountOrphans returns the number of citations with no attributed claim
func CountOrphans(citations []model.Citation) int {
	n := 0
	for _, c := range citations {
		if c.Orphaned() {
			n++
		}
	}
	return n
}
