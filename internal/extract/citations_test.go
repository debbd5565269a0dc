package extract

import (
	"testing"

	"github.com/ppiankov/medlens/internal/model"
)

// The canonical two-sentence scenario: one cited claim, one uncited claim
// describing a geographic gap.
const dermatologyResponse = "Darker skin tones are significantly underrepresented in dermatology AI training datasets [3]. " +
	"There is also a notable gap in geographic diversity, with most data from North America."

func TestDetectFindsCitations(t *testing.T) {
	citations := NewCitationDetector(12).Detect(dermatologyResponse)
	if len(citations) != 1 {
		t.Fatalf("expected 1 citation, got %d: %+v", len(citations), citations)
	}
	if citations[0].RawText != "[3]" {
		t.Errorf("raw text = %q, want [3]", citations[0].RawText)
	}
	if citations[0].Kind != model.CitationNumbered {
		t.Errorf("kind = %q, want numbered", citations[0].Kind)
	}
	if citations[0].ClaimIndex != -1 {
		t.Errorf("detection must not attribute, got claim index %d", citations[0].ClaimIndex)
	}
}

func TestAttributeBindsInSpanCitation(t *testing.T) {
	d := NewCitationDetector(12)
	claims := NewClaimExtractor(20, 600).Extract(dermatologyResponse)
	if len(claims) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(claims))
	}

	citations := d.Detect(dermatologyResponse)
	claims, citations = d.Attribute(dermatologyResponse, claims, citations)

	if citations[0].ClaimIndex != 0 {
		t.Errorf("citation should bind to the first claim, got %d", citations[0].ClaimIndex)
	}
	if !claims[0].HasCitation || !claims[0].IsVerified {
		t.Errorf("cited claim must be verified: %+v", claims[0])
	}
	if claims[1].HasCitation || claims[1].IsVerified {
		t.Errorf("uncited claim must stay unverified: %+v", claims[1])
	}
}

func TestAttributeWindowBinding(t *testing.T) {
	// The trailing unit is a question (never a claim), so the citation must
	// bind backwards across three tokens to the preceding claim
	text := "Model sensitivity drops 15% for the darkest skin categories. Want the source (Daneshjou et al., 2022)?"

	d := NewCitationDetector(12)
	claims := NewClaimExtractor(20, 600).Extract(text)
	if len(claims) != 1 {
		t.Fatalf("expected 1 claim, got %d: %+v", len(claims), claims)
	}

	citations := d.Detect(text)
	claims, citations = d.Attribute(text, claims, citations)

	if citations[0].ClaimIndex != 0 {
		t.Errorf("trailing citation within window should bind, got %d", citations[0].ClaimIndex)
	}
	if !claims[0].IsVerified {
		t.Errorf("bound claim must be verified")
	}
}

func TestAttributeWindowExceeded(t *testing.T) {
	text := "Model sensitivity drops 15% for the darkest skin categories. " +
		"Would one two three four five six seven eight nine ten eleven twelve agree? [4]"

	d := NewCitationDetector(12)
	claims := NewClaimExtractor(20, 600).Extract(text)
	if len(claims) != 1 {
		t.Fatalf("expected 1 claim, got %d: %+v", len(claims), claims)
	}

	citations := d.Detect(text)
	claims, citations = d.Attribute(text, claims, citations)

	if citations[0].ClaimIndex != -1 {
		t.Errorf("citation beyond the token window must stay orphaned, got %d", citations[0].ClaimIndex)
	}
	if claims[0].IsVerified {
		t.Errorf("claim must not be verified by an out-of-window citation")
	}
}

func TestAttributeOrphanBeforeAnyClaim(t *testing.T) {
	d := NewCitationDetector(12)

	citations := d.Detect("[7]")
	_, citations = d.Attribute("[7]", nil, citations)

	if citations[0].ClaimIndex != -1 {
		t.Errorf("citation with no claims must be orphaned")
	}
	if CountOrphans(citations) != 1 {
		t.Errorf("CountOrphans = %d, want 1", CountOrphans(citations))
	}
}

func TestAttributeNoCitationsLeavesClaimsUnverified(t *testing.T) {
	text := "Cardiology trial enrollment skews heavily male across the literature. " +
		"Elderly patients above 80 are excluded from most protocols entirely."

	d := NewCitationDetector(12)
	claims := NewClaimExtractor(20, 600).Extract(text)
	citations := d.Detect(text)
	claims, _ = d.Attribute(text, claims, citations)

	if len(citations) != 0 {
		t.Fatalf("expected no citations, got %+v", citations)
	}
	for i, c := range claims {
		if c.HasCitation || c.IsVerified {
			t.Errorf("claim %d must be unverified without citations: %+v", i, c)
		}
	}
}

func TestAttributeIdempotent(t *testing.T) {
	d := NewCitationDetector(12)
	claims := NewClaimExtractor(20, 600).Extract(dermatologyResponse)
	citations := d.Detect(dermatologyResponse)

	c1, cit1 := d.Attribute(dermatologyResponse, claims, citations)
	c2, cit2 := d.Attribute(dermatologyResponse, claims, citations)

	if len(c1) != len(c2) || len(cit1) != len(cit2) {
		t.Fatalf("repeated attribution changed result sizes")
	}
	for i := range c1 {
		if c1[i] != c2[i] {
			t.Errorf("claim %d differs across identical runs", i)
		}
	}
	// Inputs must not be mutated
	if claims[0].IsVerified {
		t.Errorf("Attribute must not mutate its inputs")
	}
}
