package extract

import (
	"testing"

	"github.com/ppiankov/medlens/internal/model"
)

func TestDetectGapsDermatologyScenario(t *testing.T) {
	d := NewCitationDetector(12)
	claims := NewClaimExtractor(20, 600).Extract(dermatologyResponse)
	citations := d.Detect(dermatologyResponse)
	claims, _ = d.Attribute(dermatologyResponse, claims, citations)

	gaps := NewGapDetector().Detect(claims, 2.5)
	if len(gaps) != 2 {
		t.Fatalf("expected 2 gaps, got %d: %+v", len(gaps), gaps)
	}

	first := gaps[0]
	if !first.FlagsDemographic {
		t.Errorf("skin-tone gap must flag demographic: %+v", first)
	}
	if !first.HasSources {
		t.Errorf("cited gap must have sources")
	}
	if !first.Vetted() {
		t.Errorf("flagged gap with sources must be vetted")
	}
	if first.Timestamp != 2.5 {
		t.Errorf("timestamp = %v, want 2.5", first.Timestamp)
	}

	second := gaps[1]
	if !second.FlagsGeographic {
		t.Errorf("North America gap must flag geographic: %+v", second)
	}
	if second.HasSources {
		t.Errorf("uncited gap must not have sources")
	}
	if second.Vetted() {
		t.Errorf("gap without sources must not be vetted")
	}
}

func TestDetectGapsKeywordRecorded(t *testing.T) {
	claims := []model.Claim{
		{Text: "There is insufficient data on elderly patients in these trials overall."},
	}

	gaps := NewGapDetector().Detect(claims, 0)
	if len(gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d", len(gaps))
	}
	if gaps[0].Keyword != "insufficient" {
		t.Errorf("keyword = %q, want insufficient", gaps[0].Keyword)
	}
	if !gaps[0].FlagsDemographic {
		t.Errorf("elderly is a demographic term")
	}
	if gaps[0].ClaimIndex != 0 {
		t.Errorf("gap must reference its claim index")
	}
}

func TestDetectGapsNonGapClaimsIgnored(t *testing.T) {
	claims := []model.Claim{
		{Text: "The model reached 0.91 AUC on the internal validation split."},
	}

	if gaps := NewGapDetector().Detect(claims, 0); len(gaps) != 0 {
		t.Errorf("performance statements are not gaps: %+v", gaps)
	}
}

func TestGapFlaggedRequiresEitherFlag(t *testing.T) {
	claims := []model.Claim{
		{Text: "The benchmark suffers from a known labeling limitation in practice."},
	}

	gaps := NewGapDetector().Detect(claims, 0)
	if len(gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d", len(gaps))
	}
	if gaps[0].Flagged() {
		t.Errorf("gap naming no demographic or geography must not count as flagged")
	}
	if gaps[0].Vetted() {
		t.Errorf("gap without sources must not be vetted")
	}
}
