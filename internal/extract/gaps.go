package extract

import (
	"strings"

	"github.com/ppiankov/medlens/internal/model"
)

// GapDetector identifies claims describing data/representation shortfalls
// and tags them with demographic and geographic flags
type GapDetector struct {
	lexicon     []string
	demographic []string
	geographic  []string
}

// NewGapDetector creates a gap detector with the built-in keyword sets
func NewGapDetector() *GapDetector {
	return &GapDetector{
		lexicon: []string{
			"underrepresented", "under-represented", "lacking data",
			"lack of", "lacks", "missing", "insufficient", "absence of",
			"gap", "bias", "disparity", "inequality", "limitation",
			"not represented", "no data on",
		},
		demographic: []string{
			"demographic", "race", "racial", "ethnic", "ethnicity",
			"minority", "african american", "black", "hispanic", "latino",
			"asian", "white", "skin tone", "skin type", "fitzpatrick",
			"sex", "gender", "female", "male", "age group", "elderly",
			"pediatric", "children",
		},
		geographic: []string{
			"geographic", "geographical", "region", "regional", "country",
			"countries", "continent", "us-only", "us only", "united states",
			"north america", "europe", "asia", "africa", "latin america",
			"global", "international", "low-income", "site",
		},
	}
}

// Detect returns one Gap per claim whose text matches the gap lexicon.
// Attribution must already have run: has_sources reflects the claim's
// verified citation. Every gap carries the given timestamp (seconds since
// session start).
func (d *GapDetector) Detect(claims []model.Claim, timestamp float64) []model.Gap {
	var gaps []model.Gap

	for i, claim := range claims {
		lower := strings.ToLower(claim.Text)

		keyword := ""
		for _, term := range d.lexicon {
			if strings.Contains(lower, term) {
				keyword = term
				break
			}
		}
		if keyword == "" {
			continue
		}

		gaps = append(gaps, model.Gap{
			Text:             claim.Text,
			ClaimIndex:       i,
			FlagsDemographic: containsAny(lower, d.demographic),
			FlagsGeographic:  containsAny(lower, d.geographic),
			HasSources:       claim.IsVerified,
			Timestamp:        timestamp,
			Keyword:          keyword,
		})
	}

	return gaps
}

func containsAny(lower string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
