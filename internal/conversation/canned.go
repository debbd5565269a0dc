package conversation

import (
	"fmt"
	"strings"
)

// Canned responses stand in for a model when no provider is configured.
// They are fully deterministic for a given (prompt, seed) pair, which keeps
// offline seeded batches byte-identical across runs. The text carries real
// citation markers and gap language so the extraction pipeline behaves the
// same as it would on live model output.

const cannedAnalysisTemplate = `Bias analysis for %[1]s research.

Dataset composition:
- Training datasets in %[1]s are dominated by lighter skin tone imagery, with darker skin tones underrepresented across the major public benchmarks [1].
- Cohort recruitment is concentrated in North America and Western Europe, leaving a geographic gap for African and South Asian populations (Adamson & Smith, 2018).
- Reported sex and age group stratification is %[2]s in roughly 40%% of the studies surveyed [2].

Subgroup performance:
- Models show a measurable sensitivity disparity between demographic groups, with the largest drop for the darkest skin tone categories (Daneshjou et al., 2022).
- External validation across sites is missing in most published evaluations, so the geographic gap in deployment performance remains unquantified [3].

Identified gaps:
- There is a lack of labeled data for Fitzpatrick types V and VI, an underrepresented demographic in %[1]s imaging [1].
- No data on model performance in low-resource regions has been published, a geographic limitation flagged by several reviews (Guo et al., 2021).

References:
[1] https://doi.org/10.1001/jamadermatol.2018.2348
[2] https://pubmed.ncbi.nlm.nih.gov/34735990/
[3] https://arxiv.org/abs/2111.08006`

const cannedMitigationTemplate = `Validated mitigation methods for bias in %[1]s models.

- Dataset rebalancing with targeted collection of underrepresented skin tone and ethnicity categories improved subgroup sensitivity in a controlled replication [1].
- Fairness-aware training objectives reduced the demographic performance gap without degrading overall accuracy (Zhang et al., 2022).
- External validation across geographically diverse sites is the strongest published check against region-specific bias; multi-country studies remain rare, which is itself a gap in the mitigation literature [2].
- Reporting checklists that require race, ethnicity, sex, and age group breakdowns raise the share of auditable studies (Ibrahim & Liu, 2023).

References:
[1] https://doi.org/10.1038/s41591-021-01595-0
[2] https://pubmed.ncbi.nlm.nih.gov/36109526/`

const cannedFollowUpTemplate = `Regarding %[1]s: the evidence base is thin for the question as asked. The strongest related finding is the demographic performance disparity documented in multi-reader studies [1], and a geographic limitation in cohort sourcing noted by the same authors (Daneshjou et al., 2022). A gap remains for age group specific effects, where there is insufficient published data [2].

References:
[1] https://doi.org/10.1016/S2589-7500(22)00063-2
[2] https://pubmed.ncbi.nlm.nih.gov/35568690/`

// analysisVariants introduces one seed-selected word so different seeds
// produce measurably different (but still equivalent-length) transcripts.
var analysisVariants = []string{"absent", "incomplete", "inconsistent"}

func cannedResponse(prompt string, seed *int64) string {
	lower := strings.ToLower(prompt)

	field := extractMedicalField(lower)
	if field == "" {
		field = "medical AI"
	}

	switch {
	case strings.Contains(lower, "mitigation"):
		return fmt.Sprintf(cannedMitigationTemplate, field)
	case strings.Contains(lower, "follow-up"):
		return fmt.Sprintf(cannedFollowUpTemplate, field)
	default:
		variant := analysisVariants[seedIndex(seed, len(analysisVariants))]
		return fmt.Sprintf(cannedAnalysisTemplate, field, variant)
	}
}

func seedIndex(seed *int64, n int) int {
	if seed == nil || n == 0 {
		return 0
	}
	idx := *seed % int64(n)
	if idx < 0 {
		idx += int64(n)
	}
	return int(idx)
}
