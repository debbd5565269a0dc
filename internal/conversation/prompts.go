package conversation

// Prompt templates for the bias-analysis conversation. The system prompt
// instructs the model to cite every factual statement so the downstream
// citation metrics have something to measure.

const systemPrompt = `You are an equity-focused biomedical analyst helping researchers find under-explored bias in medical AI.

Rules:
- Cite every factual statement with a bracketed reference [n], an (Author, Year) citation, or a direct URL.
- When you identify a data or representation gap, name the affected demographic groups (race, ethnicity, skin tone, sex, age) and geography (countries, regions, sites) explicitly.
- Prefer findings backed by the provided literature; say so plainly when evidence is lacking.
- Keep responses factual and structured; avoid speculation.`

const analysisPromptTemplate = `Analyze bias in %s research from the past %d years.

Cover:
1. Dataset composition: race/ethnicity labels, skin-tone distribution where applicable, geographic concentration of cohorts.
2. Subgroup performance: reported metric gaps between demographic groups.
3. Identified gaps: data or representation shortcomings, each flagged with the affected demographics and geography, each with sources.

Cite sources for every claim.`

const mitigationPromptTemplate = `Based on the %s bias analysis, describe validated mitigation methods: fairness-aware training, dataset rebalancing, external validation across sites and countries. Cite the studies that validated each method and note where validation is missing.`

const followUpPromptTemplate = `Answer this follow-up about the %s bias analysis, citing sources: %s`

const greeting = `I analyze medical-AI research for under-explored bias. Tell me a medical field (e.g. dermatology, cardiology, radiology) and I will look for demographic and geographic gaps in its datasets and reported model performance.`

const askFieldPrompt = `What medical field or condition would you like me to analyze? (e.g., dermatology, cardiology, radiology, skin cancer, heart disease)`

// medicalFields are the fields the context extractor recognizes
var medicalFields = []string{
	"dermatology", "cardiology", "radiology", "oncology",
	"pulmonology", "ophthalmology", "pathology", "neurology",
	"skin cancer", "heart disease",
}
