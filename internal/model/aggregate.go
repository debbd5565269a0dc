package model

import "time"

// Target thresholds for the five compliance metrics
const (
	TargetCitationVerification = 0.95 // >= 95% of claims carry verifiable citations
	TargetFalseUncited         = 0.02 // <= 2% false or uncited claims
	TargetDemographicFlagging  = 0.80 // >= 80% of gaps flag demographics or geography
	TargetTimeToFirstGap       = 90.0 // <= 90s to first vetted gap
	TargetReproducibility      = 0.95 // >= 95% of seeded sessions reproduce
)

// Metric is one aggregate metric compared against its fixed target.
// Samples is the denominator population; Samples == 0 means the metric is
// undefined for this batch and Met is forced false.
type Metric struct {
	Value   float64 `json:"value"`
	Target  float64 `json:"target"`
	Met     bool    `json:"met"`
	Label   string  `json:"label"`
	Unit    string  `json:"unit"`
	Samples int     `json:"samples"`
}

// AggregateMetrics is derived fresh from a set of SessionMetrics and never
// mutated in place
type AggregateMetrics struct {
	CitationVerificationRate Metric `json:"citation_verification_rate"`
	FalseUncitedRate         Metric `json:"false_uncited_claims_rate"`
	DemographicFlagRate      Metric `json:"demographic_flagging_rate"`
	MedianTimeToFirstGap     Metric `json:"time_to_first_gap"`
	ReproducibilityRate      Metric `json:"reproducibility_rate"`

	TotalSessions int `json:"total_sessions"`

	// Raw pooled counts, kept transparent so every rate is recomputable
	TotalClaims        int `json:"total_claims"`
	VerifiedClaims     int `json:"verified_claims"`
	CitedClaims        int `json:"cited_claims"`
	FalseUncitedClaims int `json:"false_uncited_claims"`
	TotalGaps          int `json:"total_gaps"`
	FlaggedGaps        int `json:"flagged_gaps"`
	OrphanCitations    int `json:"orphan_citations"`

	AllTargetsMet bool `json:"all_targets_met"`
}

// Metrics returns the five metrics in report order
func (a *AggregateMetrics) Metrics() []Metric {
	return []Metric{
		a.CitationVerificationRate,
		a.FalseUncitedRate,
		a.DemographicFlagRate,
		a.MedianTimeToFirstGap,
		a.ReproducibilityRate,
	}
}

// CitationLiveness summarizes the optional URL liveness probe. It never
// feeds into is_verified or any metric.
type CitationLiveness struct {
	Probed int `json:"probed"`
	Dead   int `json:"dead"`
}

// Report is the serializable metrics file consumed by the charting layer
type Report struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Corpus      string            `json:"corpus"`
	Seed        *int64            `json:"seed,omitempty"`
	Sessions    []SessionMetrics  `json:"sessions"`
	Aggregate   AggregateMetrics  `json:"aggregate"`
	Liveness    *CitationLiveness `json:"citation_liveness,omitempty"`
}
