// Package aggregate combines per-session metrics into population-level
// compliance rates with pass/fail status against fixed targets.
//
// Aggregation is a pure function of its input: it never mutates the
// sessions, holds no state between calls, and computing it twice over the
// same set yields identical output.
package aggregate

import (
	"errors"
	"sort"

	"github.com/ppiankov/medlens/internal/model"
	"github.com/ppiankov/medlens/internal/reproduce"
)

// ErrInsufficientData signals aggregation over an empty session set.
// Callers must distinguish "no sessions processed" from 0% compliance.
var ErrInsufficientData = errors.New("insufficient data: no sessions to aggregate")

// Aggregator computes AggregateMetrics from session records
type Aggregator struct {
	comparator *reproduce.Comparator
}

// NewAggregator creates an aggregator using the given comparator for the
// reproducibility metric
func NewAggregator(comparator *reproduce.Comparator) *Aggregator {
	if comparator == nil {
		comparator = reproduce.NewComparator(reproduce.DefaultThreshold)
	}
	return &Aggregator{comparator: comparator}
}

// Aggregate derives population metrics from the given sessions. Zero-claim
// sessions contribute nothing to either side of claim-based rates; sessions
// without a vetted gap are excluded from the time-to-first-gap median.
func (a *Aggregator) Aggregate(sessions []model.SessionMetrics) (*model.AggregateMetrics, error) {
	if len(sessions) == 0 {
		return nil, ErrInsufficientData
	}

	agg := &model.AggregateMetrics{
		TotalSessions: len(sessions),
	}

	var firstGapTimes []float64
	for i := range sessions {
		s := &sessions[i]

		agg.TotalClaims += len(s.Claims)
		agg.VerifiedClaims += s.VerifiedClaims()
		agg.FalseUncitedClaims += s.FalseUncitedClaims()
		agg.TotalGaps += len(s.Gaps)
		agg.FlaggedGaps += s.FlaggedGaps()
		agg.OrphanCitations += s.OrphanCitations

		for _, c := range s.Claims {
			if c.HasCitation {
				agg.CitedClaims++
			}
		}

		if s.FirstGapTime != nil {
			firstGapTimes = append(firstGapTimes, *s.FirstGapTime)
		}
	}

	agg.CitationVerificationRate = atLeast(
		rate(agg.VerifiedClaims, agg.TotalClaims), agg.TotalClaims,
		model.TargetCitationVerification,
		"Claims with Verifiable Citations", "%",
	)

	// Computed from its own counter, not as 1 - verification rate: "false"
	// and "uncited" are distinct failure reasons
	agg.FalseUncitedRate = atMost(
		rate(agg.FalseUncitedClaims, agg.TotalClaims), agg.TotalClaims,
		model.TargetFalseUncited,
		"False/Uncited Claims", "%",
	)

	agg.DemographicFlagRate = atLeast(
		rate(agg.FlaggedGaps, agg.TotalGaps), agg.TotalGaps,
		model.TargetDemographicFlagging,
		"Gaps Flagging Demographics", "%",
	)

	agg.MedianTimeToFirstGap = atMost(
		median(firstGapTimes), len(firstGapTimes),
		model.TargetTimeToFirstGap,
		"Time to First Vetted Gap", "s",
	)

	reproRate, reproPop := a.comparator.Rate(sessions)
	agg.ReproducibilityRate = atLeast(
		reproRate, reproPop,
		model.TargetReproducibility,
		"Reproducibility Rate", "%",
	)

	agg.AllTargetsMet = true
	for _, m := range agg.Metrics() {
		if !m.Met {
			agg.AllTargetsMet = false
			break
		}
	}

	return agg, nil
}

// rate is a guarded division: an empty denominator yields 0, with the
// undefined state carried by the metric's Samples field
func rate(num, den int) float64 {
	if den == 0 {
		return 0.0
	}
	return float64(num) / float64(den)
}

// median returns the sorted middle element (upper middle for even counts)
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

// atLeast builds a metric whose target is a floor
func atLeast(value float64, samples int, target float64, label, unit string) model.Metric {
	return model.Metric{
		Value:   value,
		Target:  target,
		Met:     samples > 0 && value >= target,
		Label:   label,
		Unit:    unit,
		Samples: samples,
	}
}

// atMost builds a metric whose target is a ceiling
func atMost(value float64, samples int, target float64, label, unit string) model.Metric {
	return model.Metric{
		Value:   value,
		Target:  target,
		Met:     samples > 0 && value <= target,
		Label:   label,
		Unit:    unit,
		Samples: samples,
	}
}
