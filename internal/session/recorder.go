// Package session accumulates claims, citations, gaps and timing events
// for one conversation session. Each Recorder owns its own lists: there is
// no shared tracker state, so independent sessions can run concurrently.
package session

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/medlens/internal/extract"
	"github.com/ppiankov/medlens/internal/model"
)

// Recorder collects per-session metrics with the lifecycle
// New -> RecordTurn... -> End. After End the recorder is spent; the
// returned SessionMetrics is immutable.
type Recorder struct {
	meta      model.SessionMeta
	startedAt time.Time

	claims    *extract.ClaimExtractor
	citations *extract.CitationDetector
	gaps      *extract.GapDetector

	recordedClaims    []model.Claim
	recordedCitations []model.Citation
	recordedGaps      []model.Gap
	orphans           int
	firstGapTime      *float64
	responses         []string
	turns             int
	lastTimestamp     float64
	ended             bool
}

// NewRecorder creates a recorder for one session. An empty SessionID is
// replaced with a generated one.
func NewRecorder(meta model.SessionMeta, cfg model.ExtractionConfig) *Recorder {
	if meta.SessionID == "" {
		meta.SessionID = "session-" + uuid.NewString()
	}
	return &Recorder{
		meta:      meta,
		startedAt: time.Now().UTC(),
		claims:    extract.NewClaimExtractor(cfg.MinClaimLength, cfg.MaxClaimLength),
		citations: extract.NewCitationDetector(cfg.AttributionWindow),
		gaps:      extract.NewGapDetector(),
	}
}

// RecordTurn extracts claims, citations and gaps from one turn and folds
// them into the session. The turn timestamp is seconds since session start.
func (r *Recorder) RecordTurn(turn model.Turn) {
	if r.ended {
		return
	}

	base := len(r.recordedClaims)
	turnIdx := r.turns

	claims := r.claims.Extract(turn.Response)
	citations := r.citations.Detect(turn.Response)
	claims, citations = r.citations.Attribute(turn.Response, claims, citations)

	for i := range claims {
		claims[i].Turn = turnIdx
	}
	for i := range citations {
		if citations[i].ClaimIndex >= 0 {
			citations[i].ClaimIndex += base
		}
	}

	gaps := r.gaps.Detect(claims, turn.Timestamp)
	for i := range gaps {
		gaps[i].ClaimIndex += base
	}

	r.recordedClaims = append(r.recordedClaims, claims...)
	r.recordedCitations = append(r.recordedCitations, citations...)
	r.recordedGaps = append(r.recordedGaps, gaps...)
	r.orphans += extract.CountOrphans(citations)

	// The clock metric starts at the first vetted gap only
	if r.firstGapTime == nil {
		for _, g := range gaps {
			if g.Vetted() {
				t := g.Timestamp
				r.firstGapTime = &t
				break
			}
		}
	}

	r.responses = append(r.responses, turn.Response)
	r.turns++
	if turn.Timestamp > r.lastTimestamp {
		r.lastTimestamp = turn.Timestamp
	}
}

// End finalizes the session and returns its metrics record
func (r *Recorder) End() model.SessionMetrics {
	r.ended = true

	return model.SessionMetrics{
		SessionID:       r.meta.SessionID,
		Corpus:          r.meta.Corpus,
		Seed:            r.meta.Seed,
		StartedAt:       r.startedAt,
		Duration:        r.lastTimestamp,
		Claims:          r.recordedClaims,
		Citations:       r.recordedCitations,
		Gaps:            r.recordedGaps,
		OrphanCitations: r.orphans,
		FirstGapTime:    r.firstGapTime,
		ResponseText:    strings.Join(r.responses, "\n"),
	}
}
