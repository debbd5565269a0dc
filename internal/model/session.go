package model

import (
	"strconv"
	"time"
)

// Turn is one query/response exchange in a session transcript
type Turn struct {
	Query     string  `json:"query"`
	Response  string  `json:"response"`
	Timestamp float64 `json:"timestamp"` // Seconds since session start
}

// SessionMeta identifies a session for reproducibility grouping
type SessionMeta struct {
	SessionID string `json:"session_id"`
	Corpus    string `json:"corpus"`
	Seed      *int64 `json:"seed,omitempty"` // nil excludes the session from reproducibility
}

// Transcript is the external input contract: metadata plus ordered turns
type Transcript struct {
	SessionMeta
	Turns []Turn `json:"turns"`
}

// SessionMetrics is the immutable per-session record produced at end of session
type SessionMetrics struct {
	SessionID string    `json:"session_id"`
	Corpus    string    `json:"corpus"`
	Seed      *int64    `json:"seed,omitempty"`
	StartedAt time.Time `json:"started_at"`
	Duration  float64   `json:"duration_seconds"`

	Claims          []Claim    `json:"claims"`
	Citations       []Citation `json:"citations"`
	Gaps            []Gap      `json:"gaps"`
	OrphanCitations int        `json:"orphan_citations"`
	FirstGapTime    *float64   `json:"first_gap_time,omitempty"` // Seconds to first vetted gap

	// ResponseText is the concatenated response text, kept for
	// reproducibility comparison between sessions sharing (corpus, seed).
	ResponseText string `json:"raw_response_text"`
}

// VerifiedClaims counts claims backed by an attributed citation
func (s *SessionMetrics) VerifiedClaims() int {
	n := 0
	for _, c := range s.Claims {
		if c.IsVerified {
			n++
		}
	}
	return n
}

// FalseUncitedClaims counts claims that are uncited or unverified.
// Tracked separately from (total - verified): a claim can be cited but
// unverified once stronger checks land, and the two rates must not be
// conflated by the aggregator.
func (s *SessionMetrics) FalseUncitedClaims() int {
	n := 0
	for _, c := range s.Claims {
		if !c.HasCitation || !c.IsVerified {
			n++
		}
	}
	return n
}

// FlaggedGaps counts gaps naming demographic or geographic under-representation
func (s *SessionMetrics) FlaggedGaps() int {
	n := 0
	for _, g := range s.Gaps {
		if g.Flagged() {
			n++
		}
	}
	return n
}

// GroupKey returns the reproducibility grouping key, and false when the
// session has no seed and cannot be judged reproducible.
func (s *SessionMetrics) GroupKey() (string, bool) {
	if s.Seed == nil {
		return "", false
	}
	return groupKey(s.Corpus, *s.Seed), true
}

func groupKey(corpus string, seed int64) string {
	return corpus + "\x00" + strconv.FormatInt(seed, 10)
}
