package model

// Gap represents a claim describing a data or representation shortcoming
type Gap struct {
	Text             string  `json:"text"`               // The gap statement
	ClaimIndex       int     `json:"claim_index"`        // Index of the underlying claim
	FlagsDemographic bool    `json:"flags_demographic"`  // Mentions demographic under-representation
	FlagsGeographic  bool    `json:"flags_geographic"`   // Mentions geographic under-representation
	HasSources       bool    `json:"has_sources"`        // The underlying claim carries a verified citation
	Timestamp        float64 `json:"timestamp"`          // Seconds since session start
	Keyword          string  `json:"keyword,omitempty"`  // Lexicon term that matched
}

// Flagged reports whether the gap names demographic or geographic under-representation
func (g Gap) Flagged() bool {
	return g.FlagsDemographic || g.FlagsGeographic
}

// Vetted reports whether the gap is backed by at least one attributed citation
func (g Gap) Vetted() bool {
	return g.HasSources
}
