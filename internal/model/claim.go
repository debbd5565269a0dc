package model

// Claim represents a factual statement extracted from one response
type Claim struct {
	Text        string `json:"text"`                // The claim text itself
	Position    int    `json:"position"`            // Byte offset of the claim start in the response
	Turn        int    `json:"turn"`                // Turn index in the session (0-based)
	HasCitation bool   `json:"has_citation"`        // Whether at least one citation was attributed
	IsVerified  bool   `json:"is_verified"`         // Whether a well-formed citation backs the claim
	Heuristic   string `json:"heuristic,omitempty"` // Which extraction rule accepted the unit
}

// Citation represents a textual reference pattern found in a response
type Citation struct {
	RawText       string       `json:"raw_text"`                 // The matched citation text
	Kind          CitationKind `json:"kind"`                     // Pattern family that matched
	Rule          string       `json:"rule,omitempty"`           // Name of the matching rule
	Position      int          `json:"position"`                 // Byte offset of the match start
	ClaimIndex    int          `json:"claim_index"`              // Index of the attributed claim, -1 if orphaned
	MatchedCorpus string       `json:"matched_corpus,omitempty"` // ID of the matched literature record, if any
}

// Orphaned reports whether the citation could not be attributed to a claim
func (c Citation) Orphaned() bool {
	return c.ClaimIndex < 0
}

// CitationKind classifies the citation pattern family
type CitationKind string

const (
	CitationNumbered   CitationKind = "numbered"        // [1], [12]
	CitationAuthorYear CitationKind = "author_year"     // (Smith, 2020), Smith et al. 2020
	CitationURL        CitationKind = "url"             // bare URLs plus doi/arXiv/PMID locators
	CitationTitleRef   CitationKind = "title_reference" // quoted paper title near study keywords
)
