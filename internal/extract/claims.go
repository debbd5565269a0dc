package extract

import (
	"strings"
	"unicode"

	"github.com/ppiankov/medlens/internal/model"
)

// ClaimExtractor splits response text into sentence-level factual claims
type ClaimExtractor struct {
	minLength     int
	maxLength     int
	questionWords []string
}

// NewClaimExtractor creates a claim extractor with the given length bounds
func NewClaimExtractor(minLength, maxLength int) *ClaimExtractor {
	if minLength <= 0 {
		minLength = 20
	}
	if maxLength <= 0 {
		maxLength = 600
	}
	return &ClaimExtractor{
		minLength: minLength,
		maxLength: maxLength,
		questionWords: []string{
			"what", "how", "why", "when", "where", "who",
			"can you", "could you", "would you", "do you",
		},
	}
}

// Extract splits the response into candidate claims. It is deterministic,
// order-preserving and has no side effects; malformed or empty input yields
// an empty slice. Positions are byte offsets into responseText and strictly
// increasing.
func (e *ClaimExtractor) Extract(responseText string) []model.Claim {
	units := splitUnits(responseText)

	var claims []model.Claim
	seen := make(map[string]bool)

	for _, u := range units {
		text := u.text
		if len(text) < e.minLength || len(text) > e.maxLength {
			continue
		}
		if e.isQuestion(text) {
			continue
		}
		if !hasFactualContent(text) {
			continue
		}

		key := strings.ToLower(text)
		if seen[key] {
			continue
		}
		seen[key] = true

		claims = append(claims, model.Claim{
			Text:      text,
			Position:  u.start,
			Heuristic: u.heuristic,
		})
	}

	return claims
}

// unit is a candidate claim span within the response
type unit struct {
	text      string
	start     int
	heuristic string
}

// splitUnits breaks text into sentence-like units on terminators and
// list-marker boundaries, preserving byte offsets.
func splitUnits(text string) []unit {
	var units []unit
	start := 0
	heuristic := "sentence"

	flush := func(end int) {
		raw := text[start:end]
		trimmed, off := trimOffsets(raw)
		if trimmed != "" {
			units = append(units, unit{text: trimmed, start: start + off, heuristic: heuristic})
		}
		start = end
	}

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			// Terminator counts only before whitespace or end of text,
			// which skips decimals and most abbreviations
			if i+1 >= len(text) || text[i+1] == ' ' || text[i+1] == '\t' || text[i+1] == '\n' {
				flush(i + 1)
				heuristic = "sentence"
			}
		case '\n':
			// A newline followed by a list marker starts a new unit
			if rest := text[i+1:]; startsListItem(rest) {
				flush(i + 1)
				heuristic = "list_item"
			}
		}
	}
	flush(len(text))

	return units
}

// startsListItem reports whether s begins with a bullet or numbered marker
func startsListItem(s string) bool {
	s = strings.TrimLeft(s, " \t")
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "- ") || strings.HasPrefix(s, "* ") || strings.HasPrefix(s, "• ") {
		return true
	}
	// "1. " or "12) "
	j := 0
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j > 0 && j < len(s) && (s[j] == '.' || s[j] == ')') {
		return j+1 < len(s) && s[j+1] == ' '
	}
	return false
}

// trimOffsets trims surrounding whitespace and list markers, returning the
// trimmed text and the byte offset of its start within raw.
func trimOffsets(raw string) (string, int) {
	off := 0
	for off < len(raw) && isSpaceByte(raw[off]) {
		off++
	}

	// Strip a leading list marker so the claim text is the statement itself
	rest := raw[off:]
	if m := listMarkerLen(rest); m > 0 {
		off += m
	}

	end := len(raw)
	for end > off && isSpaceByte(raw[end-1]) {
		end--
	}

	return raw[off:end], off
}

func listMarkerLen(s string) int {
	if strings.HasPrefix(s, "- ") || strings.HasPrefix(s, "* ") {
		return 2
	}
	if strings.HasPrefix(s, "• ") {
		return len("• ")
	}
	j := 0
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j > 0 && j+1 < len(s) && (s[j] == '.' || s[j] == ')') && s[j+1] == ' ' {
		return j + 2
	}
	return 0
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// isQuestion filters out interrogative units: questions are conversation,
// not claims.
func (e *ClaimExtractor) isQuestion(text string) bool {
	if strings.HasSuffix(text, "?") {
		return true
	}
	lower := strings.ToLower(text)
	for _, w := range e.questionWords {
		if strings.HasPrefix(lower, w+" ") {
			return true
		}
	}
	return false
}

// hasFactualContent requires either a number or a substantial statement
func hasFactualContent(text string) bool {
	for _, r := range text {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return len(strings.Fields(text)) > 5
}
