package research

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/medlens/internal/model"
)

var (
	doiInTextRe  = regexp.MustCompile(`10\.\d{4,9}/[^\s"'<>\])]+`)
	pmidInTextRe = regexp.MustCompile(`pubmed\.ncbi\.nlm\.nih\.gov/(\d+)`)
	yearInTextRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	surnameRe    = regexp.MustCompile(`^\(?\s*([A-Z][A-Za-z'\-]+)`)
)

// MatchCitations resolves detected citations against the literature corpus
// and fills MatchedCorpus with the matched paper's ID. Numbered markers
// like [3] refer to a response-local reference list and cannot be resolved
// against an external corpus, so they pass through unmatched.
func MatchCitations(citations []model.Citation, papers []Paper) []model.Citation {
	if len(papers) == 0 {
		return citations
	}

	matched := make([]model.Citation, len(citations))
	copy(matched, citations)

	for i := range matched {
		switch matched[i].Kind {
		case model.CitationURL:
			matched[i].MatchedCorpus = matchURL(matched[i].RawText, papers)
		case model.CitationAuthorYear:
			matched[i].MatchedCorpus = matchAuthorYear(matched[i].RawText, papers)
		case model.CitationTitleRef:
			matched[i].MatchedCorpus = matchTitle(matched[i].RawText, papers)
		}
	}

	return matched
}

func matchURL(raw string, papers []Paper) string {
	if doi := doiInTextRe.FindString(raw); doi != "" {
		doi = normalizeDOI(doi)
		for _, p := range papers {
			if p.DOI != "" && strings.EqualFold(p.DOI, doi) {
				return p.ID
			}
		}
	}

	if m := pmidInTextRe.FindStringSubmatch(raw); m != nil {
		pmid := "pmid:" + m[1]
		for _, p := range papers {
			if p.ID == pmid {
				return p.ID
			}
		}
	}

	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/.")
	for _, p := range papers {
		if p.URL == "" {
			continue
		}
		if strings.EqualFold(strings.TrimRight(p.URL, "/"), trimmed) {
			return p.ID
		}
	}

	return ""
}

func matchAuthorYear(raw string, papers []Paper) string {
	yearStr := yearInTextRe.FindString(raw)
	if yearStr == "" {
		return ""
	}
	year, _ := strconv.Atoi(yearStr)

	m := surnameRe.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	surname := strings.ToLower(m[1])

	for _, p := range papers {
		if p.Year != year {
			continue
		}
		if strings.Contains(strings.ToLower(p.Authors), surname) {
			return p.ID
		}
	}

	return ""
}

func matchTitle(raw string, papers []Paper) string {
	title := normalizeTitle(raw)
	if title == "" {
		return ""
	}

	for _, p := range papers {
		candidate := normalizeTitle(p.Title)
		if candidate == "" {
			continue
		}
		if candidate == title || strings.Contains(candidate, title) || strings.Contains(title, candidate) {
			return p.ID
		}
	}

	return ""
}

// normalizeTitle lowercases and strips quotes and punctuation so titles
// compare across quoting styles
func normalizeTitle(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
