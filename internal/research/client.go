// Package research fetches literature metadata from PubMed, OpenAlex and
// arXiv so detected citations can be matched against a real corpus. All
// outbound traffic is rate limited per host, checked against robots.txt,
// and cached.
package research

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/medlens/internal/cache"
	"github.com/ppiankov/medlens/internal/model"
	"github.com/ppiankov/medlens/internal/util"
	"github.com/ppiankov/medlens/internal/worker"
)

const (
	pubmedBaseURL   = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	openAlexBaseURL = "https://api.openalex.org"
	arxivBaseURL    = "http://export.arxiv.org/api/query"

	// NCBI allows 3 requests per second without an API key
	pubmedRateLimit = 3.0
)

// Paper is one literature record in the reference corpus
type Paper struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Abstract string `json:"abstract,omitempty"`
	Authors  string `json:"authors,omitempty"`
	Year     int    `json:"year,omitempty"`
	DOI      string `json:"doi,omitempty"`
	URL      string `json:"url,omitempty"`
	Source   string `json:"source"`
}

// Client queries the literature APIs
type Client struct {
	httpClient *http.Client
	limiter    *worker.Limiter
	robots     *util.RobotsChecker
	store      cache.Cache // nil disables caching
	userAgent  string
	maxResults int
	cacheTTL   time.Duration

	pubmedBase   string
	openAlexBase string
	arxivBase    string
}

// NewClient builds a literature client from config. A nil cache disables
// response caching.
func NewClient(cfg *model.Config, store cache.Cache) *Client {
	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	limiter.SetHostRate("eutils.ncbi.nlm.nih.gov", pubmedRateLimit, 3)

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.HTTP.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
			},
		},
		limiter:    limiter,
		robots:     util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout),
		store:      store,
		userAgent:  cfg.HTTP.UserAgent,
		maxResults: cfg.Research.MaxResults,
		cacheTTL:   cfg.Cache.DiskTTL,

		pubmedBase:   pubmedBaseURL,
		openAlexBase: openAlexBaseURL,
		arxivBase:    arxivBaseURL,
	}
}

// Search fans the query across all sources and pools the results. Source
// failures are collected, not fatal: a corpus built from the surviving
// sources is still useful.
func (c *Client) Search(ctx context.Context, query string) ([]Paper, []error) {
	var papers []Paper
	var errs []error

	for _, search := range []func(context.Context, string) ([]Paper, error){
		c.SearchPubMed,
		c.SearchOpenAlex,
		c.SearchArxiv,
	} {
		found, err := search(ctx, query)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		papers = append(papers, found...)
	}

	return papers, errs
}

type pubmedSearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type pubmedSummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type pubmedSummary struct {
	UID     string `json:"uid"`
	Title   string `json:"title"`
	PubDate string `json:"pubdate"`
	DOI     string `json:"elocationid"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
}

// SearchPubMed runs esearch then esummary against the NCBI E-utilities
func (c *Client) SearchPubMed(ctx context.Context, query string) ([]Paper, error) {
	searchURL := fmt.Sprintf("%s/esearch.fcgi?db=pubmed&retmode=json&retmax=%d&term=%s",
		c.pubmedBase, c.maxResults, url.QueryEscape(query))

	body, err := c.fetch(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("pubmed search: %w", err)
	}

	var search pubmedSearchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		return nil, fmt.Errorf("pubmed search: parse response: %w", err)
	}

	ids := search.ESearchResult.IDList
	if len(ids) == 0 {
		return nil, nil
	}

	summaryURL := fmt.Sprintf("%s/esummary.fcgi?db=pubmed&retmode=json&id=%s",
		c.pubmedBase, strings.Join(ids, ","))

	body, err = c.fetch(ctx, summaryURL)
	if err != nil {
		return nil, fmt.Errorf("pubmed summary: %w", err)
	}

	var summaries pubmedSummaryResponse
	if err := json.Unmarshal(body, &summaries); err != nil {
		return nil, fmt.Errorf("pubmed summary: parse response: %w", err)
	}

	papers := make([]Paper, 0, len(ids))
	for _, id := range ids {
		raw, exists := summaries.Result[id]
		if !exists {
			continue
		}
		var s pubmedSummary
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}

		authors := make([]string, 0, len(s.Authors))
		for _, a := range s.Authors {
			authors = append(authors, a.Name)
		}

		papers = append(papers, Paper{
			ID:      "pmid:" + s.UID,
			Title:   StripMarkup(s.Title),
			Authors: strings.Join(authors, "; "),
			Year:    yearFrom(s.PubDate),
			DOI:     normalizeDOI(s.DOI),
			URL:     "https://pubmed.ncbi.nlm.nih.gov/" + s.UID + "/",
			Source:  "pubmed",
		})
	}

	return papers, nil
}

type openAlexResponse struct {
	Results []struct {
		ID              string           `json:"id"`
		Title           string           `json:"title"`
		PublicationYear int              `json:"publication_year"`
		DOI             string           `json:"doi"`
		AbstractIndex   map[string][]int `json:"abstract_inverted_index"`
		Authorships     []struct {
			Author struct {
				DisplayName string `json:"display_name"`
			} `json:"author"`
		} `json:"authorships"`
	} `json:"results"`
}

// SearchOpenAlex queries the OpenAlex works endpoint. Abstracts arrive as
// an inverted index and are reassembled into plain text.
func (c *Client) SearchOpenAlex(ctx context.Context, query string) ([]Paper, error) {
	searchURL := fmt.Sprintf("%s/works?search=%s&per-page=%d",
		c.openAlexBase, url.QueryEscape(query), c.maxResults)

	body, err := c.fetch(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("openalex search: %w", err)
	}

	var parsed openAlexResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("openalex search: parse response: %w", err)
	}

	papers := make([]Paper, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		authors := make([]string, 0, len(r.Authorships))
		for _, a := range r.Authorships {
			authors = append(authors, a.Author.DisplayName)
		}

		papers = append(papers, Paper{
			ID:       r.ID,
			Title:    StripMarkup(r.Title),
			Abstract: reassembleAbstract(r.AbstractIndex),
			Authors:  strings.Join(authors, "; "),
			Year:     r.PublicationYear,
			DOI:      normalizeDOI(r.DOI),
			URL:      r.ID,
			Source:   "openalex",
		})
	}

	return papers, nil
}

type arxivFeed struct {
	XMLName xml.Name     `xml:"feed"`
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string   `xml:"id"`
	Title     string   `xml:"title"`
	Summary   string   `xml:"summary"`
	Published string   `xml:"published"`
	Authors   []string `xml:"author>name"`
}

// SearchArxiv queries the arXiv Atom API
func (c *Client) SearchArxiv(ctx context.Context, query string) ([]Paper, error) {
	searchURL := fmt.Sprintf("%s?search_query=all:%s&max_results=%d",
		c.arxivBase, url.QueryEscape(query), c.maxResults)

	body, err := c.fetch(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("arxiv search: %w", err)
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("arxiv search: parse feed: %w", err)
	}

	papers := make([]Paper, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		papers = append(papers, Paper{
			ID:       e.ID,
			Title:    collapseWhitespace(e.Title),
			Abstract: collapseWhitespace(e.Summary),
			Authors:  strings.Join(e.Authors, "; "),
			Year:     yearFrom(e.Published),
			URL:      e.ID,
			Source:   "arxiv",
		})
	}

	return papers, nil
}

// fetch runs one GET with rate limiting, robots.txt checking and caching
func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	key := cache.Key(rawURL)
	if c.store != nil {
		if body, found := c.store.Get(key); found {
			return body, nil
		}
	}

	allowed, delay, err := c.robots.CanFetch(ctx, rawURL)
	if err == nil && !allowed {
		return nil, fmt.Errorf("disallowed by robots.txt: %s", rawURL)
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err := c.limiter.Wait(ctx, rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if c.store != nil {
		_ = c.store.Set(key, body, c.cacheTTL)
	}

	return body, nil
}

// reassembleAbstract rebuilds plain text from OpenAlex's inverted index
func reassembleAbstract(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}

	maxPos := -1
	for _, positions := range index {
		for _, p := range positions {
			if p > maxPos {
				maxPos = p
			}
		}
	}

	words := make([]string, maxPos+1)
	for word, positions := range index {
		for _, p := range positions {
			if p >= 0 && p <= maxPos {
				words[p] = word
			}
		}
	}

	return strings.TrimSpace(strings.Join(words, " "))
}

// yearFrom extracts a 4-digit year prefix from a date string like
// "2022 Mar 15" or "2021-11-15T18:01:33Z"
func yearFrom(date string) int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// normalizeDOI strips URL and label prefixes so DOIs compare equal across
// sources ("doi: 10.1/x", "https://doi.org/10.1/x" -> "10.1/x")
func normalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	lower := strings.ToLower(doi)
	if strings.HasPrefix(lower, "doi:") {
		doi = strings.TrimSpace(doi[4:])
	}
	return doi
}
