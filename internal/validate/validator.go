// Package validate checks that URL-kind citations resolve to live documents.
// Liveness is advisory: it feeds the report's citation_liveness summary,
// never the verification metric.
package validate

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/medlens/internal/model"
	"github.com/ppiankov/medlens/internal/util"
	"github.com/ppiankov/medlens/internal/worker"
)

// Result is the liveness outcome for one citation
type Result struct {
	RawText string `json:"raw_text"`
	URL     string `json:"url"`
	Alive   bool   `json:"alive"`
	Status  int    `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Validator probes citation URLs concurrently
type Validator struct {
	httpClient  *http.Client
	limiter     *worker.Limiter
	robots      *util.RobotsChecker
	userAgent   string
	concurrency int
	maxRetries  int
	sleep       func(time.Duration) // injectable for tests
}

// NewValidator builds a validator from config
func NewValidator(cfg *model.Config) *Validator {
	concurrency := cfg.Concurrency.ValidationWorkers
	if concurrency <= 0 {
		concurrency = 4
	}

	return &Validator{
		httpClient: &http.Client{
			Timeout: cfg.HTTP.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
			},
		},
		limiter:     worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		robots:      util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout),
		userAgent:   cfg.HTTP.UserAgent,
		concurrency: concurrency,
		maxRetries:  2,
		sleep:       time.Sleep,
	}
}

// Validate probes every URL-kind citation and returns one result per
// probed citation, in input order. Non-URL citations are skipped.
func (v *Validator) Validate(ctx context.Context, citations []model.Citation) []Result {
	type job struct {
		index int
		raw   string
		url   string
	}

	var jobs []job
	for _, c := range citations {
		if c.Kind != model.CitationURL {
			continue
		}
		if u := ResolveURL(c.RawText); u != "" {
			jobs = append(jobs, job{index: len(jobs), raw: c.RawText, url: u})
		}
	}

	results := make([]Result, len(jobs))
	sem := make(chan struct{}, v.concurrency)
	var wg sync.WaitGroup

	for _, j := range jobs {
		wg.Add(1)
		sem <- struct{}{}
		go func(j job) {
			defer wg.Done()
			defer func() { <-sem }()
			results[j.index] = v.probe(ctx, j.raw, j.url)
		}(j)
	}
	wg.Wait()

	return results
}

func (v *Validator) probe(ctx context.Context, raw, url string) Result {
	result := Result{RawText: raw, URL: url}

	if !v.robots.IsAllowed(ctx, url) {
		result.Error = "disallowed by robots.txt"
		return result
	}

	var lastErr error
	for attempt := 0; attempt <= v.maxRetries; attempt++ {
		if attempt > 0 {
			v.sleep(time.Duration(attempt) * 500 * time.Millisecond)
		}

		if err := v.limiter.Wait(ctx, url); err != nil {
			result.Error = err.Error()
			return result
		}

		status, err := v.head(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}

		result.Status = status
		result.Alive = status >= 200 && status < 400
		// Some publishers reject HEAD; retry with GET before giving up
		if status == http.StatusMethodNotAllowed {
			if getStatus, getErr := v.get(ctx, url); getErr == nil {
				result.Status = getStatus
				result.Alive = getStatus >= 200 && getStatus < 400
			}
		}
		return result
	}

	if lastErr != nil {
		result.Error = lastErr.Error()
	}
	return result
}

func (v *Validator) head(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", v.userAgent)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

func (v *Validator) get(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", v.userAgent)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

var (
	doiRefRe   = regexp.MustCompile(`10\.\d{4,9}/[^\s"'<>\])]+`)
	arxivRefRe = regexp.MustCompile(`(?i)arxiv:\s*(\d{4}\.\d{4,5})`)
	pmidRefRe  = regexp.MustCompile(`(?i)pmid:?\s*(\d+)`)
)

// ResolveURL turns a URL-kind citation's raw text into a probeable URL.
// Bare identifiers get their canonical resolver prefix.
func ResolveURL(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return strings.TrimRight(raw, ".,;)")
	}

	if m := arxivRefRe.FindStringSubmatch(raw); m != nil {
		return "https://arxiv.org/abs/" + m[1]
	}
	if m := pmidRefRe.FindStringSubmatch(raw); m != nil {
		return "https://pubmed.ncbi.nlm.nih.gov/" + m[1] + "/"
	}
	if doi := doiRefRe.FindString(raw); doi != "" {
		return "https://doi.org/" + doi
	}

	return ""
}
