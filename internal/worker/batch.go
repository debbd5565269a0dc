package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ppiankov/medlens/internal/model"
)

// SessionRunner produces one session transcript from a query list. The
// conversation layer implements this; the batch driver never cares how
// responses are generated.
type SessionRunner interface {
	RunSession(ctx context.Context, meta model.SessionMeta, queries []string) (model.Transcript, error)
}

// SessionJob runs one session through the runner
type SessionJob struct {
	Meta    model.SessionMeta
	Queries []string
	Runner  SessionRunner
}

// SessionResult is a completed (or failed) session
type SessionResult struct {
	Meta       model.SessionMeta
	Transcript model.Transcript
	Error      error
}

// GetError returns the job error
func (r *SessionResult) GetError() error {
	return r.Error
}

// Execute runs the session
func (j *SessionJob) Execute(ctx context.Context) Result {
	transcript, err := j.Runner.RunSession(ctx, j.Meta, j.Queries)
	return &SessionResult{
		Meta:       j.Meta,
		Transcript: transcript,
		Error:      err,
	}
}

// BatchProcessor fans session runs out to a worker pool. Sessions are
// independent during execution; the pool's Wait acts as the join barrier
// required before any reproducibility comparison.
type BatchProcessor struct {
	runner      SessionRunner
	concurrency int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(runner SessionRunner, concurrency int) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
	}
}

// Run executes sessionsPerSet sessions for every query set and returns the
// completed transcripts. Failed sessions are dropped entirely and reported
// in the error list; they never contribute partial data.
func (b *BatchProcessor) Run(ctx context.Context, querySets [][]string, sessionsPerSet int, corpus string, seed *int64) ([]model.Transcript, []error) {
	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for run := 0; run < sessionsPerSet; run++ {
		for setIdx, queries := range querySets {
			pool.Submit(&SessionJob{
				Meta: model.SessionMeta{
					SessionID: fmt.Sprintf("session_%d_%d", run, setIdx),
					Corpus:    corpus,
					Seed:      seed,
				},
				Queries: queries,
				Runner:  b.runner,
			})
		}
	}

	results := pool.Wait()

	var transcripts []model.Transcript
	var errs []error
	for _, r := range results {
		sr := r.(*SessionResult)
		if sr.Error != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", sr.Meta.SessionID, sr.Error))
			continue
		}
		transcripts = append(transcripts, sr.Transcript)
	}

	return transcripts, errs
}

// ReadQuerySets loads query sets from a JSON file: an array of string
// arrays, one per session template.
func ReadQuerySets(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open query file: %w", err)
	}

	var sets [][]string
	if err := json.Unmarshal(data, &sets); err != nil {
		return nil, fmt.Errorf("parse query file %s: %w", path, err)
	}

	return sets, nil
}

// DefaultQuerySets returns the built-in bias-analysis query sets
func DefaultQuerySets() [][]string {
	return [][]string{
		{"analyze bias in dermatology", "what are the gaps?"},
		{"analyze bias in cardiology", "show me mitigation methods"},
		{"analyze bias in radiology"},
	}
}
