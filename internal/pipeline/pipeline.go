package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/medlens/internal/aggregate"
	"github.com/ppiankov/medlens/internal/model"
	"github.com/ppiankov/medlens/internal/reproduce"
	"github.com/ppiankov/medlens/internal/session"
)

// Pipeline turns transcripts into session metrics and aggregates them into
// the final report
type Pipeline struct {
	config     *model.Config
	aggregator *aggregate.Aggregator
}

// NewPipeline creates a pipeline with the given configuration
func NewPipeline(cfg *model.Config) *Pipeline {
	comparator := reproduce.NewComparator(cfg.Reproducibility.Threshold)
	return &Pipeline{
		config:     cfg,
		aggregator: aggregate.NewAggregator(comparator),
	}
}

// EvaluateTranscript runs one transcript through extraction and returns the
// session's metrics record
func (p *Pipeline) EvaluateTranscript(t model.Transcript) model.SessionMetrics {
	rec := session.NewRecorder(t.SessionMeta, p.config.Extraction)
	for _, turn := range t.Turns {
		rec.RecordTurn(turn)
	}
	return rec.End()
}

// EvaluateBatch evaluates every transcript and aggregates the results into
// a report. The reproducibility comparison runs only here, after all
// sessions have completed.
func (p *Pipeline) EvaluateBatch(transcripts []model.Transcript, corpus string, seed *int64) (*model.Report, error) {
	sessions := make([]model.SessionMetrics, 0, len(transcripts))
	for _, t := range transcripts {
		sessions = append(sessions, p.EvaluateTranscript(t))
	}
	return p.BuildReport(sessions, corpus, seed)
}

// BuildReport aggregates already-evaluated sessions into a report
func (p *Pipeline) BuildReport(sessions []model.SessionMetrics, corpus string, seed *int64) (*model.Report, error) {
	agg, err := p.aggregator.Aggregate(sessions)
	if err != nil {
		return nil, fmt.Errorf("aggregate sessions: %w", err)
	}

	return &model.Report{
		GeneratedAt: time.Now().UTC(),
		Corpus:      corpus,
		Seed:        seed,
		Sessions:    sessions,
		Aggregate:   *agg,
	}, nil
}

// LoadTranscripts reads transcripts from a JSON file: either a single
// transcript object or an array of them.
func LoadTranscripts(path string) ([]model.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcripts: %w", err)
	}

	var list []model.Transcript
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var single model.Transcript
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("parse transcripts %s: %w", path, err)
	}

	return []model.Transcript{single}, nil
}
