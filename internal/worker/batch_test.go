package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/medlens/internal/model"
)

type fakeRunner struct {
	failFor string
}

func (f *fakeRunner) RunSession(ctx context.Context, meta model.SessionMeta, queries []string) (model.Transcript, error) {
	if meta.SessionID == f.failFor {
		return model.Transcript{}, errors.New("provider unavailable")
	}

	t := model.Transcript{SessionMeta: meta}
	for i, q := range queries {
		t.Turns = append(t.Turns, model.Turn{
			Query:     q,
			Response:  fmt.Sprintf("response to %q", q),
			Timestamp: float64(i),
		})
	}
	return t, nil
}

func TestBatchRunsEverySessionPerSet(t *testing.T) {
	seed := int64(42)
	b := NewBatchProcessor(&fakeRunner{}, 3)

	querySets := [][]string{
		{"analyze bias in dermatology", "what are the gaps?"},
		{"analyze bias in cardiology"},
	}

	transcripts, errs := b.Run(context.Background(), querySets, 3, "pubmed", &seed)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(transcripts) != 6 {
		t.Fatalf("transcripts = %d, want 6 (3 runs x 2 sets)", len(transcripts))
	}

	ids := make([]string, 0, len(transcripts))
	for _, tr := range transcripts {
		ids = append(ids, tr.SessionID)
		if tr.Corpus != "pubmed" || tr.Seed == nil || *tr.Seed != 42 {
			t.Errorf("session meta not propagated: %+v", tr.SessionMeta)
		}
	}
	sort.Strings(ids)
	want := []string{"session_0_0", "session_0_1", "session_1_0", "session_1_1", "session_2_0", "session_2_1"}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Errorf("session IDs = %v, want %v", ids, want)
	}
}

func TestBatchDropsFailedSessionsEntirely(t *testing.T) {
	b := NewBatchProcessor(&fakeRunner{failFor: "session_0_1"}, 2)

	querySets := [][]string{{"q1"}, {"q2"}}
	transcripts, errs := b.Run(context.Background(), querySets, 1, "pubmed", nil)

	if len(transcripts) != 1 {
		t.Errorf("failed session must be dropped, got %d transcripts", len(transcripts))
	}
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "session_0_1") {
		t.Errorf("error must name the failed session: %v", errs)
	}
}

func TestBatchRunsLargeBatchOnOneWorker(t *testing.T) {
	// 5 runs over 3 sets is well beyond what a one-worker pool can buffer
	b := NewBatchProcessor(&fakeRunner{}, 1)

	type outcome struct {
		transcripts []model.Transcript
		errs        []error
	}
	done := make(chan outcome, 1)
	go func() {
		transcripts, errs := b.Run(context.Background(), DefaultQuerySets(), 5, "pubmed", nil)
		done <- outcome{transcripts, errs}
	}()

	select {
	case out := <-done:
		if len(out.errs) != 0 {
			t.Fatalf("unexpected errors: %v", out.errs)
		}
		if len(out.transcripts) != 15 {
			t.Errorf("transcripts = %d, want 15 (5 runs x 3 sets)", len(out.transcripts))
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("Run wedged on a batch larger than the pool buffers")
	}
}

type stallingRunner struct{}

func (s *stallingRunner) RunSession(ctx context.Context, meta model.SessionMeta, queries []string) (model.Transcript, error) {
	<-ctx.Done()
	return model.Transcript{}, ctx.Err()
}

func TestBatchRunHonorsContextDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	b := NewBatchProcessor(&stallingRunner{}, 2)

	done := make(chan []model.Transcript, 1)
	go func() {
		transcripts, _ := b.Run(ctx, [][]string{{"q1"}, {"q2"}}, 1, "pubmed", nil)
		done <- transcripts
	}()

	select {
	case transcripts := <-done:
		if len(transcripts) != 0 {
			t.Errorf("stalled sessions must not produce transcripts: %d", len(transcripts))
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("Run outlived its context deadline")
	}
}

func TestReadQuerySets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.json")
	content := `[["analyze bias in dermatology","what are the gaps?"],["analyze bias in oncology"]]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	sets, err := ReadQuerySets(path)
	if err != nil {
		t.Fatalf("ReadQuerySets: %v", err)
	}
	if len(sets) != 2 || len(sets[0]) != 2 || sets[1][0] != "analyze bias in oncology" {
		t.Errorf("parsed sets wrong: %+v", sets)
	}

	if _, err := ReadQuerySets(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Errorf("missing file must fail")
	}
}

func TestDefaultQuerySetsNonEmpty(t *testing.T) {
	sets := DefaultQuerySets()
	if len(sets) == 0 {
		t.Fatalf("default query sets must exist")
	}
	for i, set := range sets {
		if len(set) == 0 {
			t.Errorf("set %d is empty", i)
		}
	}
}
