package conversation

import (
	"context"
	"strings"
	"testing"

	"github.com/ppiankov/medlens/internal/model"
)

func seedPtr(v int64) *int64 { return &v }

func TestRunSessionAsksForFieldWhenUnknown(t *testing.T) {
	h := NewHandler(nil, nil, 0)

	transcript, err := h.RunSession(context.Background(), model.SessionMeta{SessionID: "s1"}, []string{"analyze bias please"})
	if err != nil {
		t.Fatalf("RunSession: %v", err)
	}
	if len(transcript.Turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(transcript.Turns))
	}
	if transcript.Turns[0].Response != askFieldPrompt {
		t.Errorf("expected field prompt, got %q", transcript.Turns[0].Response)
	}
}

func TestRunSessionRoutesAnalysisAndMitigation(t *testing.T) {
	h := NewHandler(nil, nil, 0)

	queries := []string{"analyze bias in dermatology", "show me mitigation methods"}
	transcript, err := h.RunSession(context.Background(), model.SessionMeta{SessionID: "s1", Seed: seedPtr(42)}, queries)
	if err != nil {
		t.Fatalf("RunSession: %v", err)
	}
	if len(transcript.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(transcript.Turns))
	}

	analysis := transcript.Turns[0].Response
	if !strings.Contains(analysis, "dermatology") {
		t.Errorf("analysis response should mention the field: %q", analysis)
	}
	if !strings.Contains(analysis, "[1]") {
		t.Errorf("analysis response should carry citation markers")
	}
	if !strings.Contains(strings.ToLower(analysis), "underrepresented") {
		t.Errorf("analysis response should describe gaps")
	}

	mitigation := transcript.Turns[1].Response
	if !strings.Contains(strings.ToLower(mitigation), "mitigation") {
		t.Errorf("second turn should be the mitigation response: %q", mitigation)
	}
}

func TestRunSessionFieldPersistsAcrossTurns(t *testing.T) {
	h := NewHandler(nil, nil, 0)

	queries := []string{"analyze bias in cardiology", "what are the gaps?"}
	transcript, err := h.RunSession(context.Background(), model.SessionMeta{SessionID: "s1"}, queries)
	if err != nil {
		t.Fatalf("RunSession: %v", err)
	}
	if got := transcript.Turns[1].Response; got == askFieldPrompt {
		t.Errorf("field context should persist across turns")
	}
}

func TestCannedResponsesDeterministicPerSeed(t *testing.T) {
	h := NewHandler(nil, nil, 0)
	meta := model.SessionMeta{Corpus: "c1", Seed: seedPtr(42)}
	queries := []string{"analyze bias in radiology"}

	first, err := h.RunSession(context.Background(), meta, queries)
	if err != nil {
		t.Fatalf("RunSession: %v", err)
	}
	second, err := h.RunSession(context.Background(), meta, queries)
	if err != nil {
		t.Fatalf("RunSession: %v", err)
	}
	if first.Turns[0].Response != second.Turns[0].Response {
		t.Errorf("same seed should produce identical responses")
	}

	other, err := h.RunSession(context.Background(), model.SessionMeta{Corpus: "c1", Seed: seedPtr(43)}, queries)
	if err != nil {
		t.Fatalf("RunSession: %v", err)
	}
	if first.Turns[0].Response == other.Turns[0].Response {
		t.Errorf("different seeds should produce different analysis variants")
	}
}

func TestTimestampsNonDecreasing(t *testing.T) {
	h := NewHandler(nil, nil, 0)
	queries := []string{"analyze bias in oncology", "what about age groups?", "suggest mitigation"}

	transcript, err := h.RunSession(context.Background(), model.SessionMeta{SessionID: "s1"}, queries)
	if err != nil {
		t.Fatalf("RunSession: %v", err)
	}
	for i := 1; i < len(transcript.Turns); i++ {
		if transcript.Turns[i].Timestamp < transcript.Turns[i-1].Timestamp {
			t.Errorf("timestamps must not decrease: turn %d %.6f < turn %d %.6f",
				i, transcript.Turns[i].Timestamp, i-1, transcript.Turns[i-1].Timestamp)
		}
	}
}

func TestExtractMedicalField(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"analyze bias in dermatology", "dermatology"},
		{"look into skin cancer models", "skin cancer"},
		{"tell me about the weather", ""},
	}
	for _, tt := range tests {
		if got := extractMedicalField(tt.query); got != tt.want {
			t.Errorf("extractMedicalField(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}
