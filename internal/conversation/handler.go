package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/medlens/internal/cache"
	"github.com/ppiankov/medlens/internal/llm"
	"github.com/ppiankov/medlens/internal/model"
)

// Handler runs the bias-analysis conversation for one or more sessions and
// produces the transcripts the metrics core evaluates. With a nil provider
// it answers from deterministic canned templates, so seeded batches are
// reproducible without network access.
type Handler struct {
	provider    llm.Provider
	respCache   cache.Cache // nil disables caching
	temperature float64
	yearsBack   int
}

// NewHandler creates a conversation handler
func NewHandler(provider llm.Provider, respCache cache.Cache, temperature float64) *Handler {
	return &Handler{
		provider:    provider,
		respCache:   respCache,
		temperature: temperature,
		yearsBack:   5,
	}
}

// sessionState is the per-session conversation context: medical field plus
// whether the analysis has already run
type sessionState struct {
	medicalField string
	analyzed     bool
}

// RunSession answers each query in order and returns the transcript.
// Timestamps are seconds since session start.
func (h *Handler) RunSession(ctx context.Context, meta model.SessionMeta, queries []string) (model.Transcript, error) {
	start := time.Now()
	state := &sessionState{}

	transcript := model.Transcript{SessionMeta: meta}

	for _, query := range queries {
		response, err := h.handleQuery(ctx, state, meta.Seed, query)
		if err != nil {
			return model.Transcript{}, fmt.Errorf("query %q: %w", query, err)
		}

		transcript.Turns = append(transcript.Turns, model.Turn{
			Query:     query,
			Response:  response,
			Timestamp: time.Since(start).Seconds(),
		})
	}

	return transcript, nil
}

func (h *Handler) handleQuery(ctx context.Context, state *sessionState, seed *int64, query string) (string, error) {
	lower := strings.ToLower(query)

	if field := extractMedicalField(lower); field != "" {
		state.medicalField = field
	}

	if state.medicalField == "" {
		return askFieldPrompt, nil
	}

	switch {
	case isMitigationRequest(lower):
		return h.complete(ctx, seed, fmt.Sprintf(mitigationPromptTemplate, state.medicalField))

	case isAnalysisRequest(lower) || !state.analyzed:
		state.analyzed = true
		return h.complete(ctx, seed, fmt.Sprintf(analysisPromptTemplate, state.medicalField, h.yearsBack))

	case isFollowUp(lower):
		return h.complete(ctx, seed, fmt.Sprintf(followUpPromptTemplate, state.medicalField, query))

	default:
		return greeting, nil
	}
}

// complete runs one prompt through the provider, consulting the response
// cache first. Without a provider it falls back to the canned responder.
func (h *Handler) complete(ctx context.Context, seed *int64, prompt string) (string, error) {
	if h.provider == nil {
		return cannedResponse(prompt, seed), nil
	}

	key := ""
	if h.respCache != nil {
		key = cache.Key(fmt.Sprintf("%s\x00%s\x00%s", h.provider.Name(), seedString(seed), prompt))
		if data, found := h.respCache.Get(key); found {
			return string(data), nil
		}
	}

	resp, err := h.provider.Chat(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: h.temperature,
		Seed:        seed,
	})
	if err != nil {
		return "", err
	}

	if h.respCache != nil {
		_ = h.respCache.Set(key, []byte(resp.Content), 0)
	}

	return resp.Content, nil
}

func seedString(seed *int64) string {
	if seed == nil {
		return "noseed"
	}
	return fmt.Sprintf("%d", *seed)
}

func extractMedicalField(lower string) string {
	for _, field := range medicalFields {
		if strings.Contains(lower, field) {
			return field
		}
	}
	return ""
}

func isAnalysisRequest(lower string) bool {
	for _, kw := range []string{"analyze", "analysis", "find", "identify", "examine", "bias", "gaps", "under-explored"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isMitigationRequest(lower string) bool {
	for _, kw := range []string{"mitigation", "mitigate", "method", "solution", "address", "reduce", "fix", "improve"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isFollowUp(lower string) bool {
	for _, kw := range []string{"what", "how", "why", "when", "where", "can you", "show me", "tell me"} {
		if strings.HasPrefix(lower, kw) {
			return true
		}
	}
	return false
}
