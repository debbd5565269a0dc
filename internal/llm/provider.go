// Package llm abstracts the chat providers used by the conversation layer.
// The metrics core never imports this package; it only sees the finished
// response strings.
package llm

import (
	"context"

	"github.com/ppiankov/medlens/internal/model"
)

// Provider is a chat-completion backend
type Provider interface {
	// Name returns the provider name
	Name() string

	// Chat generates a completion for the given request
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// IsAvailable checks that the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// Message is one chat message
type Message struct {
	Role    string // "system", "user", "assistant"
	Content string
}

// ChatRequest is the input to a completion call
type ChatRequest struct {
	Messages    []Message
	Model       string  // Overrides the configured model when set
	MaxTokens   int     // 0 uses the configured default
	Temperature float64 // Seeded sessions should keep this low
	Seed        *int64  // Forwarded to providers that support it
}

// ChatResponse is the completion output
type ChatResponse struct {
	Content    string
	Model      string
	TokensUsed int
}

// Config holds provider configuration
type Config struct {
	Provider    string // "openai", "anthropic", "ollama", ""
	Model       string
	APIKey      string
	BaseURL     string
	Timeout     int // seconds
	MaxTokens   int
	Temperature float64
	HTTPProxy   string
	HTTPSProxy  string
	NoProxy     string
}

// DefaultConfig returns provider defaults (disabled)
func DefaultConfig() Config {
	return Config{
		Provider:    "",
		Timeout:     60,
		MaxTokens:   1500,
		Temperature: 0.3,
	}
}

// ConfigFromModel converts the config-tree LLM section
func ConfigFromModel(mc model.LLMConfig, http model.HTTPConfig) Config {
	return Config{
		Provider:    mc.Provider,
		Model:       mc.Model,
		APIKey:      mc.APIKey,
		BaseURL:     mc.BaseURL,
		Timeout:     mc.Timeout,
		MaxTokens:   mc.MaxTokens,
		Temperature: mc.Temperature,
		HTTPProxy:   http.HTTPProxy,
		HTTPSProxy:  http.HTTPSProxy,
		NoProxy:     http.NoProxy,
	}
}
