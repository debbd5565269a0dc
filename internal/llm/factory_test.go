package llm

import (
	"strings"
	"testing"
)

func TestNewProviderEmptyIsCanned(t *testing.T) {
	p, err := NewProvider(Config{Provider: ""})
	if err != nil {
		t.Fatalf("empty provider must not error: %v", err)
	}
	if p != nil {
		t.Errorf("empty provider must return nil for the canned responder")
	}
}

func TestNewProviderUnknown(t *testing.T) {
	_, err := NewProvider(Config{Provider: "mystery"})
	if err == nil || !strings.Contains(err.Error(), "mystery") {
		t.Errorf("unknown provider must error with its name, got %v", err)
	}
}

func TestNewProviderRequiresAPIKeys(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "openai"}); err == nil {
		t.Errorf("openai without API key must fail")
	}
	if _, err := NewProvider(Config{Provider: "anthropic"}); err == nil {
		t.Errorf("anthropic without API key must fail")
	}
}

func TestNewProviderOllamaNeedsNoKey(t *testing.T) {
	p, err := NewProvider(Config{Provider: "ollama"})
	if err != nil {
		t.Fatalf("ollama must not require a key: %v", err)
	}
	if p.Name() != "ollama" {
		t.Errorf("name = %q, want ollama", p.Name())
	}
}

func TestNewProviderClaudeAlias(t *testing.T) {
	p, err := NewProvider(Config{Provider: "claude", APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("claude alias: %v", err)
	}
	if p.Name() != "anthropic" {
		t.Errorf("name = %q, want anthropic", p.Name())
	}
}

func TestNewProviderCaseInsensitive(t *testing.T) {
	p, err := NewProvider(Config{Provider: "OpenAI", APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("provider names are case-insensitive: %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("name = %q, want openai", p.Name())
	}
}
