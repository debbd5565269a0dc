package model

import "time"

// Config is the full medlens configuration tree
type Config struct {
	HTTP            HTTPConfig            `yaml:"http" json:"http"`
	Cache           CacheConfig           `yaml:"cache" json:"cache"`
	Concurrency     ConcurrencyConfig     `yaml:"concurrency" json:"concurrency"`
	RateLimiting    RateLimitConfig       `yaml:"rate_limiting" json:"rate_limiting"`
	LLM             LLMConfig             `yaml:"llm" json:"llm"`
	Extraction      ExtractionConfig      `yaml:"extraction" json:"extraction"`
	Reproducibility ReproducibilityConfig `yaml:"reproducibility" json:"reproducibility"`
	Research        ResearchConfig        `yaml:"research" json:"research"`
	Output          OutputConfig          `yaml:"output" json:"output"`
}

// HTTPConfig controls outbound HTTP (research APIs, citation checks)
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent    string        `yaml:"user_agent" json:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy" json:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy" json:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy" json:"no_proxy"`
}

// CacheConfig controls the layered response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled"`
	Dir       string        `yaml:"dir" json:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" json:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" json:"disk_ttl"`
}

// ConcurrencyConfig controls worker counts
type ConcurrencyConfig struct {
	SessionWorkers    int `yaml:"session_workers" json:"session_workers"`
	ValidationWorkers int `yaml:"validation_workers" json:"validation_workers"`
}

// RateLimitConfig controls per-domain request pacing
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" json:"burst_size"`
}

// LLMConfig configures the conversation-layer provider
type LLMConfig struct {
	Provider    string  `yaml:"provider" json:"provider"` // openai, anthropic, ollama, "" (canned)
	Model       string  `yaml:"model" json:"model"`
	APIKey      string  `yaml:"-" json:"-"`
	BaseURL     string  `yaml:"base_url" json:"base_url"`
	Timeout     int     `yaml:"timeout" json:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens" json:"max_tokens"`
	Temperature float64 `yaml:"temperature" json:"temperature"`
}

// ExtractionConfig tunes the claim/citation extractors
type ExtractionConfig struct {
	MinClaimLength    int `yaml:"min_claim_length" json:"min_claim_length"`       // Shorter units are fragments
	MaxClaimLength    int `yaml:"max_claim_length" json:"max_claim_length"`       // Longer units are run-ons and dropped
	AttributionWindow int `yaml:"attribution_window" json:"attribution_window"`   // Tokens after a claim within which a citation binds
}

// ReproducibilityConfig tunes the session equivalence test
type ReproducibilityConfig struct {
	Threshold float64 `yaml:"threshold" json:"threshold"` // Similarity at or above which sessions are equivalent
}

// ResearchConfig controls the optional literature cross-check
type ResearchConfig struct {
	Enabled    bool `yaml:"enabled" json:"enabled"`
	MaxResults int  `yaml:"max_results" json:"max_results"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" json:"verbose"`
	IncludeFooter bool `yaml:"include_footer" json:"include_footer"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "Medlens/0.1 (+https://github.com/ppiankov/medlens)",
			MaxBodyBytes: 2_000_000,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			SessionWorkers:    4,
			ValidationWorkers: 20,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 10,
			BurstSize:         5,
		},
		LLM: LLMConfig{
			Provider:    "",
			Timeout:     60,
			MaxTokens:   1500,
			Temperature: 0.3,
		},
		Extraction: ExtractionConfig{
			MinClaimLength:    20,
			MaxClaimLength:    600,
			AttributionWindow: 12,
		},
		Reproducibility: ReproducibilityConfig{
			Threshold: 0.90,
		},
		Research: ResearchConfig{
			Enabled:    false,
			MaxResults: 50,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
	}
}
