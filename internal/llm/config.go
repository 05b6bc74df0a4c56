// Package llm provides the text-completion capability used by research and analysis.
// Providers are selected by configuration and models are grouped into capability tiers.
package llm

import (
	"fmt"
	"time"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for cheap, short completions
	TierLite ModelTier = "lite"
	// TierStandard is for partition research and structured output
	TierStandard ModelTier = "standard"
	// TierAdvanced is for qualitative analysis
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderPerplexity is the Perplexity search-grounded chat API
	ProviderPerplexity Provider = "perplexity"
	// ProviderGroq is the Groq chat completion API
	ProviderGroq Provider = "groq"
)

// DefaultTemperature is used when a request leaves temperature unset
const DefaultTemperature float32 = 0.1

// KeyEnv returns the environment variable holding the provider's API key
func (p Provider) KeyEnv() string {
	switch p {
	case ProviderPerplexity:
		return "PERPLEXITY_API_KEY"
	case ProviderGroq:
		return "GROQ_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

// Valid reports whether p is a supported provider
func (p Provider) Valid() bool {
	switch p {
	case ProviderGemini, ProviderPerplexity, ProviderGroq:
		return true
	}
	return false
}

// Config holds the model configuration for one provider
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
	// BaseURL is the chat-completions root for OpenAI-compatible providers
	BaseURL string
	// Timeout bounds a single completion call
	Timeout time.Duration
	// MaxRetries is the number of retries after a rate-limited response
	MaxRetries int
}

// DefaultConfig returns the default configuration (Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Timeout:    60 * time.Second,
		MaxRetries: 2,
	}
}

// DefaultPerplexityConfig returns the default Perplexity configuration
func DefaultPerplexityConfig() *Config {
	return &Config{
		Provider: ProviderPerplexity,
		Models: map[ModelTier]string{
			TierLite:     "sonar",
			TierStandard: "sonar",
			TierAdvanced: "sonar-pro",
		},
		BaseURL:    "https://api.perplexity.ai",
		Timeout:    45 * time.Second,
		MaxRetries: 2,
	}
}

// DefaultGroqConfig returns the default Groq configuration
func DefaultGroqConfig() *Config {
	return &Config{
		Provider: ProviderGroq,
		Models: map[ModelTier]string{
			TierLite:     "llama-3.1-8b-instant",
			TierStandard: "llama-3.3-70b-versatile",
			TierAdvanced: "llama-3.3-70b-versatile",
		},
		BaseURL:    "https://api.groq.com/openai/v1",
		Timeout:    30 * time.Second,
		MaxRetries: 2,
	}
}

// ConfigFor returns the default configuration for a provider
func ConfigFor(p Provider) (*Config, error) {
	switch p {
	case ProviderGemini:
		return DefaultGeminiConfig(), nil
	case ProviderPerplexity:
		return DefaultPerplexityConfig(), nil
	case ProviderGroq:
		return DefaultGroqConfig(), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", p)
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return &newConfig
}
