// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/investment-fit/internal/llm"
)

// Environment variables read by the CLI besides the provider key variables
const (
	EnvSearchAPIKey   = "GOOGLE_SEARCH_API_KEY"
	EnvSearchEngineID = "GOOGLE_SEARCH_ENGINE_ID"
)

// Defaults applied by MergeWithDefaults
const (
	DefaultResearchProvider        = llm.ProviderPerplexity
	DefaultAnalysisProvider        = llm.ProviderGroq
	DefaultPartitionTimeoutSeconds = 60
	DefaultGrowthPeriodMonths      = 12
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Analysis
	Sector    string `json:"sector,omitempty"`     // Target sector substituted into rules
	RulesPath string `json:"rules_path,omitempty"` // JSON or YAML rule set; empty uses the embedded default

	// Providers
	ResearchProvider string `json:"research_provider,omitempty"` // perplexity, groq or gemini
	AnalysisProvider string `json:"analysis_provider,omitempty"` // perplexity, groq or gemini
	ResearchModel    string `json:"research_model,omitempty"`    // Overrides the research tier model
	AnalysisModel    string `json:"analysis_model,omitempty"`    // Overrides the analysis tier model
	SearchEngineID   string `json:"search_engine_id,omitempty"`  // Custom Search engine for website lookup

	// Limits
	PartitionTimeoutSeconds int `json:"partition_timeout_seconds,omitempty"` // Per-partition completion timeout
	GrowthPeriodMonths      int `json:"growth_period_months,omitempty"`      // Span between prior and current ARR

	// Behavior
	SkipQualitative bool `json:"skip_qualitative,omitempty"` // Skip the qualitative and thesis calls
	Verbose         bool `json:"verbose,omitempty"`          // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	for name, provider := range map[string]string{
		"research_provider": c.ResearchProvider,
		"analysis_provider": c.AnalysisProvider,
	} {
		if provider != "" && !llm.Provider(provider).Valid() {
			return fmt.Errorf("config error: '%s' must be one of perplexity, groq, gemini (got %q)", name, provider)
		}
	}

	if c.PartitionTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'partition_timeout_seconds' must be non-negative")
	}
	if c.GrowthPeriodMonths < 0 {
		return fmt.Errorf("config error: 'growth_period_months' must be non-negative")
	}

	if c.RulesPath != "" {
		if _, err := os.Stat(c.RulesPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: rules file not found: %s", c.RulesPath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults,
// then from the built-in provider and limit defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Sector == "" {
		result.Sector = defaults.Sector
	}
	if result.RulesPath == "" {
		result.RulesPath = defaults.RulesPath
	}
	if result.ResearchProvider == "" {
		result.ResearchProvider = defaults.ResearchProvider
	}
	if result.AnalysisProvider == "" {
		result.AnalysisProvider = defaults.AnalysisProvider
	}
	if result.ResearchModel == "" {
		result.ResearchModel = defaults.ResearchModel
	}
	if result.AnalysisModel == "" {
		result.AnalysisModel = defaults.AnalysisModel
	}
	if result.SearchEngineID == "" {
		result.SearchEngineID = defaults.SearchEngineID
	}

	// Int fields: use default if zero
	if result.PartitionTimeoutSeconds == 0 {
		result.PartitionTimeoutSeconds = defaults.PartitionTimeoutSeconds
	}
	if result.GrowthPeriodMonths == 0 {
		result.GrowthPeriodMonths = defaults.GrowthPeriodMonths
	}

	// Built-in fallbacks
	if result.ResearchProvider == "" {
		result.ResearchProvider = string(DefaultResearchProvider)
	}
	if result.AnalysisProvider == "" {
		result.AnalysisProvider = string(DefaultAnalysisProvider)
	}
	if result.PartitionTimeoutSeconds == 0 {
		result.PartitionTimeoutSeconds = DefaultPartitionTimeoutSeconds
	}
	if result.GrowthPeriodMonths == 0 {
		result.GrowthPeriodMonths = DefaultGrowthPeriodMonths
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// PartitionTimeout returns the per-partition timeout as a duration
func (c *Config) PartitionTimeout() time.Duration {
	return time.Duration(c.PartitionTimeoutSeconds) * time.Second
}

// APIKey resolves the key for a provider: an explicit override wins,
// otherwise the provider's environment variable.
func APIKey(provider llm.Provider, override string) (string, error) {
	if key := strings.TrimSpace(override); key != "" {
		return key, nil
	}
	env := provider.KeyEnv()
	if env == "" {
		return "", fmt.Errorf("unsupported provider %q", provider)
	}
	key := strings.TrimSpace(os.Getenv(env))
	if key == "" {
		return "", fmt.Errorf("%s environment variable is not set", env)
	}
	return key, nil
}

// SearchCredentials returns the Custom Search key and engine ID, or ok=false
// when website lookup is not configured
func (c *Config) SearchCredentials() (apiKey, engineID string, ok bool) {
	apiKey = strings.TrimSpace(os.Getenv(EnvSearchAPIKey))
	engineID = c.SearchEngineID
	if engineID == "" {
		engineID = strings.TrimSpace(os.Getenv(EnvSearchEngineID))
	}
	return apiKey, engineID, apiKey != "" && engineID != ""
}
