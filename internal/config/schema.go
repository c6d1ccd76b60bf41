package config

import (
	"time"

	"github.com/devanand13/bomx/internal/providers"
)

// Config holds bomx configuration.
// Loaded from ./config.yaml or ~/.bomx/config.yaml, overridable via
// BOMX_-prefixed environment variables.
type Config struct {
	Providers  map[string]ProviderCfg `mapstructure:"providers" yaml:"providers"`
	Defaults   DefaultsCfg            `mapstructure:"defaults" yaml:"defaults"`
	Extraction ExtractionCfg          `mapstructure:"extraction" yaml:"extraction"`
	Output     OutputCfg              `mapstructure:"output" yaml:"output"`
}

// ProviderCfg configures an LLM provider.
type ProviderCfg struct {
	Type           string  `mapstructure:"type" yaml:"type"`                       // "openai", "openrouter"
	Model          string  `mapstructure:"model" yaml:"model"`                     // Default model
	APIKey         string  `mapstructure:"api_key" yaml:"api_key"`                 // Supports ${ENV_VAR} syntax
	BaseURL        string  `mapstructure:"base_url" yaml:"base_url,omitempty"`     // Optional override
	RateLimit      float64 `mapstructure:"rate_limit" yaml:"rate_limit"`           // Requests per second
	TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"` // HTTP timeout
	Enabled        bool    `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default selections.
type DefaultsCfg struct {
	Provider   string `mapstructure:"provider" yaml:"provider"`       // Default LLM provider name
	BOMType    string `mapstructure:"bom_type" yaml:"bom_type"`       // Default BOM kind
	MaxWorkers int    `mapstructure:"max_workers" yaml:"max_workers"` // Batch concurrency
}

// ExtractionCfg tunes the pipeline.
type ExtractionCfg struct {
	MaxDocumentChars int  `mapstructure:"max_document_chars" yaml:"max_document_chars"` // 0 = builder default
	CheckArithmetic  bool `mapstructure:"check_arithmetic" yaml:"check_arithmetic"`
}

// OutputCfg controls where results land.
type OutputCfg struct {
	Dir     string   `mapstructure:"dir" yaml:"dir"`         // Output directory ("" = alongside input)
	Formats []string `mapstructure:"formats" yaml:"formats"` // "csv", "json", "xlsx"
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Providers: map[string]ProviderCfg{
			"openai": {
				Type:           "openai",
				Model:          "gpt-4o-mini",
				APIKey:         "${OPENAI_API_KEY}",
				RateLimit:      2.0,
				TimeoutSeconds: 120,
				Enabled:        true,
			},
			"openrouter": {
				Type:           "openrouter",
				Model:          "openai/gpt-4o-mini",
				APIKey:         "${OPENROUTER_API_KEY}",
				RateLimit:      2.0,
				TimeoutSeconds: 120,
				Enabled:        false,
			},
		},
		Defaults: DefaultsCfg{
			Provider:   "openai",
			BOMType:    "engineering",
			MaxWorkers: 4,
		},
		Extraction: ExtractionCfg{
			MaxDocumentChars: 0,
			CheckArithmetic:  false,
		},
		Output: OutputCfg{
			Formats: []string{"csv", "json"},
		},
	}
}

// ToProviderRegistryConfig converts the config for providers.BuildRegistry.
// It resolves all ${ENV_VAR} references in API keys.
func (c *Config) ToProviderRegistryConfig() providers.RegistryConfig {
	cfg := providers.RegistryConfig{
		LLMProviders: make(map[string]providers.LLMProviderConfig),
	}
	for name, pc := range c.Providers {
		cfg.LLMProviders[name] = providers.LLMProviderConfig{
			Type:      pc.Type,
			Model:     pc.Model,
			APIKey:    ResolveEnvVars(pc.APIKey),
			BaseURL:   pc.BaseURL,
			RateLimit: pc.RateLimit,
			Timeout:   time.Duration(pc.TimeoutSeconds) * time.Second,
			Enabled:   pc.Enabled,
		}
	}
	return cfg
}
