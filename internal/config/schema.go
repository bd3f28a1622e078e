package config

import "time"

// PlaceholderAPIKey is used when no key is configured. Requests made with it
// fail authentication at the provider rather than locally.
const PlaceholderAPIKey = "YOUR_API_KEY_HERE"

// Config holds barback configuration.
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Output       OutputCfg                 `mapstructure:"output" yaml:"output"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type           string  `mapstructure:"type" yaml:"type"`                       // "openai"
	Model          string  `mapstructure:"model" yaml:"model"`                     // Model identifier
	APIKey         string  `mapstructure:"api_key" yaml:"api_key"`                 // Supports ${ENV_VAR} syntax
	BaseURL        string  `mapstructure:"base_url" yaml:"base_url,omitempty"`     // Empty uses the provider default
	TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"` // 0 = no client timeout
	MaxRetries     int     `mapstructure:"max_retries" yaml:"max_retries"`         // 0 = fail on first error
	RateLimit      int     `mapstructure:"rate_limit" yaml:"rate_limit"`           // Requests per minute, 0 = unlimited
	Temperature    float64 `mapstructure:"temperature" yaml:"temperature"`         // 0 = provider default
	Enabled        bool    `mapstructure:"enabled" yaml:"enabled"`
}

// Timeout returns the HTTP timeout as a duration.
func (p LLMProviderCfg) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// DefaultsCfg specifies default provider selections.
type DefaultsCfg struct {
	LLMProvider string `mapstructure:"llm_provider" yaml:"llm_provider"`
}

// OutputCfg controls where results go.
type OutputCfg struct {
	Path      string `mapstructure:"path" yaml:"path"`
	TracePath string `mapstructure:"trace_path" yaml:"trace_path"` // Empty disables call tracing
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openai": {
				Type:    "openai",
				Model:   "gpt-4-1106-preview",
				APIKey:  "${OPENAI_API_KEY}",
				Enabled: true,
			},
		},
		Defaults: DefaultsCfg{
			LLMProvider: "openai",
		},
		Output: OutputCfg{
			Path: "sample_cocktails.json",
		},
	}
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled LLM providers.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}
