package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/jackzampolin/barback/internal/providers"
)

var envRefPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Manager loads configuration from defaults, an optional file and
// BARBACK_* environment variables.
type Manager struct {
	v      *viper.Viper
	config *Config
}

// NewManager creates a config manager and loads the config.
// An empty cfgFile searches ./config.yaml and $HOME/.barback/config.yaml;
// a missing file there is not an error.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{v: viper.New()}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	v := cm.v
	defaults := DefaultConfig()
	v.SetDefault("llm_providers", providerDefaults(defaults.LLMProviders))
	v.SetDefault("defaults.llm_provider", defaults.Defaults.LLMProvider)
	v.SetDefault("output.path", defaults.Output.Path)
	v.SetDefault("output.trace_path", defaults.Output.TracePath)

	// BARBACK_OUTPUT_PATH overrides output.path, etc.
	v.SetEnvPrefix("BARBACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.barback")
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// providerDefaults flattens provider structs into plain maps so viper can
// merge individual keys from the config file over them.
func providerDefaults(in map[string]LLMProviderCfg) map[string]any {
	out := make(map[string]any, len(in))
	for name, p := range in {
		out[name] = map[string]any{
			"type":            p.Type,
			"model":           p.Model,
			"api_key":         p.APIKey,
			"base_url":        p.BaseURL,
			"timeout_seconds": p.TimeoutSeconds,
			"max_retries":     p.MaxRetries,
			"rate_limit":      p.RateLimit,
			"temperature":     p.Temperature,
			"enabled":         p.Enabled,
		}
	}
	return out
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the loaded configuration.
func (cm *Manager) Get() *Config {
	return cm.config
}

// ConfigFileUsed returns the path of the config file read, if any.
func (cm *Manager) ConfigFileUsed() string {
	return cm.v.ConfigFileUsed()
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envRefPattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// ResolveAPIKey expands the provider's API key, falling back to the
// placeholder when nothing is configured.
func (p LLMProviderCfg) ResolveAPIKey() string {
	key := strings.TrimSpace(ResolveEnvVars(p.APIKey))
	if key == "" {
		return PlaceholderAPIKey
	}
	return key
}

// ToProviderRegistryConfig converts the enabled providers to a
// providers.RegistryConfig with API keys resolved.
func (c *Config) ToProviderRegistryConfig() providers.RegistryConfig {
	cfg := providers.RegistryConfig{
		LLMProviders: make(map[string]providers.LLMProviderConfig),
	}

	for name, llm := range c.EnabledLLMProviders() {
		cfg.LLMProviders[name] = providers.LLMProviderConfig{
			Type:       llm.Type,
			Model:      llm.Model,
			APIKey:     llm.ResolveAPIKey(),
			BaseURL:    llm.BaseURL,
			Timeout:    llm.Timeout(),
			MaxRetries: llm.MaxRetries,
			RateLimit:  llm.RateLimit,
			Enabled:    llm.Enabled,
		}
	}

	return cfg
}

// Redacted returns a copy with API keys that hold literal secrets masked.
// ${ENV_VAR} references are kept since they reveal nothing.
func (c *Config) Redacted() *Config {
	out := *c
	out.LLMProviders = make(map[string]LLMProviderCfg, len(c.LLMProviders))
	for name, p := range c.LLMProviders {
		if p.APIKey != "" && !envRefPattern.MatchString(p.APIKey) {
			p.APIKey = "********"
		}
		out.LLMProviders[name] = p
	}
	return &out
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# barback configuration
# API keys use ${ENV_VAR} syntax to reference environment variables
# Set these in your shell: export OPENAI_API_KEY=xxx

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
