// Package config loads engine configuration from YAML files, layering
// file values over defaults and environment variables over both.
package config

import (
	"fmt"
	"os"
	"strings"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// ProviderConfig holds the per-provider connection settings.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`  // API key or bearer token
	BaseURL string `yaml:"base_url,omitempty"` // Override the default endpoint
}

// Config is the top-level engine configuration.
type Config struct {
	OpenAI     ProviderConfig `yaml:"openai,omitempty"`
	Anthropic  ProviderConfig `yaml:"anthropic,omitempty"`
	Google     ProviderConfig `yaml:"google,omitempty"`
	Mistral    ProviderConfig `yaml:"mistral,omitempty"`
	Perplexity ProviderConfig `yaml:"perplexity,omitempty"`
	DeepSeek   ProviderConfig `yaml:"deepseek,omitempty"`
	XAI        ProviderConfig `yaml:"xai,omitempty"`

	LogFile string `yaml:"log_file,omitempty"` // Empty logs to stdout
	Debug   bool   `yaml:"debug,omitempty"`    // Enable payload logging
}

// envKeys maps provider slugs to the environment variables consulted for
// API keys, in priority order.
var envKeys = map[string][]string{
	"openai":     {"OPENAI_API_KEY"},
	"anthropic":  {"ANTHROPIC_API_KEY"},
	"google":     {"GOOGLE_API_KEY", "GEMINI_API_KEY"},
	"mistral":    {"MISTRAL_API_KEY"},
	"perplexity": {"PERPLEXITY_API_KEY"},
	"deepseek":   {"DEEPSEEK_API_KEY"},
	"xai":        {"XAI_API_KEY"},
}

// envBaseURLs maps provider slugs to the endpoint override variables the
// model catalogs honor; Load mirrors file-provided base URLs into them.
var envBaseURLs = map[string]string{
	"openai":     "OPENAI_API_URL",
	"anthropic":  "ANTHROPIC_MESSAGES_API_URL",
	"google":     "GOOGLE_GEMINI_API_URL",
	"mistral":    "MISTRAL_API_URL",
	"perplexity": "PERPLEXITY_API_URL",
	"deepseek":   "DEEPSEEK_API_URL",
	"xai":        "XAI_API_URL",
}

// Load reads configuration from path, merging the file over built-in
// defaults and environment variables over the file. A missing file is not
// an error; an empty path skips the file layer entirely.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		raw, err := os.ReadFile(path) //nolint:gosec // user-specified config path
		switch {
		case os.IsNotExist(err):
			// No file is fine; env and defaults still apply.
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
			if err := mergo.Merge(cfg, fileCfg, mergo.WithOverride); err != nil {
				return nil, fmt.Errorf("failed to merge config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	cfg.exportBaseURLs()
	return cfg, nil
}

// applyEnv overlays environment variables onto the loaded config.
func (c *Config) applyEnv() {
	for slug, keys := range envKeys {
		pc := c.provider(slug)
		for _, key := range keys {
			if v := os.Getenv(key); v != "" {
				pc.APIKey = v
				break
			}
		}
	}
	if v := os.Getenv("ALLMS_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("ALLMS_DEBUG"); v != "" {
		c.Debug = strings.EqualFold(v, "true") || v == "1"
	}
}

// exportBaseURLs pushes file-configured base URLs into the endpoint
// override variables so the model catalogs pick them up. Variables
// already set in the environment win.
func (c *Config) exportBaseURLs() {
	for slug, envVar := range envBaseURLs {
		pc := c.provider(slug)
		if pc.BaseURL != "" && os.Getenv(envVar) == "" {
			os.Setenv(envVar, pc.BaseURL)
		}
	}
}

func (c *Config) provider(slug string) *ProviderConfig {
	switch slug {
	case "openai":
		return &c.OpenAI
	case "anthropic":
		return &c.Anthropic
	case "google":
		return &c.Google
	case "mistral":
		return &c.Mistral
	case "perplexity":
		return &c.Perplexity
	case "deepseek":
		return &c.DeepSeek
	case "xai":
		return &c.XAI
	default:
		return &ProviderConfig{}
	}
}

// APIKeyFor returns the configured API key for a provider slug.
func (c *Config) APIKeyFor(slug string) string {
	return c.provider(slug).APIKey
}
