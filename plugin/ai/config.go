package ai

import (
	"errors"

	"github.com/buddylabs/buddy/internal/profile"
)

// Config represents reply-generation configuration.
type Config struct {
	Enabled bool

	Provider    string // gemini, openai
	Model       string
	APIKey      string
	BaseURL     string // openai-compatible endpoints only
	MaxTokens   int    // default: 512
	Temperature float32
}

// NewConfigFromProfile creates LLM config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := &Config{
		Enabled:     p.IsLLMEnabled(),
		Provider:    p.LLMProvider,
		Model:       p.LLMModel,
		MaxTokens:   512,
		Temperature: 0.8,
	}

	if !cfg.Enabled {
		return cfg
	}

	switch p.LLMProvider {
	case "gemini":
		cfg.APIKey = p.GeminiAPIKey
	case "openai":
		cfg.APIKey = p.OpenAIAPIKey
		cfg.BaseURL = p.OpenAIBaseURL
	}

	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.Provider == "" {
		return errors.New("LLM provider is required")
	}
	if c.APIKey == "" {
		return errors.New("LLM API key is required")
	}
	if c.Model == "" {
		return errors.New("LLM model is required")
	}

	return nil
}
