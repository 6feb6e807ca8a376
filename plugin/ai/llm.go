// Package ai provides reply generation for the companion device.
package ai

import (
	"context"
	"fmt"
)

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// LLMService is the LLM service interface.
type LLMService interface {
	// Chat performs synchronous chat and returns the assistant reply.
	Chat(ctx context.Context, messages []Message) (string, error)
}

// NewLLMService creates a new LLMService for the configured provider.
func NewLLMService(cfg *Config) (LLMService, error) {
	switch cfg.Provider {
	case "gemini":
		return newGeminiService(cfg)
	case "openai":
		return newOpenAIService(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
