package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buddylabs/buddy/internal/profile"
)

func TestNewConfigFromProfile(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		cfg := NewConfigFromProfile(&profile.Profile{LLMProvider: "gemini"})
		assert.False(t, cfg.Enabled)
		require.NoError(t, cfg.Validate())
	})

	t.Run("Gemini", func(t *testing.T) {
		cfg := NewConfigFromProfile(&profile.Profile{
			LLMProvider:  "gemini",
			LLMModel:     "gemini-2.0-flash",
			GeminiAPIKey: "test-key",
		})
		assert.True(t, cfg.Enabled)
		assert.Equal(t, "test-key", cfg.APIKey)
		require.NoError(t, cfg.Validate())
	})

	t.Run("OpenAICompatible", func(t *testing.T) {
		cfg := NewConfigFromProfile(&profile.Profile{
			LLMProvider:   "openai",
			LLMModel:      "gpt-4o-mini",
			OpenAIAPIKey:  "sk-test",
			OpenAIBaseURL: "https://api.openai.com/v1",
		})
		assert.True(t, cfg.Enabled)
		assert.Equal(t, "https://api.openai.com/v1", cfg.BaseURL)
		require.NoError(t, cfg.Validate())
	})

	t.Run("MissingKey", func(t *testing.T) {
		cfg := &Config{Enabled: true, Provider: "gemini", Model: "gemini-2.0-flash"}
		assert.Error(t, cfg.Validate())
	})
}

func TestNewLLMService_UnsupportedProvider(t *testing.T) {
	_, err := NewLLMService(&Config{Provider: "mystery"})
	assert.Error(t, err)
}

func TestBuildSystemPrompt(t *testing.T) {
	prompt := BuildSystemPrompt(PersonaOptions{
		ChildName:     "Mia",
		Age:           6,
		Interests:     []string{"dinosaurs", "space"},
		BlockedTopics: []string{"monsters"},
	})

	assert.Contains(t, prompt, "Mia")
	assert.Contains(t, prompt, "6 years old")
	assert.Contains(t, prompt, "dinosaurs, space")
	assert.Contains(t, prompt, "Never talk about: monsters")
}

func TestMockLLMService(t *testing.T) {
	mock := NewMockLLMService()
	mock.Reply = "hello there"

	reply, err := mock.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "hello there", reply)
	assert.Len(t, mock.Calls, 1)
}
