package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// geminiService talks to the Gemini API through the official SDK.
type geminiService struct {
	client      *genai.Client
	model       string
	maxTokens   int
	temperature float32
}

func newGeminiService(cfg *Config) (*geminiService, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:      client,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

func (s *geminiService) Chat(ctx context.Context, messages []Message) (string, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(s.maxTokens),
		Temperature:     genai.Ptr(s.temperature),
	}

	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			// Gemini takes the system prompt out of band.
			config.SystemInstruction = genai.NewContentFromText(m.Content, genai.RoleUser)
		case "assistant":
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response")
	}

	return text, nil
}

// Ensure geminiService implements LLMService
var _ LLMService = (*geminiService)(nil)
