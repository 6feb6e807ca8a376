package ai

import (
	"context"
	"fmt"
)

// MockLLMService is a mock implementation of LLMService for testing.
type MockLLMService struct {
	// Reply, when set, is returned for every Chat call.
	Reply string
	// Err, when set, is returned instead.
	Err error

	// Calls records the messages passed to Chat.
	Calls [][]Message
}

// NewMockLLMService creates a new MockLLMService.
func NewMockLLMService() *MockLLMService {
	return &MockLLMService{}
}

// Chat returns the canned reply.
func (m *MockLLMService) Chat(ctx context.Context, messages []Message) (string, error) {
	m.Calls = append(m.Calls, messages)
	if m.Err != nil {
		return "", m.Err
	}
	if m.Reply != "" {
		return m.Reply, nil
	}
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages")
	}
	return "mock reply to: " + messages[len(messages)-1].Content, nil
}

// Ensure MockLLMService implements LLMService
var _ LLMService = (*MockLLMService)(nil)
