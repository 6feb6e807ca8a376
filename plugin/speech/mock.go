package speech

import (
	"context"
)

// MockSpeechService is a mock implementation of SpeechService for testing.
type MockSpeechService struct {
	// Transcript is returned for every Transcribe call.
	Transcript string
	// Audio is returned for every Synthesize call.
	Audio []byte
	// Err, when set, is returned instead.
	Err error

	// SynthesizedTexts records the text passed to Synthesize.
	SynthesizedTexts []string
}

// NewMockSpeechService creates a new MockSpeechService.
func NewMockSpeechService() *MockSpeechService {
	return &MockSpeechService{Audio: []byte("mock-audio")}
}

// Transcribe returns the canned transcript.
func (m *MockSpeechService) Transcribe(ctx context.Context, audio []byte, mimeType string) (*TranscribeResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &TranscribeResult{Transcript: m.Transcript, Confidence: 0.99}, nil
}

// Synthesize returns the canned audio bytes.
func (m *MockSpeechService) Synthesize(ctx context.Context, text string) ([]byte, error) {
	m.SynthesizedTexts = append(m.SynthesizedTexts, text)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Audio, nil
}

// Ensure MockSpeechService implements SpeechService
var _ SpeechService = (*MockSpeechService)(nil)
