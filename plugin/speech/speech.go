// Package speech wraps speech-to-text and text-to-speech vendors behind a
// single interface so the voice pipeline never talks to a vendor SDK directly.
package speech

import (
	"context"
	"fmt"

	"github.com/buddylabs/buddy/internal/profile"
)

// TranscribeResult is the text extracted from one audio clip.
type TranscribeResult struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

// SpeechService converts between audio and text.
type SpeechService interface {
	// Transcribe turns a recorded audio clip into text.
	Transcribe(ctx context.Context, audio []byte, mimeType string) (*TranscribeResult, error)
	// Synthesize turns reply text into playable audio.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// NewSpeechService creates a SpeechService from the server profile, or nil
// when no speech vendor is configured.
func NewSpeechService(p *profile.Profile) (SpeechService, error) {
	if !p.IsSpeechEnabled() {
		return nil, nil
	}
	svc, err := newDeepgramService(p.DeepgramAPIKey, p.DeepgramSTTModel, p.DeepgramTTSModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech service: %w", err)
	}
	return svc, nil
}
