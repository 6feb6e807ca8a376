package speech

import (
	"bytes"
	"context"
	"fmt"
	"time"

	listenapi "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest"
	speakapi "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/speak/v1/rest"
	"github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	listenclient "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"
	speakclient "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/speak"

	"github.com/buddylabs/buddy/internal/observability"
)

// deepgramService implements SpeechService on the Deepgram REST API.
type deepgramService struct {
	listen   *listenapi.Client
	speak    *speakapi.Client
	sttModel string
	ttsModel string
}

func newDeepgramService(apiKey, sttModel, ttsModel string) (*deepgramService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("deepgram api key is required")
	}

	listenClient := listenclient.NewREST(apiKey, &interfaces.ClientOptions{})
	speakClient := speakclient.NewREST(apiKey, &interfaces.ClientOptions{})

	return &deepgramService{
		listen:   listenapi.New(listenClient),
		speak:    speakapi.New(speakClient),
		sttModel: sttModel,
		ttsModel: ttsModel,
	}, nil
}

// Transcribe sends a recorded clip to the prerecorded transcription endpoint.
func (s *deepgramService) Transcribe(ctx context.Context, audio []byte, mimeType string) (*TranscribeResult, error) {
	start := time.Now()

	options := &interfaces.PreRecordedTranscriptionOptions{
		Model:       s.sttModel,
		SmartFormat: true,
		Punctuate:   true,
	}

	res, err := s.listen.FromStream(ctx, bytes.NewReader(audio), options)
	if err != nil {
		observability.VendorErrors.WithLabelValues("deepgram_stt").Inc()
		return nil, fmt.Errorf("transcription failed: %w", err)
	}
	observability.SpeechDuration.WithLabelValues("stt").Observe(time.Since(start).Seconds())

	if len(res.Results.Channels) == 0 || len(res.Results.Channels[0].Alternatives) == 0 {
		return &TranscribeResult{}, nil
	}

	alt := res.Results.Channels[0].Alternatives[0]
	return &TranscribeResult{
		Transcript: alt.Transcript,
		Confidence: alt.Confidence,
	}, nil
}

// Synthesize renders reply text to audio with the configured voice.
func (s *deepgramService) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}
	start := time.Now()

	options := &interfaces.SpeakOptions{
		Model: s.ttsModel,
	}

	buf := &interfaces.RawResponse{}
	if _, err := s.speak.ToStream(ctx, text, options, buf); err != nil {
		observability.VendorErrors.WithLabelValues("deepgram_tts").Inc()
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}
	observability.SpeechDuration.WithLabelValues("tts").Observe(time.Since(start).Seconds())

	return buf.Bytes(), nil
}

// Ensure deepgramService implements SpeechService
var _ SpeechService = (*deepgramService)(nil)
