package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/buddylabs/buddy/plugin/ai"
	"github.com/buddylabs/buddy/internal/observability"
)

// maxConcurrentGenerations caps in-flight LLM calls across all devices.
const maxConcurrentGenerations = 4

// Sourcer resolves content requests through the library, the language model,
// and template fallbacks, in that order.
type Sourcer struct {
	llm ai.LLMService
	sem *semaphore.Weighted
}

// NewSourcer creates a Sourcer. llm may be nil, in which case requests that
// miss the library go straight to templates.
func NewSourcer(llm ai.LLMService) *Sourcer {
	return &Sourcer{
		llm: llm,
		sem: semaphore.NewWeighted(maxConcurrentGenerations),
	}
}

// Source returns one piece of content for the request. It never fails for a
// valid kind: generation errors degrade to the template tier.
func (s *Sourcer) Source(ctx context.Context, req Request) (*Result, error) {
	if _, err := ParseKind(string(req.Kind)); err != nil {
		return nil, err
	}

	if blocked, topic := isBlocked(req); blocked {
		slog.Info("content request hit blocked topic", "kind", req.Kind, "topic", topic)
		result := redirectResult(req)
		observability.ContentRequests.WithLabelValues(string(req.Kind), string(result.Tier)).Inc()
		return result, nil
	}

	if entry := findLibraryMatch(req); entry != nil {
		observability.ContentRequests.WithLabelValues(string(req.Kind), string(TierLibrary)).Inc()
		return &Result{Kind: entry.Kind, Title: entry.Title, Body: entry.Body, Tier: TierLibrary}, nil
	}

	if s.llm != nil {
		result, err := s.generate(ctx, req)
		if err == nil {
			observability.ContentRequests.WithLabelValues(string(req.Kind), string(TierLLM)).Inc()
			return result, nil
		}
		slog.Warn("content generation failed, falling back to template",
			"kind", req.Kind, "topic", req.Topic, "error", err)
		observability.VendorErrors.WithLabelValues("llm").Inc()
	}

	result := templateResult(req)
	observability.ContentRequests.WithLabelValues(string(req.Kind), string(result.Tier)).Inc()
	return result, nil
}

func (s *Sourcer) generate(ctx context.Context, req Request) (*Result, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("generation slot unavailable: %w", err)
	}
	defer s.sem.Release(1)

	messages := []ai.Message{
		{Role: "system", Content: ai.BuildSystemPrompt(ai.PersonaOptions{
			ChildName:     req.ChildName,
			Age:           req.Age,
			BlockedTopics: req.BlockedTopics,
		})},
		{Role: "user", Content: generationPrompt(req)},
	}

	body, err := s.llm.Chat(ctx, messages)
	if err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("empty generation")
	}

	return &Result{
		Kind:  req.Kind,
		Title: generatedTitle(req),
		Body:  body,
		Tier:  TierLLM,
	}, nil
}

func generationPrompt(req Request) string {
	topic := strings.TrimSpace(req.Topic)
	switch req.Kind {
	case KindSong:
		if topic == "" {
			return "Sing me a short, cheerful song with a simple rhyme. Four to eight lines."
		}
		return fmt.Sprintf("Sing me a short, cheerful song about %s with a simple rhyme. Four to eight lines.", topic)
	case KindJoke:
		if topic == "" {
			return "Tell me one short, silly, kid-friendly joke."
		}
		return fmt.Sprintf("Tell me one short, silly, kid-friendly joke about %s.", topic)
	default:
		if topic == "" {
			return "Tell me a short bedtime story with a happy ending. Keep it under 150 words."
		}
		return fmt.Sprintf("Tell me a short bedtime story about %s with a happy ending. Keep it under 150 words.", topic)
	}
}

func generatedTitle(req Request) string {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		switch req.Kind {
		case KindSong:
			return "A Brand New Song"
		case KindJoke:
			return "A Brand New Joke"
		default:
			return "A Brand New Story"
		}
	}
	return fmt.Sprintf("About %s", topic)
}

// isBlocked reports whether the topic trips the child's blocked-topic list.
func isBlocked(req Request) (bool, string) {
	topic := strings.ToLower(req.Topic)
	if topic == "" {
		return false, ""
	}
	for _, b := range req.BlockedTopics {
		b = strings.ToLower(strings.TrimSpace(b))
		if b != "" && strings.Contains(topic, b) {
			return true, b
		}
	}
	return false, ""
}

// redirectResult gently steers away from a blocked topic instead of refusing.
func redirectResult(req Request) *Result {
	safe := req
	safe.Topic = ""
	result := templateResult(safe)
	result.Title = "Let's Try Something Else"
	return result
}
