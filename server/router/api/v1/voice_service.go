package v1

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/buddylabs/buddy/internal/ambient"
	"github.com/buddylabs/buddy/plugin/ai"
	apierr "github.com/buddylabs/buddy/server/internal/errors"
	"github.com/buddylabs/buddy/internal/observability"
	"github.com/buddylabs/buddy/store"
)

// breakReply is spoken when the session crosses the break threshold.
const breakReply = "We've been playing for a long time! Let's take a little break. " +
	"Stretch your arms, get a drink of water, and come find me later!"

// sessionBinding ties a live tracker session to its user and, once a wake
// word opens a turn, its persisted conversation.
type sessionBinding struct {
	mu             sync.Mutex
	userID         int32
	conversationID string
}

// sessionRegistry maps live session ids to their bindings.
type sessionRegistry struct {
	mu       sync.RWMutex
	bindings map[string]*sessionBinding
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{bindings: make(map[string]*sessionBinding)}
}

func (r *sessionRegistry) put(sessionID string, userID int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[sessionID] = &sessionBinding{userID: userID}
}

func (r *sessionRegistry) get(sessionID string) *sessionBinding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bindings[sessionID]
}

func (r *sessionRegistry) remove(sessionID string) *sessionBinding {
	r.mu.Lock()
	defer r.mu.Unlock()
	binding := r.bindings[sessionID]
	delete(r.bindings, sessionID)
	return binding
}

type startSessionRequest struct {
	UserID        int32    `json:"userId"`
	WakeWordHints []string `json:"wakeWordHints"`
}

type startSessionResponse struct {
	SessionID     string   `json:"sessionId"`
	ListeningMode string   `json:"listeningMode"`
	WakeWords     []string `json:"wakeWords"`
}

type utteranceRequest struct {
	Transcript string `json:"transcript"`
	// Audio is a base64 clip; transcribed server-side when set and a speech
	// vendor is configured. Transcript wins when both are present.
	Audio    string `json:"audio"`
	MimeType string `json:"mimeType"`
}

type replyPayload struct {
	Text string `json:"text"`
	// Audio is base64 TTS output, present when a speech vendor is configured.
	Audio string `json:"audio,omitempty"`
}

type utteranceResponse struct {
	Outcome       string        `json:"outcome"`
	ListeningMode string        `json:"listeningMode"`
	Command       string        `json:"command,omitempty"`
	Reply         *replyPayload `json:"reply,omitempty"`
}

type sessionStatusResponse struct {
	Exists             bool       `json:"exists"`
	ListeningMode      string     `json:"listeningMode"`
	ConversationActive bool       `json:"conversationActive"`
	MicLockedUntil     *time.Time `json:"micLockedUntil,omitempty"`
}

type timeoutCheckResponse struct {
	Outcome       string `json:"outcome"`
	ListeningMode string `json:"listeningMode"`
}

// StartVoiceSession opens ambient listening for a child's device.
func (s *APIV1Service) StartVoiceSession(c echo.Context) error {
	ctx := c.Request().Context()

	req := &startSessionRequest{}
	if err := c.Bind(req); err != nil {
		return writeError(c, apierr.InvalidArgument("malformed request body"))
	}
	if req.UserID <= 0 {
		return writeError(c, apierr.InvalidArgument("userId is required"))
	}

	user, err := s.Store.GetUser(ctx, &store.FindUser{ID: &req.UserID})
	if err != nil {
		return writeError(c, apierr.Internal("failed to get user", err))
	}
	if user == nil {
		return writeError(c, apierr.NotFound("user not found"))
	}

	sessionID := shortuuid.New()
	result, err := s.Tracker.Start(sessionID, strconv.Itoa(int(user.ID)), ambient.UserProfile{
		Locale:        user.Locale,
		WakeWordHints: req.WakeWordHints,
	}, time.Now())
	if err != nil {
		return writeError(c, apierr.Internal("failed to start session", err))
	}

	s.sessions.put(sessionID, user.ID)
	observability.SessionsActive.Inc()
	slog.Info("voice session started",
		observability.LogFieldSessionID, sessionID,
		observability.LogFieldUserID, user.ID)

	return c.JSON(http.StatusOK, startSessionResponse{
		SessionID:     sessionID,
		ListeningMode: string(result.ListeningMode),
		WakeWords:     result.WakeWords,
	})
}

// ProcessUtterance runs one transcript (or audio clip) through the tracker
// and, when the turn warrants it, generates a spoken reply.
func (s *APIV1Service) ProcessUtterance(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("sessionId")

	if !s.deviceLimiter.Allow(sessionID) {
		return writeError(c, apierr.RateLimitExceeded("too many requests"))
	}

	req := &utteranceRequest{}
	if err := c.Bind(req); err != nil {
		return writeError(c, apierr.InvalidArgument("malformed request body"))
	}

	transcript := req.Transcript
	if transcript == "" && req.Audio != "" {
		text, err := s.transcribeClip(ctx, req.Audio, req.MimeType)
		if err != nil {
			return writeError(c, err)
		}
		transcript = text
	}

	rc := observability.NewRequestContext(slog.Default(), sessionID, "")
	response, err := s.handleUtterance(ctx, rc, sessionID, transcript, time.Now())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, response)
}

// handleUtterance is the transport-independent turn pipeline, shared by the
// REST endpoint and the websocket stream.
func (s *APIV1Service) handleUtterance(ctx context.Context, rc *observability.RequestContext, sessionID, transcript string, now time.Time) (*utteranceResponse, error) {
	outcome, err := s.Tracker.ProcessUtterance(sessionID, transcript, now)
	if err != nil {
		if err == ambient.ErrSessionNotFound {
			return nil, apierr.NotFound("session not found")
		}
		return nil, apierr.Internal("failed to process utterance", err)
	}

	observability.TurnsTotal.WithLabelValues(string(outcome.Kind)).Inc()
	rc.Info("utterance processed",
		slog.String(observability.LogFieldOutcome, string(outcome.Kind)),
		slog.Int(observability.LogFieldTranscriptLen, len(transcript)))

	binding := s.sessions.get(sessionID)
	if binding != nil {
		s.persistTurn(ctx, binding, outcome, transcript, now)
	}

	response := &utteranceResponse{
		Outcome:       string(outcome.Kind),
		ListeningMode: string(outcome.ListeningMode),
		Command:       outcome.Command,
	}

	if outcome.WarrantsReply() {
		reply := s.generateReply(ctx, rc, binding, outcome, transcript)
		if reply != nil {
			response.Reply = reply
			if binding != nil {
				s.persistReply(ctx, binding, reply.Text, now)
			}
		}
	}

	return response, nil
}

// persistTurn writes the child's side of the turn to conversation history.
func (s *APIV1Service) persistTurn(ctx context.Context, binding *sessionBinding, outcome ambient.TurnOutcome, transcript string, now time.Time) {
	binding.mu.Lock()
	defer binding.mu.Unlock()

	switch outcome.Kind {
	case ambient.OutcomeWakeWordDetected:
		conv, err := s.Store.CreateConversation(ctx, &store.Conversation{
			ID:        shortuuid.New(),
			CreatedTs: now.Unix(),
			UpdatedTs: now.Unix(),
			UserID:    binding.userID,
		})
		if err != nil {
			slog.Error("failed to create conversation", "error", err)
			return
		}
		binding.conversationID = conv.ID
		if outcome.Command != "" {
			s.appendMessageLocked(ctx, binding, "child", outcome.Command, now)
		}
	case ambient.OutcomeConversationActive, ambient.OutcomeBreakSuggested:
		s.appendMessageLocked(ctx, binding, "child", transcript, now)
	case ambient.OutcomeConversationEnded:
		s.appendMessageLocked(ctx, binding, "child", transcript, now)
		s.endConversationLocked(ctx, binding, now)
	}
}

// persistReply writes the companion's reply to conversation history.
func (s *APIV1Service) persistReply(ctx context.Context, binding *sessionBinding, text string, now time.Time) {
	binding.mu.Lock()
	defer binding.mu.Unlock()
	s.appendMessageLocked(ctx, binding, "buddy", text, now)
}

func (s *APIV1Service) appendMessageLocked(ctx context.Context, binding *sessionBinding, role, content string, now time.Time) {
	if binding.conversationID == "" || strings.TrimSpace(content) == "" {
		return
	}
	if _, err := s.Store.CreateConversationMessage(ctx, &store.ConversationMessage{
		CreatedTs:      now.Unix(),
		ConversationID: binding.conversationID,
		Role:           role,
		Content:        content,
	}); err != nil {
		slog.Error("failed to record message", "error", err, "role", role)
	}
}

func (s *APIV1Service) endConversationLocked(ctx context.Context, binding *sessionBinding, now time.Time) {
	if binding.conversationID == "" {
		return
	}
	endedTs := now.Unix()
	if _, err := s.Store.UpdateConversation(ctx, &store.UpdateConversation{
		ID:        binding.conversationID,
		UpdatedTs: endedTs,
		EndedTs:   &endedTs,
	}); err != nil {
		slog.Error("failed to end conversation", "error", err)
	}
	binding.conversationID = ""
}

// generateReply produces the companion's spoken answer for a reply-worthy
// turn. Failures degrade to no reply rather than failing the turn.
func (s *APIV1Service) generateReply(ctx context.Context, rc *observability.RequestContext, binding *sessionBinding, outcome ambient.TurnOutcome, transcript string) *replyPayload {
	var text string

	if outcome.Kind == ambient.OutcomeBreakSuggested {
		text = breakReply
	} else if s.LLMService != nil {
		generated, err := s.chatReply(ctx, binding, outcome, transcript)
		if err != nil {
			rc.Error("reply generation failed", err)
			observability.VendorErrors.WithLabelValues("llm").Inc()
			return nil
		}
		text = generated
	} else {
		return nil
	}

	reply := &replyPayload{Text: text}
	if s.SpeechService != nil {
		audio, err := s.SpeechService.Synthesize(ctx, text)
		if err != nil {
			rc.Error("speech synthesis failed", err)
		} else {
			reply.Audio = base64.StdEncoding.EncodeToString(audio)
		}
	}
	return reply
}

func (s *APIV1Service) chatReply(ctx context.Context, binding *sessionBinding, outcome ambient.TurnOutcome, transcript string) (string, error) {
	start := time.Now()

	persona := ai.PersonaOptions{}
	if binding != nil {
		if user, err := s.Store.GetUser(ctx, &store.FindUser{ID: &binding.userID}); err == nil && user != nil {
			persona.ChildName = user.Name
			persona.Age = user.Age
			persona.Interests = user.Interests
		}
		if pc, err := s.Store.GetParentalControl(ctx, &store.FindParentalControl{UserID: &binding.userID}); err == nil && pc.ContentFilterEnabled {
			persona.BlockedTopics = pc.BlockedTopics
		}
	}

	messages := []ai.Message{{Role: "system", Content: ai.BuildSystemPrompt(persona)}}
	for _, t := range outcome.RecentContext {
		messages = append(messages, ai.Message{Role: "user", Content: t.Text})
	}

	// The wake-word turn carries the command; later turns carry the raw
	// transcript, which is already the last buffered context entry.
	last := transcript
	if outcome.Kind == ambient.OutcomeWakeWordDetected && outcome.Command != "" {
		last = outcome.Command
	}
	if len(messages) == 1 || messages[len(messages)-1].Content != last {
		messages = append(messages, ai.Message{Role: "user", Content: last})
	}

	reply, err := s.LLMService.Chat(ctx, messages)
	if err != nil {
		return "", err
	}
	observability.ReplyDuration.Observe(time.Since(start).Seconds())
	return reply, nil
}

// transcribeClip decodes and transcribes a base64 audio clip.
func (s *APIV1Service) transcribeClip(ctx context.Context, encoded, mimeType string) (string, error) {
	if s.SpeechService == nil {
		return "", apierr.ServiceUnavailable("no speech vendor configured")
	}
	audio, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", apierr.InvalidArgument("audio must be base64")
	}
	result, err := s.SpeechService.Transcribe(ctx, audio, mimeType)
	if err != nil {
		return "", apierr.GenerationFailed("transcription failed", err)
	}
	return result.Transcript, nil
}

// CheckIdleTimeout closes a conversation the child walked away from.
func (s *APIV1Service) CheckIdleTimeout(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("sessionId")

	outcome, err := s.Tracker.CheckIdleTimeout(sessionID, time.Now())
	if err != nil {
		if err == ambient.ErrSessionNotFound {
			return writeError(c, apierr.NotFound("session not found"))
		}
		return writeError(c, apierr.Internal("failed to check timeout", err))
	}

	if outcome.Kind == ambient.OutcomeTimedOut {
		observability.TurnsTotal.WithLabelValues(string(outcome.Kind)).Inc()
		if binding := s.sessions.get(sessionID); binding != nil {
			binding.mu.Lock()
			s.endConversationLocked(ctx, binding, time.Now())
			binding.mu.Unlock()
		}
	}

	return c.JSON(http.StatusOK, timeoutCheckResponse{
		Outcome:       string(outcome.Kind),
		ListeningMode: string(outcome.ListeningMode),
	})
}

// GetVoiceSessionStatus reports a read-only snapshot. Unknown sessions are
// reported as absent rather than erroring, so devices can poll safely.
func (s *APIV1Service) GetVoiceSessionStatus(c echo.Context) error {
	sessionID := c.Param("sessionId")

	snapshot, err := s.Tracker.Status(sessionID)
	if err != nil {
		if err == ambient.ErrSessionNotFound {
			return c.JSON(http.StatusOK, sessionStatusResponse{
				Exists:        false,
				ListeningMode: string(ambient.ModeInactive),
			})
		}
		return writeError(c, apierr.Internal("failed to get status", err))
	}

	return c.JSON(http.StatusOK, sessionStatusResponse{
		Exists:             snapshot.Exists,
		ListeningMode:      string(snapshot.ListeningMode),
		ConversationActive: snapshot.ConversationActive,
		MicLockedUntil:     snapshot.MicLockedUntil,
	})
}

// StopVoiceSession ends listening and drops the session. Idempotent.
func (s *APIV1Service) StopVoiceSession(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("sessionId")

	_, statusErr := s.Tracker.Status(sessionID)
	result := s.Tracker.Stop(sessionID)
	s.Tracker.Remove(sessionID)

	if binding := s.sessions.remove(sessionID); binding != nil {
		binding.mu.Lock()
		s.endConversationLocked(ctx, binding, time.Now())
		binding.mu.Unlock()
	}

	if statusErr == nil {
		observability.SessionsActive.Dec()
		slog.Info("voice session stopped", observability.LogFieldSessionID, sessionID)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"listeningMode": string(result.ListeningMode),
	})
}
