// Package v1 exposes the REST API: child profiles, parental controls,
// conversation history, on-demand content, and the voice session endpoints
// the device talks to.
package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/buddylabs/buddy/internal/ambient"
	"github.com/buddylabs/buddy/internal/profile"
	"github.com/buddylabs/buddy/plugin/ai"
	"github.com/buddylabs/buddy/plugin/content"
	"github.com/buddylabs/buddy/plugin/speech"
	"github.com/buddylabs/buddy/server/auth"
	apierr "github.com/buddylabs/buddy/server/internal/errors"
	"github.com/buddylabs/buddy/server/middleware"
	"github.com/buddylabs/buddy/store"
)

type APIV1Service struct {
	Secret  string
	Profile *profile.Profile
	Store   *store.Store

	Tracker       *ambient.Tracker
	LLMService    ai.LLMService
	SpeechService speech.SpeechService
	Sourcer       *content.Sourcer

	// deviceLimiter throttles utterance submissions per session at the HTTP
	// edge, before the tracker's own per-child pacing applies.
	deviceLimiter *middleware.RateLimiter
	sessions      *sessionRegistry
}

func NewAPIV1Service(secret string, profile *profile.Profile, store *store.Store) *APIV1Service {
	service := &APIV1Service{
		Secret:        secret,
		Profile:       profile,
		Store:         store,
		Tracker:       ambient.NewTracker(trackerConfig(profile), nil),
		deviceLimiter: middleware.NewRateLimiter(100*time.Millisecond, 20),
		sessions:      newSessionRegistry(),
	}

	if profile.IsLLMEnabled() {
		llmConfig := ai.NewConfigFromProfile(profile)
		if err := llmConfig.Validate(); err != nil {
			slog.Warn("llm config invalid, replies disabled", "error", err)
		} else if llm, err := ai.NewLLMService(llmConfig); err != nil {
			slog.Warn("llm service unavailable, replies disabled", "error", err)
		} else {
			service.LLMService = llm
		}
	}

	if sp, err := speech.NewSpeechService(profile); err != nil {
		slog.Warn("speech service unavailable, audio disabled", "error", err)
	} else {
		service.SpeechService = sp
	}

	service.Sourcer = content.NewSourcer(service.LLMService)
	return service
}

// trackerConfig maps the server profile onto tracker settings. Zero values
// fall back to the tracker defaults.
func trackerConfig(p *profile.Profile) ambient.Config {
	return ambient.Config{
		SilenceTimeout:    p.SilenceTimeout,
		RateLimitWindow:   p.RateLimitWindow,
		RateLimitMaxCount: p.RateLimitMaxCount,
		MicLockDuration:   p.MicLockDuration,
		BreakThreshold:    p.BreakThreshold,
	}
}

// RegisterRoutes mounts all v1 endpoints on the Echo instance. Voice
// endpoints are open to the device; everything else needs a parent token.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")

	// Device-facing, unauthenticated.
	voice := g.Group("/voice")
	voice.POST("/sessions", s.StartVoiceSession)
	voice.POST("/sessions/:sessionId/utterance", s.ProcessUtterance)
	voice.POST("/sessions/:sessionId/timeout-check", s.CheckIdleTimeout)
	voice.GET("/sessions/:sessionId", s.GetVoiceSessionStatus)
	voice.DELETE("/sessions/:sessionId", s.StopVoiceSession)
	voice.GET("/sessions/:sessionId/stream", s.StreamVoiceSession)

	g.POST("/content/:kind", s.RequestContent)

	// Parent dashboard, token required.
	authed := g.Group("", auth.Middleware(s.Secret))
	authed.POST("/users", s.CreateUser)
	authed.GET("/users", s.ListUsers)
	authed.GET("/users/:id", s.GetUser)
	authed.PATCH("/users/:id", s.UpdateUser)
	authed.DELETE("/users/:id", s.DeleteUser)
	authed.GET("/users/:id/parental-controls", s.GetParentalControls)
	authed.PUT("/users/:id/parental-controls", s.UpsertParentalControls)
	authed.POST("/conversations", s.CreateConversation)
	authed.GET("/conversations", s.ListConversations)
	authed.GET("/conversations/:id", s.GetConversation)
	authed.DELETE("/conversations/:id", s.DeleteConversation)
	authed.GET("/conversations/:id/messages", s.ListConversationMessages)
	authed.POST("/conversations/:id/messages", s.AppendConversationMessage)
}

// errorResponse is the JSON error envelope for every v1 endpoint.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps an error onto an HTTP status and the JSON envelope.
func writeError(c echo.Context, err error) error {
	apiErr, ok := err.(*apierr.APIError)
	if !ok {
		slog.Error("unhandled error", "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Code:    string(apierr.ErrCodeInternal),
			Message: "internal error",
		})
	}

	status := http.StatusInternalServerError
	switch apiErr.Code {
	case apierr.ErrCodeInvalidArgument:
		status = http.StatusBadRequest
	case apierr.ErrCodeNotFound:
		status = http.StatusNotFound
	case apierr.ErrCodeUnauthorized:
		status = http.StatusUnauthorized
	case apierr.ErrCodeRateLimitExceeded:
		status = http.StatusTooManyRequests
	case apierr.ErrCodeServiceUnavailable:
		status = http.StatusServiceUnavailable
	case apierr.ErrCodeGenerationFailed:
		status = http.StatusBadGateway
	}

	return c.JSON(status, errorResponse{Code: string(apiErr.Code), Message: apiErr.Message})
}
