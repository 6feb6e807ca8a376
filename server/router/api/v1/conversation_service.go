package v1

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	apierr "github.com/buddylabs/buddy/server/internal/errors"
	"github.com/buddylabs/buddy/store"
)

// conversationPayload is the JSON shape of one conversation.
type conversationPayload struct {
	ID        string `json:"id"`
	UserID    int32  `json:"userId"`
	CreatedTs int64  `json:"createdTs"`
	UpdatedTs int64  `json:"updatedTs"`
	EndedTs   *int64 `json:"endedTs"`
}

// conversationMessagePayload is one utterance or reply.
type conversationMessagePayload struct {
	ID        int32  `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedTs int64  `json:"createdTs"`
}

func toConversationPayload(conv *store.Conversation) conversationPayload {
	return conversationPayload{
		ID:        conv.ID,
		UserID:    conv.UserID,
		CreatedTs: conv.CreatedTs,
		UpdatedTs: conv.UpdatedTs,
		EndedTs:   conv.EndedTs,
	}
}

type createConversationRequest struct {
	UserID int32 `json:"userId"`
}

type appendMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CreateConversation opens a conversation outside the voice pipeline, e.g.
// when a parent replays a text exchange from the dashboard.
func (s *APIV1Service) CreateConversation(c echo.Context) error {
	ctx := c.Request().Context()

	req := &createConversationRequest{}
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

	now := time.Now().Unix()
	conv, err := s.Store.CreateConversation(ctx, &store.Conversation{
		ID:        shortuuid.New(),
		CreatedTs: now,
		UpdatedTs: now,
		UserID:    req.UserID,
	})
	if err != nil {
		return writeError(c, apierr.Internal("failed to create conversation", err))
	}

	return c.JSON(http.StatusOK, toConversationPayload(conv))
}

// AppendConversationMessage records one message on an open conversation.
func (s *APIV1Service) AppendConversationMessage(c echo.Context) error {
	ctx := c.Request().Context()

	conversationID := c.Param("id")
	if conversationID == "" {
		return writeError(c, apierr.InvalidArgument("conversation id is required"))
	}

	req := &appendMessageRequest{}
	if err := c.Bind(req); err != nil {
		return writeError(c, apierr.InvalidArgument("malformed request body"))
	}
	if req.Role != "child" && req.Role != "buddy" {
		return writeError(c, apierr.InvalidArgument(`role must be "child" or "buddy"`))
	}
	if strings.TrimSpace(req.Content) == "" {
		return writeError(c, apierr.InvalidArgument("content is required"))
	}

	conv, err := s.Store.GetConversation(ctx, &store.FindConversation{ID: &conversationID})
	if err != nil {
		return writeError(c, apierr.Internal("failed to get conversation", err))
	}
	if conv == nil {
		return writeError(c, apierr.NotFound("conversation not found"))
	}
	if conv.EndedTs != nil {
		return writeError(c, apierr.InvalidArgument("conversation has ended"))
	}

	message, err := s.Store.CreateConversationMessage(ctx, &store.ConversationMessage{
		CreatedTs:      time.Now().Unix(),
		ConversationID: conversationID,
		Role:           req.Role,
		Content:        req.Content,
	})
	if err != nil {
		return writeError(c, apierr.Internal("failed to record message", err))
	}

	return c.JSON(http.StatusOK, conversationMessagePayload{
		ID:        message.ID,
		Role:      message.Role,
		Content:   message.Content,
		CreatedTs: message.CreatedTs,
	})
}

func (s *APIV1Service) ListConversations(c echo.Context) error {
	ctx := c.Request().Context()

	find := &store.FindConversation{}
	if raw := c.QueryParam("userId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || id <= 0 {
			return writeError(c, apierr.InvalidArgument("invalid userId filter"))
		}
		userID := int32(id)
		find.UserID = &userID
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return writeError(c, apierr.InvalidArgument("invalid limit"))
		}
		find.Limit = &limit
	}

	conversations, err := s.Store.ListConversations(ctx, find)
	if err != nil {
		return writeError(c, apierr.Internal("failed to list conversations", err))
	}

	payload := make([]conversationPayload, 0, len(conversations))
	for _, conv := range conversations {
		payload = append(payload, toConversationPayload(conv))
	}
	return c.JSON(http.StatusOK, payload)
}

func (s *APIV1Service) GetConversation(c echo.Context) error {
	ctx := c.Request().Context()

	conversationID := c.Param("id")
	if conversationID == "" {
		return writeError(c, apierr.InvalidArgument("conversation id is required"))
	}

	conv, err := s.Store.GetConversation(ctx, &store.FindConversation{ID: &conversationID})
	if err != nil {
		return writeError(c, apierr.Internal("failed to get conversation", err))
	}
	if conv == nil {
		return writeError(c, apierr.NotFound("conversation not found"))
	}

	return c.JSON(http.StatusOK, toConversationPayload(conv))
}

func (s *APIV1Service) DeleteConversation(c echo.Context) error {
	ctx := c.Request().Context()

	conversationID := c.Param("id")
	if conversationID == "" {
		return writeError(c, apierr.InvalidArgument("conversation id is required"))
	}

	conv, err := s.Store.GetConversation(ctx, &store.FindConversation{ID: &conversationID})
	if err != nil {
		return writeError(c, apierr.Internal("failed to get conversation", err))
	}
	if conv == nil {
		return writeError(c, apierr.NotFound("conversation not found"))
	}

	if err := s.Store.DeleteConversation(ctx, &store.DeleteConversation{ID: conversationID}); err != nil {
		return writeError(c, apierr.Internal("failed to delete conversation", err))
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) ListConversationMessages(c echo.Context) error {
	ctx := c.Request().Context()

	conversationID := c.Param("id")
	if conversationID == "" {
		return writeError(c, apierr.InvalidArgument("conversation id is required"))
	}

	conv, err := s.Store.GetConversation(ctx, &store.FindConversation{ID: &conversationID})
	if err != nil {
		return writeError(c, apierr.Internal("failed to get conversation", err))
	}
	if conv == nil {
		return writeError(c, apierr.NotFound("conversation not found"))
	}

	messages, err := s.Store.ListConversationMessages(ctx, &store.FindConversationMessage{
		ConversationID: &conversationID,
	})
	if err != nil {
		return writeError(c, apierr.Internal("failed to list messages", err))
	}

	payload := make([]conversationMessagePayload, 0, len(messages))
	for _, m := range messages {
		payload = append(payload, conversationMessagePayload{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			CreatedTs: m.CreatedTs,
		})
	}
	return c.JSON(http.StatusOK, payload)
}
