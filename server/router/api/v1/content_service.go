package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/buddylabs/buddy/plugin/content"
	apierr "github.com/buddylabs/buddy/server/internal/errors"
	"github.com/buddylabs/buddy/store"
)

type contentRequest struct {
	Topic  string `json:"topic"`
	UserID int32  `json:"userId"`
}

// RequestContent serves a story, song, or joke. When a userId is supplied the
// child's profile personalizes generation and their parental controls apply.
func (s *APIV1Service) RequestContent(c echo.Context) error {
	ctx := c.Request().Context()

	kind, err := content.ParseKind(c.Param("kind"))
	if err != nil {
		return writeError(c, apierr.InvalidArgument("kind must be story, song, or joke"))
	}

	req := &contentRequest{}
	if err := c.Bind(req); err != nil {
		return writeError(c, apierr.InvalidArgument("malformed request body"))
	}

	sourcerReq := content.Request{Kind: kind, Topic: req.Topic}
	if req.UserID > 0 {
		user, err := s.Store.GetUser(ctx, &store.FindUser{ID: &req.UserID})
		if err != nil {
			return writeError(c, apierr.Internal("failed to get user", err))
		}
		if user == nil {
			return writeError(c, apierr.NotFound("user not found"))
		}
		sourcerReq.ChildName = user.Name
		sourcerReq.Age = user.Age

		pc, err := s.Store.GetParentalControl(ctx, &store.FindParentalControl{UserID: &req.UserID})
		if err != nil {
			return writeError(c, apierr.Internal("failed to get parental controls", err))
		}
		if pc.ContentFilterEnabled {
			sourcerReq.BlockedTopics = pc.BlockedTopics
		}
	}

	result, err := s.Sourcer.Source(ctx, sourcerReq)
	if err != nil {
		return writeError(c, apierr.GenerationFailed("content generation failed", err))
	}

	c.Response().Header().Set("X-Content-Tier", string(result.Tier))
	return c.JSON(http.StatusOK, result)
}
