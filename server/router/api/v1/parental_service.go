package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierr "github.com/buddylabs/buddy/server/internal/errors"
	"github.com/buddylabs/buddy/store"
)

// parentalControlPayload is the JSON shape of a child's usage policy.
type parentalControlPayload struct {
	UserID               int32    `json:"userId"`
	DailyLimitMinutes    int      `json:"dailyLimitMinutes"`
	AllowedHourStart     int      `json:"allowedHourStart"`
	AllowedHourEnd       int      `json:"allowedHourEnd"`
	BreakIntervalMinutes int      `json:"breakIntervalMinutes"`
	ContentFilterEnabled bool     `json:"contentFilterEnabled"`
	BlockedTopics        []string `json:"blockedTopics"`
	UpdatedTs            int64    `json:"updatedTs"`
}

type upsertParentalControlRequest struct {
	DailyLimitMinutes    int      `json:"dailyLimitMinutes"`
	AllowedHourStart     int      `json:"allowedHourStart"`
	AllowedHourEnd       int      `json:"allowedHourEnd"`
	BreakIntervalMinutes int      `json:"breakIntervalMinutes"`
	ContentFilterEnabled bool     `json:"contentFilterEnabled"`
	BlockedTopics        []string `json:"blockedTopics"`
}

func toParentalControlPayload(pc *store.ParentalControl) parentalControlPayload {
	topics := pc.BlockedTopics
	if topics == nil {
		topics = []string{}
	}
	return parentalControlPayload{
		UserID:               pc.UserID,
		DailyLimitMinutes:    pc.DailyLimitMinutes,
		AllowedHourStart:     pc.AllowedHourStart,
		AllowedHourEnd:       pc.AllowedHourEnd,
		BreakIntervalMinutes: pc.BreakIntervalMinutes,
		ContentFilterEnabled: pc.ContentFilterEnabled,
		BlockedTopics:        topics,
		UpdatedTs:            pc.UpdatedTs,
	}
}

// GetParentalControls returns the stored policy, or the defaults when the
// parent has not saved one yet.
func (s *APIV1Service) GetParentalControls(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := parseUserID(c)
	if err != nil {
		return writeError(c, err)
	}

	user, err := s.Store.GetUser(ctx, &store.FindUser{ID: &userID})
	if err != nil {
		return writeError(c, apierr.Internal("failed to get user", err))
	}
	if user == nil {
		return writeError(c, apierr.NotFound("user not found"))
	}

	pc, err := s.Store.GetParentalControl(ctx, &store.FindParentalControl{UserID: &userID})
	if err != nil {
		return writeError(c, apierr.Internal("failed to get parental controls", err))
	}

	return c.JSON(http.StatusOK, toParentalControlPayload(pc))
}

func (s *APIV1Service) UpsertParentalControls(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := parseUserID(c)
	if err != nil {
		return writeError(c, err)
	}

	req := &upsertParentalControlRequest{}
	if err := c.Bind(req); err != nil {
		return writeError(c, apierr.InvalidArgument("malformed request body"))
	}
	if req.DailyLimitMinutes < 0 || req.DailyLimitMinutes > 24*60 {
		return writeError(c, apierr.InvalidArgument("dailyLimitMinutes out of range"))
	}
	if req.AllowedHourStart < 0 || req.AllowedHourStart > 23 ||
		req.AllowedHourEnd < 0 || req.AllowedHourEnd > 24 ||
		req.AllowedHourStart >= req.AllowedHourEnd {
		return writeError(c, apierr.InvalidArgument("allowed hours must satisfy 0 <= start < end <= 24"))
	}
	if req.BreakIntervalMinutes < 0 {
		return writeError(c, apierr.InvalidArgument("breakIntervalMinutes cannot be negative"))
	}

	user, err := s.Store.GetUser(ctx, &store.FindUser{ID: &userID})
	if err != nil {
		return writeError(c, apierr.Internal("failed to get user", err))
	}
	if user == nil {
		return writeError(c, apierr.NotFound("user not found"))
	}

	pc, err := s.Store.UpsertParentalControl(ctx, &store.ParentalControl{
		UserID:               userID,
		UpdatedTs:            time.Now().Unix(),
		DailyLimitMinutes:    req.DailyLimitMinutes,
		AllowedHourStart:     req.AllowedHourStart,
		AllowedHourEnd:       req.AllowedHourEnd,
		BreakIntervalMinutes: req.BreakIntervalMinutes,
		ContentFilterEnabled: req.ContentFilterEnabled,
		BlockedTopics:        req.BlockedTopics,
	})
	if err != nil {
		return writeError(c, apierr.Internal("failed to save parental controls", err))
	}

	return c.JSON(http.StatusOK, toParentalControlPayload(pc))
}
