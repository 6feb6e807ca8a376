package v1

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	apierr "github.com/buddylabs/buddy/server/internal/errors"
	"github.com/buddylabs/buddy/store"
)

// userPayload is the JSON shape of a child profile.
type userPayload struct {
	ID        int32    `json:"id"`
	Name      string   `json:"name"`
	Age       int      `json:"age"`
	Locale    string   `json:"locale"`
	Interests []string `json:"interests"`
	CreatedTs int64    `json:"createdTs"`
	UpdatedTs int64    `json:"updatedTs"`
}

type createUserRequest struct {
	Name      string   `json:"name"`
	Age       int      `json:"age"`
	Locale    string   `json:"locale"`
	Interests []string `json:"interests"`
}

type updateUserRequest struct {
	Name      *string   `json:"name"`
	Age       *int      `json:"age"`
	Locale    *string   `json:"locale"`
	Interests *[]string `json:"interests"`
}

func toUserPayload(u *store.User) userPayload {
	interests := u.Interests
	if interests == nil {
		interests = []string{}
	}
	return userPayload{
		ID:        u.ID,
		Name:      u.Name,
		Age:       u.Age,
		Locale:    u.Locale,
		Interests: interests,
		CreatedTs: u.CreatedTs,
		UpdatedTs: u.UpdatedTs,
	}
}

func (s *APIV1Service) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()

	req := &createUserRequest{}
	if err := c.Bind(req); err != nil {
		return writeError(c, apierr.InvalidArgument("malformed request body"))
	}
	if strings.TrimSpace(req.Name) == "" {
		return writeError(c, apierr.InvalidArgument("name is required"))
	}
	if req.Age < 0 || req.Age > 17 {
		return writeError(c, apierr.InvalidArgument("age must be between 0 and 17"))
	}

	now := time.Now().Unix()
	user, err := s.Store.CreateUser(ctx, &store.User{
		CreatedTs: now,
		UpdatedTs: now,
		Name:      strings.TrimSpace(req.Name),
		Age:       req.Age,
		Locale:    req.Locale,
		Interests: req.Interests,
	})
	if err != nil {
		return writeError(c, apierr.Internal("failed to create user", err))
	}

	return c.JSON(http.StatusOK, toUserPayload(user))
}

func (s *APIV1Service) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()

	users, err := s.Store.ListUsers(ctx, &store.FindUser{})
	if err != nil {
		return writeError(c, apierr.Internal("failed to list users", err))
	}

	payload := make([]userPayload, 0, len(users))
	for _, u := range users {
		payload = append(payload, toUserPayload(u))
	}
	return c.JSON(http.StatusOK, payload)
}

func (s *APIV1Service) GetUser(c echo.Context) error {
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

	return c.JSON(http.StatusOK, toUserPayload(user))
}

func (s *APIV1Service) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := parseUserID(c)
	if err != nil {
		return writeError(c, err)
	}

	req := &updateUserRequest{}
	if err := c.Bind(req); err != nil {
		return writeError(c, apierr.InvalidArgument("malformed request body"))
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return writeError(c, apierr.InvalidArgument("name cannot be empty"))
	}
	if req.Age != nil && (*req.Age < 0 || *req.Age > 17) {
		return writeError(c, apierr.InvalidArgument("age must be between 0 and 17"))
	}

	existing, err := s.Store.GetUser(ctx, &store.FindUser{ID: &userID})
	if err != nil {
		return writeError(c, apierr.Internal("failed to get user", err))
	}
	if existing == nil {
		return writeError(c, apierr.NotFound("user not found"))
	}

	user, err := s.Store.UpdateUser(ctx, &store.UpdateUser{
		ID:        userID,
		UpdatedTs: time.Now().Unix(),
		Name:      req.Name,
		Age:       req.Age,
		Locale:    req.Locale,
		Interests: req.Interests,
	})
	if err != nil {
		return writeError(c, apierr.Internal("failed to update user", err))
	}

	return c.JSON(http.StatusOK, toUserPayload(user))
}

func (s *APIV1Service) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := parseUserID(c)
	if err != nil {
		return writeError(c, err)
	}

	existing, err := s.Store.GetUser(ctx, &store.FindUser{ID: &userID})
	if err != nil {
		return writeError(c, apierr.Internal("failed to get user", err))
	}
	if existing == nil {
		return writeError(c, apierr.NotFound("user not found"))
	}

	if err := s.Store.DeleteUser(ctx, &store.DeleteUser{ID: userID}); err != nil {
		return writeError(c, apierr.Internal("failed to delete user", err))
	}

	return c.NoContent(http.StatusNoContent)
}

// parseUserID reads the :id path param.
func parseUserID(c echo.Context) (int32, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, apierr.InvalidArgument("invalid user id")
	}
	return int32(id), nil
}
