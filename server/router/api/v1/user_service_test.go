package v1

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCRUD(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doRequest(t, http.MethodPost, "/api/v1/users",
		strings.NewReader(`{"name": "Mia", "age": 6, "locale": "en-US", "interests": ["dinosaurs"]}`), true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := &userPayload{}
	decode(t, rec, created)
	assert.Equal(t, "Mia", created.Name)
	assert.Equal(t, 6, created.Age)
	assert.Equal(t, []string{"dinosaurs"}, created.Interests)
	require.NotZero(t, created.ID)

	rec = env.doRequest(t, http.MethodGet, "/api/v1/users/1", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doRequest(t, http.MethodPatch, "/api/v1/users/1",
		strings.NewReader(`{"age": 7}`), true)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := &userPayload{}
	decode(t, rec, updated)
	assert.Equal(t, 7, updated.Age)
	assert.Equal(t, "Mia", updated.Name)

	rec = env.doRequest(t, http.MethodGet, "/api/v1/users", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	list := []userPayload{}
	decode(t, rec, &list)
	assert.Len(t, list, 1)

	rec = env.doRequest(t, http.MethodDelete, "/api/v1/users/1", nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.doRequest(t, http.MethodGet, "/api/v1/users/1", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserValidation(t *testing.T) {
	env := newTestEnv(t)

	t.Run("EmptyName", func(t *testing.T) {
		rec := env.doRequest(t, http.MethodPost, "/api/v1/users",
			strings.NewReader(`{"name": "  ", "age": 6}`), true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("AgeOutOfRange", func(t *testing.T) {
		rec := env.doRequest(t, http.MethodPost, "/api/v1/users",
			strings.NewReader(`{"name": "Mia", "age": 42}`), true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("BadID", func(t *testing.T) {
		rec := env.doRequest(t, http.MethodGet, "/api/v1/users/abc", nil, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUserEndpointsRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doRequest(t, http.MethodGet, "/api/v1/users", nil, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.doRequest(t, http.MethodPost, "/api/v1/users",
		strings.NewReader(`{"name": "Mia", "age": 6}`), false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestParentalControls(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreateUser(t, "Mia", 6)

	t.Run("DefaultsBeforeConfigured", func(t *testing.T) {
		rec := env.doRequest(t, http.MethodGet, "/api/v1/users/1/parental-controls", nil, true)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		pc := &parentalControlPayload{}
		decode(t, rec, pc)
		assert.Equal(t, 60, pc.DailyLimitMinutes)
		assert.Equal(t, 7, pc.AllowedHourStart)
		assert.Equal(t, 20, pc.AllowedHourEnd)
		assert.True(t, pc.ContentFilterEnabled)
	})

	t.Run("Upsert", func(t *testing.T) {
		rec := env.doRequest(t, http.MethodPut, "/api/v1/users/1/parental-controls",
			strings.NewReader(`{
				"dailyLimitMinutes": 45,
				"allowedHourStart": 8,
				"allowedHourEnd": 19,
				"breakIntervalMinutes": 20,
				"contentFilterEnabled": true,
				"blockedTopics": ["monsters"]
			}`), true)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		pc := &parentalControlPayload{}
		decode(t, rec, pc)
		assert.Equal(t, 45, pc.DailyLimitMinutes)
		assert.Equal(t, []string{"monsters"}, pc.BlockedTopics)

		rec = env.doRequest(t, http.MethodGet, "/api/v1/users/1/parental-controls", nil, true)
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, pc)
		assert.Equal(t, 45, pc.DailyLimitMinutes)
	})

	t.Run("RejectsInvertedHours", func(t *testing.T) {
		rec := env.doRequest(t, http.MethodPut, "/api/v1/users/1/parental-controls",
			strings.NewReader(`{"dailyLimitMinutes": 45, "allowedHourStart": 20, "allowedHourEnd": 8}`), true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		rec := env.doRequest(t, http.MethodGet, "/api/v1/users/99/parental-controls", nil, true)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
