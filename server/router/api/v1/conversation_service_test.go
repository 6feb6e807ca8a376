package v1

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreateUser(t, "Mia", 6)

	rec := env.doRequest(t, http.MethodPost, "/api/v1/conversations",
		strings.NewReader(`{"userId": 1}`), true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	conv := &conversationPayload{}
	decode(t, rec, conv)
	require.NotEmpty(t, conv.ID)
	assert.Nil(t, conv.EndedTs)

	rec = env.doRequest(t, http.MethodPost, "/api/v1/conversations/"+conv.ID+"/messages",
		strings.NewReader(`{"role": "child", "content": "tell me a joke"}`), true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.doRequest(t, http.MethodPost, "/api/v1/conversations/"+conv.ID+"/messages",
		strings.NewReader(`{"role": "buddy", "content": "Why did the chicken cross the road?"}`), true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doRequest(t, http.MethodGet, "/api/v1/conversations/"+conv.ID+"/messages", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	messages := []conversationMessagePayload{}
	decode(t, rec, &messages)
	require.Len(t, messages, 2)
	assert.Equal(t, "child", messages[0].Role)
	assert.Equal(t, "buddy", messages[1].Role)

	rec = env.doRequest(t, http.MethodGet, "/api/v1/conversations?userId=1", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	list := []conversationPayload{}
	decode(t, rec, &list)
	assert.Len(t, list, 1)

	rec = env.doRequest(t, http.MethodDelete, "/api/v1/conversations/"+conv.ID, nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.doRequest(t, http.MethodGet, "/api/v1/conversations/"+conv.ID, nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAppendConversationMessage_Validation(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreateUser(t, "Mia", 6)

	rec := env.doRequest(t, http.MethodPost, "/api/v1/conversations",
		strings.NewReader(`{"userId": 1}`), true)
	require.Equal(t, http.StatusOK, rec.Code)
	conv := &conversationPayload{}
	decode(t, rec, conv)

	t.Run("BadRole", func(t *testing.T) {
		rec := env.doRequest(t, http.MethodPost, "/api/v1/conversations/"+conv.ID+"/messages",
			strings.NewReader(`{"role": "narrator", "content": "hi"}`), true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("EmptyContent", func(t *testing.T) {
		rec := env.doRequest(t, http.MethodPost, "/api/v1/conversations/"+conv.ID+"/messages",
			strings.NewReader(`{"role": "child", "content": "  "}`), true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("UnknownConversation", func(t *testing.T) {
		rec := env.doRequest(t, http.MethodPost, "/api/v1/conversations/nope/messages",
			strings.NewReader(`{"role": "child", "content": "hi"}`), true)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCreateConversation_UnknownUser(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doRequest(t, http.MethodPost, "/api/v1/conversations",
		strings.NewReader(`{"userId": 9}`), true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
