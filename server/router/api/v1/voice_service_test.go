package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buddylabs/buddy/store"
)

func startSession(t *testing.T, env *testEnv, userID int32) string {
	t.Helper()
	body := strings.NewReader(`{"userId": ` + strconv.Itoa(int(userID)) + `}`)
	rec := env.doRequest(t, http.MethodPost, "/api/v1/voice/sessions", body, false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := &startSessionResponse{}
	decode(t, rec, resp)
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID
}

func sendUtterance(t *testing.T, env *testEnv, sessionID, transcript string) (*httptest.ResponseRecorder, *utteranceResponse) {
	t.Helper()
	body := strings.NewReader(`{"transcript": ` + quote(transcript) + `}`)
	rec := env.doRequest(t, http.MethodPost, "/api/v1/voice/sessions/"+sessionID+"/utterance", body, false)
	resp := &utteranceResponse{}
	if rec.Code == http.StatusOK {
		decode(t, rec, resp)
	}
	return rec, resp
}

func quote(s string) string {
	return `"` + s + `"`
}

func TestStartVoiceSession(t *testing.T) {
	env := newTestEnv(t)
	user := env.mustCreateUser(t, "Mia", 6)

	sessionID := startSession(t, env, user.ID)
	assert.NotEmpty(t, sessionID)

	t.Run("UnknownUser", func(t *testing.T) {
		rec := env.doRequest(t, http.MethodPost, "/api/v1/voice/sessions",
			strings.NewReader(`{"userId": 999}`), false)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("MissingUserID", func(t *testing.T) {
		rec := env.doRequest(t, http.MethodPost, "/api/v1/voice/sessions",
			strings.NewReader(`{}`), false)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestProcessUtterance_WakeWordOpensConversation(t *testing.T) {
	env := newTestEnv(t)
	env.llm.Reply = "A story? I would love to tell you one!"
	user := env.mustCreateUser(t, "Mia", 6)
	sessionID := startSession(t, env, user.ID)

	rec, resp := sendUtterance(t, env, sessionID, "hey buddy tell me a story")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "wake_word_detected", resp.Outcome)
	assert.Equal(t, "active", resp.ListeningMode)
	assert.Equal(t, "tell me a story", resp.Command)
	require.NotNil(t, resp.Reply)
	assert.Equal(t, env.llm.Reply, resp.Reply.Text)

	// One conversation opened, child command and reply both recorded.
	conversations, err := env.service.Store.ListConversations(context.Background(), &store.FindConversation{UserID: &user.ID})
	require.NoError(t, err)
	require.Len(t, conversations, 1)

	messages, err := env.service.Store.ListConversationMessages(context.Background(), &store.FindConversationMessage{
		ConversationID: &conversations[0].ID,
	})
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "child", messages[0].Role)
	assert.Equal(t, "tell me a story", messages[0].Content)
	assert.Equal(t, "buddy", messages[1].Role)
}

func TestProcessUtterance_AmbientChatterIgnored(t *testing.T) {
	env := newTestEnv(t)
	user := env.mustCreateUser(t, "Mia", 6)
	sessionID := startSession(t, env, user.ID)

	rec, resp := sendUtterance(t, env, sessionID, "mom what's for dinner")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ambient_listening", resp.Outcome)
	assert.Nil(t, resp.Reply)
	assert.Empty(t, env.llm.Calls, "passive audio must not reach the model")
}

func TestProcessUtterance_EndPhraseClosesConversation(t *testing.T) {
	env := newTestEnv(t)
	env.llm.Reply = "Okay!"
	user := env.mustCreateUser(t, "Mia", 6)
	sessionID := startSession(t, env, user.ID)

	_, resp := sendUtterance(t, env, sessionID, "hey buddy let's chat")
	require.Equal(t, "wake_word_detected", resp.Outcome)

	_, resp = sendUtterance(t, env, sessionID, "okay goodbye")
	assert.Equal(t, "conversation_ended", resp.Outcome)
	assert.Equal(t, "ambient", resp.ListeningMode)
	assert.Nil(t, resp.Reply)

	// The conversation row is marked ended.
	conversations, err := env.service.Store.ListConversations(context.Background(), &store.FindConversation{UserID: &user.ID})
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.NotNil(t, conversations[0].EndedTs)
}

func TestProcessUtterance_UnknownSession(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := sendUtterance(t, env, "no-such-session", "hey buddy")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVoiceSessionStatus(t *testing.T) {
	env := newTestEnv(t)
	user := env.mustCreateUser(t, "Mia", 6)
	sessionID := startSession(t, env, user.ID)

	rec := env.doRequest(t, http.MethodGet, "/api/v1/voice/sessions/"+sessionID, nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	status := &sessionStatusResponse{}
	decode(t, rec, status)
	assert.True(t, status.Exists)
	assert.Equal(t, "ambient", status.ListeningMode)
	assert.False(t, status.ConversationActive)

	t.Run("UnknownSessionReportsAbsent", func(t *testing.T) {
		rec := env.doRequest(t, http.MethodGet, "/api/v1/voice/sessions/nope", nil, false)
		require.Equal(t, http.StatusOK, rec.Code)
		status := &sessionStatusResponse{}
		decode(t, rec, status)
		assert.False(t, status.Exists)
	})
}

func TestStopVoiceSession_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	user := env.mustCreateUser(t, "Mia", 6)
	sessionID := startSession(t, env, user.ID)

	rec := env.doRequest(t, http.MethodDelete, "/api/v1/voice/sessions/"+sessionID, nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Stopping again still succeeds.
	rec = env.doRequest(t, http.MethodDelete, "/api/v1/voice/sessions/"+sessionID, nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)

	// And the session really is gone.
	rec = env.doRequest(t, http.MethodGet, "/api/v1/voice/sessions/"+sessionID, nil, false)
	status := &sessionStatusResponse{}
	decode(t, rec, status)
	assert.False(t, status.Exists)
}

func TestCheckIdleTimeout_StillActive(t *testing.T) {
	env := newTestEnv(t)
	env.llm.Reply = "Hello!"
	user := env.mustCreateUser(t, "Mia", 6)
	sessionID := startSession(t, env, user.ID)

	_, resp := sendUtterance(t, env, sessionID, "hey buddy hello")
	require.Equal(t, "wake_word_detected", resp.Outcome)

	rec := env.doRequest(t, http.MethodPost, "/api/v1/voice/sessions/"+sessionID+"/timeout-check", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	check := &timeoutCheckResponse{}
	decode(t, rec, check)
	assert.Equal(t, "still_active", check.Outcome)
}
