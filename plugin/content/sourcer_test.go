package content

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buddylabs/buddy/plugin/ai"
)

func TestParseKind(t *testing.T) {
	for _, s := range []string{"story", "Song", "JOKE"} {
		_, err := ParseKind(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseKind("poem")
	assert.Error(t, err)
}

func TestSource_LibraryTier(t *testing.T) {
	sourcer := NewSourcer(nil)

	result, err := sourcer.Source(context.Background(), Request{Kind: KindJoke, Topic: "dinosaurs"})
	require.NoError(t, err)
	assert.Equal(t, TierLibrary, result.Tier)
	assert.Contains(t, result.Body, "dino-SNORE")
}

func TestSource_EmptyTopicUsesLibrary(t *testing.T) {
	sourcer := NewSourcer(nil)

	result, err := sourcer.Source(context.Background(), Request{Kind: KindStory})
	require.NoError(t, err)
	assert.Equal(t, TierLibrary, result.Tier)
	assert.NotEmpty(t, result.Body)
}

func TestSource_LLMTier(t *testing.T) {
	mock := ai.NewMockLLMService()
	mock.Reply = "Once there was a purple elephant who loved to tap dance. The end."
	sourcer := NewSourcer(mock)

	result, err := sourcer.Source(context.Background(), Request{
		Kind:      KindStory,
		Topic:     "a purple elephant",
		ChildName: "Leo",
		Age:       5,
	})
	require.NoError(t, err)
	assert.Equal(t, TierLLM, result.Tier)
	assert.Equal(t, mock.Reply, result.Body)
	require.Len(t, mock.Calls, 1)
	assert.Equal(t, "system", mock.Calls[0][0].Role)
	assert.Contains(t, mock.Calls[0][0].Content, "Leo")
}

func TestSource_TemplateFallbackOnError(t *testing.T) {
	mock := ai.NewMockLLMService()
	mock.Err = fmt.Errorf("vendor down")
	sourcer := NewSourcer(mock)

	result, err := sourcer.Source(context.Background(), Request{Kind: KindSong, Topic: "submarines"})
	require.NoError(t, err)
	assert.Equal(t, TierTemplate, result.Tier)
	assert.Contains(t, result.Body, "submarines")
}

func TestSource_TemplateWithoutLLM(t *testing.T) {
	sourcer := NewSourcer(nil)

	result, err := sourcer.Source(context.Background(), Request{Kind: KindJoke, Topic: "submarines"})
	require.NoError(t, err)
	assert.Equal(t, TierTemplate, result.Tier)
}

func TestSource_BlockedTopicRedirects(t *testing.T) {
	mock := ai.NewMockLLMService()
	sourcer := NewSourcer(mock)

	result, err := sourcer.Source(context.Background(), Request{
		Kind:          KindStory,
		Topic:         "scary monsters",
		BlockedTopics: []string{"monsters"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Let's Try Something Else", result.Title)
	assert.NotContains(t, result.Body, "monsters")
	assert.Empty(t, mock.Calls, "blocked topics must not reach the model")
}

func TestSource_InvalidKind(t *testing.T) {
	sourcer := NewSourcer(nil)

	_, err := sourcer.Source(context.Background(), Request{Kind: Kind("poem")})
	assert.Error(t, err)
}
