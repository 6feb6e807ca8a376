package ambient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWakeMatcher_Match(t *testing.T) {
	m := newWakeMatcher([]string{"hey buddy", "buddy"})
	words := m.merge(nil)

	testCases := []struct {
		name        string
		transcript  string
		wantFound   bool
		wantCommand string
	}{
		{"exact", "hey buddy tell me a joke", true, "tell me a joke"},
		{"mid_sentence", "um hey buddy what time is it", true, "what time is it"},
		{"first_occurrence_splits", "hey buddy say hey buddy again", true, "say hey buddy again"},
		{"wake_word_only", "hey buddy", true, ""},
		{"trailing_punctuation", "hey buddy!", true, ""},
		{"case_insensitive", "HEY BUDDY sing", true, "sing"},
		{"regex_hi_ai", "hi ai can you hear me", true, "can you hear me"},
		{"no_match", "tell me a story", false, ""},
		{"empty", "", false, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			found, command := m.match(words, tc.transcript)
			assert.Equal(t, tc.wantFound, found)
			assert.Equal(t, tc.wantCommand, command)
		})
	}
}

func TestWakeMatcher_MergeDeduplicates(t *testing.T) {
	m := newWakeMatcher([]string{"hey buddy"})

	merged := m.merge([]string{"HEY BUDDY", "oye amigo", "", "  "})
	assert.Equal(t, []string{"hey buddy", "oye amigo"}, merged)

	// Base list is untouched by merges.
	assert.Equal(t, []string{"hey buddy"}, m.merge(nil))
}

func TestIsEndPhrase(t *testing.T) {
	ending := []string{
		"goodbye",
		"okay bye",
		"BYE",
		"stop",
		"that's all for now",
		"thank you buddy",
		"thanks, buddy",
		"go to sleep now",
	}
	for _, phrase := range ending {
		assert.True(t, isEndPhrase(phrase), phrase)
	}

	continuing := []string{
		"tell me about stopwatches",
		"the bus stopped outside",
		"goodbyes are hard to spell",
		"thank you for the story",
		"",
	}
	for _, phrase := range continuing {
		assert.False(t, isEndPhrase(phrase), phrase)
	}
}
