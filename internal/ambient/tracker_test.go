package ambient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newTestTracker() *Tracker {
	return NewTracker(DefaultConfig(), NewMemoryStore())
}

func startSession(t *testing.T, tr *Tracker, id string) {
	t.Helper()
	_, err := tr.Start(id, "user-1", UserProfile{Locale: "en-US"}, t0)
	require.NoError(t, err)
}

func TestStart(t *testing.T) {
	tr := newTestTracker()

	t.Run("CreatesAmbientSession", func(t *testing.T) {
		res, err := tr.Start("s1", "user-1", UserProfile{}, t0)
		require.NoError(t, err)
		assert.Equal(t, ModeAmbient, res.ListeningMode)
		assert.Contains(t, res.WakeWords, "hey buddy")
	})

	t.Run("EmptySessionID", func(t *testing.T) {
		_, err := tr.Start("", "user-1", UserProfile{}, t0)
		assert.ErrorIs(t, err, ErrInvalidSessionID)

		_, err = tr.Start("   ", "user-1", UserProfile{}, t0)
		assert.ErrorIs(t, err, ErrInvalidSessionID)
	})

	t.Run("RepeatedStartResets", func(t *testing.T) {
		startSession(t, tr, "s2")
		out, err := tr.ProcessUtterance("s2", "hey buddy hello", t0)
		require.NoError(t, err)
		require.Equal(t, OutcomeWakeWordDetected, out.Kind)

		// Restart puts the session back in ambient with an empty buffer.
		res, err := tr.Start("s2", "user-1", UserProfile{}, t0.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, ModeAmbient, res.ListeningMode)

		snap, err := tr.Status("s2")
		require.NoError(t, err)
		assert.False(t, snap.ConversationActive)

		ctxBuf, err := tr.RecentContext("s2")
		require.NoError(t, err)
		assert.Empty(t, ctxBuf)
	})

	t.Run("WakeWordHintsMerged", func(t *testing.T) {
		res, err := tr.Start("s3", "user-1", UserProfile{WakeWordHints: []string{"Oye Amigo"}}, t0)
		require.NoError(t, err)
		assert.Contains(t, res.WakeWords, "oye amigo")

		out, err := tr.ProcessUtterance("s3", "OYE AMIGO cuéntame un cuento", t0)
		require.NoError(t, err)
		assert.Equal(t, OutcomeWakeWordDetected, out.Kind)
		assert.Equal(t, "cuéntame un cuento", out.Command)
	})
}

func TestStopIdempotent(t *testing.T) {
	tr := newTestTracker()
	startSession(t, tr, "s1")

	res := tr.Stop("s1")
	assert.Equal(t, ModeInactive, res.ListeningMode)

	res = tr.Stop("s1")
	assert.Equal(t, ModeInactive, res.ListeningMode)

	// Unknown session is a no-op, not an error.
	res = tr.Stop("never-started")
	assert.Equal(t, ModeInactive, res.ListeningMode)
}

func TestProcessUtterance_UnknownSession(t *testing.T) {
	tr := newTestTracker()
	_, err := tr.ProcessUtterance("ghost", "hey buddy", t0)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestProcessUtterance_WakeWord(t *testing.T) {
	tr := newTestTracker()

	testCases := []struct {
		name        string
		transcript  string
		wantKind    OutcomeKind
		wantCommand string
	}{
		{
			name:        "lowercase",
			transcript:  "hey buddy tell me a story",
			wantKind:    OutcomeWakeWordDetected,
			wantCommand: "tell me a story",
		},
		{
			name:        "uppercase",
			transcript:  "HEY BUDDY tell me a story",
			wantKind:    OutcomeWakeWordDetected,
			wantCommand: "tell me a story",
		},
		{
			name:        "question_command",
			transcript:  "hey buddy what's your favorite color",
			wantKind:    OutcomeWakeWordDetected,
			wantCommand: "what's your favorite color",
		},
		{
			name:        "comma_after_wake_word",
			transcript:  "Hey Buddy, sing me a song",
			wantKind:    OutcomeWakeWordDetected,
			wantCommand: "sing me a song",
		},
		{
			name:        "regex_variant",
			transcript:  "hello ai are you there",
			wantKind:    OutcomeWakeWordDetected,
			wantCommand: "are you there",
		},
		{
			name:       "no_wake_word",
			transcript: "the weather is nice today",
			wantKind:   OutcomeAmbientListening,
		},
		{
			name:       "whitespace_only",
			transcript: "   \t ",
			wantKind:   OutcomeNoSpeech,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id := "wake-" + tc.name
			startSession(t, tr, id)

			out, err := tr.ProcessUtterance(id, tc.transcript, t0)
			require.NoError(t, err)
			assert.Equal(t, tc.wantKind, out.Kind)
			if tc.wantKind == OutcomeWakeWordDetected {
				assert.Equal(t, tc.wantCommand, out.Command)
				assert.Equal(t, ModeActive, out.ListeningMode)
			}
		})
	}
}

func TestProcessUtterance_ConversationFlow(t *testing.T) {
	tr := newTestTracker()
	startSession(t, tr, "s1")

	out, err := tr.ProcessUtterance("s1", "hey buddy let's chat", t0)
	require.NoError(t, err)
	require.Equal(t, OutcomeWakeWordDetected, out.Kind)

	out, err = tr.ProcessUtterance("s1", "what do dinosaurs eat", t0.Add(2*time.Second))
	require.NoError(t, err)
	assert.Equal(t, OutcomeConversationActive, out.Kind)
	assert.Equal(t, ModeActive, out.ListeningMode)
	require.NotEmpty(t, out.RecentContext)
	assert.Equal(t, "what do dinosaurs eat", out.RecentContext[len(out.RecentContext)-1].Text)

	// End phrase closes the turn and drops back to ambient.
	out, err = tr.ProcessUtterance("s1", "okay bye", t0.Add(4*time.Second))
	require.NoError(t, err)
	assert.Equal(t, OutcomeConversationEnded, out.Kind)
	assert.Equal(t, ModeAmbient, out.ListeningMode)

	snap, err := tr.Status("s1")
	require.NoError(t, err)
	assert.False(t, snap.ConversationActive)
	assert.Equal(t, ModeAmbient, snap.ListeningMode)
}

func TestProcessUtterance_RoundTripStatus(t *testing.T) {
	tr := newTestTracker()
	startSession(t, tr, "s1")

	out, err := tr.ProcessUtterance("s1", "just background chatter", t0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAmbientListening, out.Kind)

	snap, err := tr.Status("s1")
	require.NoError(t, err)
	assert.True(t, snap.Exists)
	assert.Equal(t, ModeAmbient, snap.ListeningMode)
	assert.False(t, snap.ConversationActive)
}

func TestProcessUtterance_RateLimitAndMicLock(t *testing.T) {
	cfg := DefaultConfig()
	tr := NewTracker(cfg, NewMemoryStore())
	startSession(t, tr, "s1")

	out, err := tr.ProcessUtterance("s1", "hey buddy let's talk", t0)
	require.NoError(t, err)
	require.Equal(t, OutcomeWakeWordDetected, out.Kind)

	// Fill the rolling window up to the limit.
	now := t0
	for i := 1; i < cfg.RateLimitMaxCount; i++ {
		now = now.Add(time.Second)
		out, err = tr.ProcessUtterance("s1", "keep talking", now)
		require.NoError(t, err)
		require.Equal(t, OutcomeConversationActive, out.Kind)
	}

	// The 61st utterance inside the window trips the throttle.
	now = now.Add(time.Second)
	out, err = tr.ProcessUtterance("s1", "one more", now)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRateLimited, out.Kind)

	// And the cool-down lock rejects the immediate follow-up.
	out, err = tr.ProcessUtterance("s1", "hello?", now.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, OutcomeMicLocked, out.Kind)

	snap, err := tr.Status("s1")
	require.NoError(t, err)
	require.NotNil(t, snap.MicLockedUntil)
	assert.Equal(t, now.Add(cfg.MicLockDuration), *snap.MicLockedUntil)
}

func TestProcessUtterance_MicLockExpires(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimitMaxCount = 2
	tr := NewTracker(cfg, NewMemoryStore())
	startSession(t, tr, "s1")

	_, err := tr.ProcessUtterance("s1", "hey buddy hi", t0)
	require.NoError(t, err)
	_, err = tr.ProcessUtterance("s1", "more", t0.Add(time.Second))
	require.NoError(t, err)

	out, err := tr.ProcessUtterance("s1", "again", t0.Add(2*time.Second))
	require.NoError(t, err)
	require.Equal(t, OutcomeRateLimited, out.Kind)

	// Past the lock expiry the stale lock is treated as unset. The window
	// itself has drained by then, so the utterance processes normally.
	later := t0.Add(2 * time.Hour)
	out, err = tr.ProcessUtterance("s1", "are you back", later)
	require.NoError(t, err)
	assert.Equal(t, OutcomeConversationActive, out.Kind)
}

func TestProcessUtterance_ContextBufferBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimitMaxCount = 1000
	tr := NewTracker(cfg, NewMemoryStore())
	startSession(t, tr, "s1")

	now := t0
	for i := 0; i < 50; i++ {
		now = now.Add(time.Second)
		_, err := tr.ProcessUtterance("s1", "background noise", now)
		require.NoError(t, err)
	}

	buf, err := tr.RecentContext("s1")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(buf), cfg.ContextBufferCapacity)
	assert.Len(t, buf, cfg.ContextBufferCapacity)
	// Most recent entry last.
	assert.Equal(t, now, buf[len(buf)-1].Timestamp)
}

func TestProcessUtterance_BreakSuggested(t *testing.T) {
	cfg := DefaultConfig()
	tr := NewTracker(cfg, NewMemoryStore())
	startSession(t, tr, "s1")

	_, err := tr.ProcessUtterance("s1", "hey buddy hi there", t0)
	require.NoError(t, err)

	// First utterance past the threshold is overridden once.
	past := t0.Add(cfg.BreakThreshold + time.Minute)
	out, err := tr.ProcessUtterance("s1", "tell me more", past)
	require.NoError(t, err)
	assert.Equal(t, OutcomeBreakSuggested, out.Kind)
	assert.True(t, out.WarrantsReply())

	// Only once: the next utterance resumes normal outcomes.
	out, err = tr.ProcessUtterance("s1", "and then what", past.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, OutcomeConversationActive, out.Kind)
}

func TestCheckIdleTimeout(t *testing.T) {
	tr := newTestTracker()
	startSession(t, tr, "s1")

	t.Run("UnknownSession", func(t *testing.T) {
		_, err := tr.CheckIdleTimeout("ghost", t0)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("InactiveBeforeWakeWord", func(t *testing.T) {
		out, err := tr.CheckIdleTimeout("s1", t0)
		require.NoError(t, err)
		assert.Equal(t, OutcomeInactive, out.Kind)
	})

	t.Run("StillActiveWithinTimeout", func(t *testing.T) {
		_, err := tr.ProcessUtterance("s1", "hey buddy hello", t0)
		require.NoError(t, err)

		out, err := tr.CheckIdleTimeout("s1", t0.Add(3*time.Second))
		require.NoError(t, err)
		assert.Equal(t, OutcomeStillActive, out.Kind)
		assert.Equal(t, ModeActive, out.ListeningMode)
	})

	t.Run("TimedOutPastSilence", func(t *testing.T) {
		out, err := tr.CheckIdleTimeout("s1", t0.Add(6*time.Second))
		require.NoError(t, err)
		assert.Equal(t, OutcomeTimedOut, out.Kind)
		assert.Equal(t, ModeAmbient, out.ListeningMode)

		snap, err := tr.Status("s1")
		require.NoError(t, err)
		assert.False(t, snap.ConversationActive)
	})
}

func TestOutcomeWarrantsReply(t *testing.T) {
	warranting := []OutcomeKind{OutcomeWakeWordDetected, OutcomeConversationActive, OutcomeBreakSuggested}
	silent := []OutcomeKind{OutcomeNoSpeech, OutcomeAmbientListening, OutcomeMicLocked, OutcomeRateLimited, OutcomeConversationEnded}

	for _, kind := range warranting {
		assert.True(t, TurnOutcome{Kind: kind}.WarrantsReply(), string(kind))
	}
	for _, kind := range silent {
		assert.False(t, TurnOutcome{Kind: kind}.WarrantsReply(), string(kind))
	}
}
