package ambient

import "time"

// ListeningMode describes what the device microphone is doing for a session.
type ListeningMode string

const (
	// ModeAmbient means the session is passively waiting for a wake word.
	ModeAmbient ListeningMode = "ambient"
	// ModeActive means the session is inside an open conversational turn.
	ModeActive ListeningMode = "active"
	// ModeInactive means the session is not listening at all.
	ModeInactive ListeningMode = "inactive"
)

// Transcript is one buffered utterance.
type Transcript struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionState is the per-session conversational state. One instance exists
// per live session id; all mutation goes through the Tracker, which assumes
// calls for a given session id are serialized by the caller.
type SessionState struct {
	SessionID string
	UserID    string

	ListeningMode      ListeningMode
	ConversationActive bool

	LastInteractionAt time.Time
	SessionStartedAt  time.Time

	// ContextBuffer holds the most recent transcripts, oldest first,
	// trimmed to the configured capacity on insert.
	ContextBuffer []Transcript

	// interactionWindow holds the timestamps of interactions inside the
	// trailing rate-limit window; pruned on each evaluation.
	interactionWindow []time.Time

	// MicLockedUntil, when set and in the future, rejects all input.
	// Once expired it is cleared on the next evaluation.
	MicLockedUntil *time.Time

	// LockRejections counts utterances rejected while the mic was locked.
	LockRejections int

	// wakeWords is the effective wake-word list for this session
	// (configured base list plus per-profile hints).
	wakeWords []string

	// breakSuggested records that the one-time break suggestion fired.
	breakSuggested bool
}

// appendTranscript pushes a transcript onto the FIFO, dropping the oldest
// entries beyond capacity.
func (s *SessionState) appendTranscript(text string, now time.Time, capacity int) {
	s.ContextBuffer = append(s.ContextBuffer, Transcript{Text: text, Timestamp: now})
	if overflow := len(s.ContextBuffer) - capacity; overflow > 0 {
		s.ContextBuffer = s.ContextBuffer[overflow:]
	}
}

// recordInteraction counts an interaction against the rolling window.
func (s *SessionState) recordInteraction(now time.Time) {
	s.interactionWindow = append(s.interactionWindow, now)
}

// pruneWindow drops interaction timestamps that fell out of the window and
// returns the remaining count.
func (s *SessionState) pruneWindow(now time.Time, window time.Duration) int {
	cutoff := now.Add(-window)
	kept := s.interactionWindow[:0]
	for _, ts := range s.interactionWindow {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	s.interactionWindow = kept
	return len(kept)
}

// recentContext returns a copy of the last n buffered transcripts.
func (s *SessionState) recentContext(n int) []Transcript {
	if len(s.ContextBuffer) < n {
		n = len(s.ContextBuffer)
	}
	out := make([]Transcript, n)
	copy(out, s.ContextBuffer[len(s.ContextBuffer)-n:])
	return out
}
