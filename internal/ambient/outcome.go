package ambient

import "time"

// OutcomeKind tags the result of processing one utterance or timeout check.
// Callers switch on the kind instead of string-matching response fields.
type OutcomeKind string

const (
	// OutcomeNoSpeech means the transcript was empty or whitespace-only.
	OutcomeNoSpeech OutcomeKind = "no_speech"
	// OutcomeAmbientListening means no wake word was heard; still passive.
	OutcomeAmbientListening OutcomeKind = "ambient_listening"
	// OutcomeWakeWordDetected means a wake word opened a conversation.
	OutcomeWakeWordDetected OutcomeKind = "wake_word_detected"
	// OutcomeConversationActive means an in-conversation utterance landed.
	OutcomeConversationActive OutcomeKind = "conversation_active"
	// OutcomeConversationEnded means an end phrase closed the conversation.
	OutcomeConversationEnded OutcomeKind = "conversation_ended"
	// OutcomeBreakSuggested means the session crossed the break threshold.
	OutcomeBreakSuggested OutcomeKind = "break_suggested"
	// OutcomeMicLocked means input was rejected during a cool-down.
	OutcomeMicLocked OutcomeKind = "mic_locked"
	// OutcomeRateLimited means the interaction window overflowed.
	OutcomeRateLimited OutcomeKind = "rate_limited"
	// OutcomeTimedOut means an idle check closed the conversation.
	OutcomeTimedOut OutcomeKind = "timed_out"
	// OutcomeStillActive means an idle check found the conversation live.
	OutcomeStillActive OutcomeKind = "still_active"
	// OutcomeInactive means an idle check found no open conversation.
	OutcomeInactive OutcomeKind = "inactive"
)

// TurnOutcome is the result of ProcessUtterance.
type TurnOutcome struct {
	Kind          OutcomeKind
	ListeningMode ListeningMode

	// Command is the transcript remainder after the wake word; set only
	// for OutcomeWakeWordDetected.
	Command string

	// RecentContext is the tail of the context buffer; set only for
	// OutcomeConversationActive.
	RecentContext []Transcript
}

// WarrantsReply reports whether the caller should hand this outcome to a
// reply generator. Passive, locked, and throttled outcomes never do.
func (o TurnOutcome) WarrantsReply() bool {
	switch o.Kind {
	case OutcomeWakeWordDetected, OutcomeConversationActive, OutcomeBreakSuggested:
		return true
	default:
		return false
	}
}

// TimeoutOutcome is the result of CheckIdleTimeout.
type TimeoutOutcome struct {
	Kind          OutcomeKind
	ListeningMode ListeningMode
}

// StartResult is the result of Start.
type StartResult struct {
	ListeningMode ListeningMode
	WakeWords     []string
}

// StopResult is the result of Stop.
type StopResult struct {
	ListeningMode ListeningMode
}

// StatusSnapshot is a read-only view of a session returned by Status.
type StatusSnapshot struct {
	Exists             bool
	ListeningMode      ListeningMode
	ConversationActive bool
	MicLockedUntil     *time.Time
}
