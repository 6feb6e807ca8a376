// Package ambient tracks per-session conversational state for the companion
// device: wake-word gating, rate limiting, mic lock, and idle timeout. It
// decides for each incoming transcript whether the session is passively
// listening or inside an active turn, independent of how speech was captured
// or how replies are generated.
//
// Evaluation timestamps are always passed in by the caller, so the logic is
// deterministic and testable without clock mocking. No operation blocks or
// performs I/O.
package ambient

import (
	"strings"
	"time"
)

// UserProfile carries the per-user hints consumed at session start. The
// tracker only reads wake-word hints from it.
type UserProfile struct {
	Locale        string
	WakeWordHints []string
}

// Tracker owns the ambient-listening state machine for all live sessions.
type Tracker struct {
	cfg     Config
	store   SessionStore
	matcher *wakeMatcher
}

// NewTracker creates a tracker over the given session store. Zero-valued
// config fields take their defaults.
func NewTracker(cfg Config, store SessionStore) *Tracker {
	cfg.normalize()
	if store == nil {
		store = NewMemoryStore()
	}
	return &Tracker{
		cfg:     cfg,
		store:   store,
		matcher: newWakeMatcher(cfg.WakeWords),
	}
}

// Config returns the effective configuration.
func (t *Tracker) Config() Config {
	return t.cfg
}

// Start creates (or resets) the session state and begins ambient listening.
// Repeated Start calls on the same id reset the session in place.
func (t *Tracker) Start(sessionID, userID string, profile UserProfile, now time.Time) (StartResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return StartResult{}, ErrInvalidSessionID
	}

	wakeWords := t.matcher.merge(profile.WakeWordHints)
	t.store.Put(&SessionState{
		SessionID:        sessionID,
		UserID:           userID,
		ListeningMode:    ModeAmbient,
		SessionStartedAt: now,
		wakeWords:        wakeWords,
	})

	return StartResult{ListeningMode: ModeAmbient, WakeWords: wakeWords}, nil
}

// Stop ends listening for the session. It is idempotent: stopping an unknown
// or already-stopped session reports inactive without error.
func (t *Tracker) Stop(sessionID string) StopResult {
	state := t.store.Get(sessionID)
	if state == nil {
		return StopResult{ListeningMode: ModeInactive}
	}

	state.ListeningMode = ModeInactive
	state.ConversationActive = false
	state.ContextBuffer = nil
	return StopResult{ListeningMode: ModeInactive}
}

// Remove drops the session state entirely. Used on session end.
func (t *Tracker) Remove(sessionID string) {
	t.store.Remove(sessionID)
}

// ProcessUtterance evaluates one transcript against the session state at
// time now. Rules are checked in priority order; the first match wins.
func (t *Tracker) ProcessUtterance(sessionID, transcript string, now time.Time) (TurnOutcome, error) {
	state := t.store.Get(sessionID)
	if state == nil {
		return TurnOutcome{}, ErrSessionNotFound
	}

	// Expired locks are treated as unset on the next evaluation.
	if state.MicLockedUntil != nil && !now.Before(*state.MicLockedUntil) {
		state.MicLockedUntil = nil
	}

	if state.MicLockedUntil != nil {
		state.LockRejections++
		return TurnOutcome{Kind: OutcomeMicLocked, ListeningMode: state.ListeningMode}, nil
	}

	if state.pruneWindow(now, t.cfg.RateLimitWindow) >= t.cfg.RateLimitMaxCount {
		lockedUntil := now.Add(t.cfg.MicLockDuration)
		state.MicLockedUntil = &lockedUntil
		return TurnOutcome{Kind: OutcomeRateLimited, ListeningMode: state.ListeningMode}, nil
	}

	if strings.TrimSpace(transcript) == "" {
		return TurnOutcome{Kind: OutcomeNoSpeech, ListeningMode: state.ListeningMode}, nil
	}

	var outcome TurnOutcome
	if !state.ConversationActive {
		outcome = t.processAmbient(state, transcript, now)
	} else {
		outcome = t.processActive(state, transcript, now)
	}

	// One-time break suggestion. It overrides passive and in-conversation
	// outcomes but never the lock/throttle rejections above.
	if (outcome.Kind == OutcomeConversationActive || outcome.Kind == OutcomeAmbientListening) &&
		!state.breakSuggested && now.Sub(state.SessionStartedAt) > t.cfg.BreakThreshold {
		state.breakSuggested = true
		outcome = TurnOutcome{Kind: OutcomeBreakSuggested, ListeningMode: state.ListeningMode}
	}

	return outcome, nil
}

// processAmbient handles an utterance outside an active conversation: scan
// for a wake word and either open a turn or keep listening passively.
func (t *Tracker) processAmbient(state *SessionState, transcript string, now time.Time) TurnOutcome {
	found, command := t.matcher.match(state.wakeWords, transcript)
	state.appendTranscript(transcript, now, t.cfg.ContextBufferCapacity)

	if !found {
		return TurnOutcome{Kind: OutcomeAmbientListening, ListeningMode: state.ListeningMode}
	}

	state.ConversationActive = true
	state.ListeningMode = ModeActive
	state.LastInteractionAt = now
	state.recordInteraction(now)

	return TurnOutcome{
		Kind:          OutcomeWakeWordDetected,
		ListeningMode: ModeActive,
		Command:       command,
	}
}

// processActive handles an in-conversation utterance: buffer it, count it
// against the rate window, and close the turn on an end phrase.
func (t *Tracker) processActive(state *SessionState, transcript string, now time.Time) TurnOutcome {
	state.appendTranscript(transcript, now, t.cfg.ContextBufferCapacity)
	state.LastInteractionAt = now
	state.recordInteraction(now)

	if isEndPhrase(transcript) {
		state.ConversationActive = false
		state.ListeningMode = ModeAmbient
		return TurnOutcome{Kind: OutcomeConversationEnded, ListeningMode: ModeAmbient}
	}

	return TurnOutcome{
		Kind:          OutcomeConversationActive,
		ListeningMode: ModeActive,
		RecentContext: state.recentContext(5),
	}
}

// CheckIdleTimeout ends an active conversation whose last interaction is
// older than the configured silence timeout. Polled by the caller; the
// tracker runs no internal timers.
func (t *Tracker) CheckIdleTimeout(sessionID string, now time.Time) (TimeoutOutcome, error) {
	state := t.store.Get(sessionID)
	if state == nil {
		return TimeoutOutcome{}, ErrSessionNotFound
	}

	if !state.ConversationActive {
		return TimeoutOutcome{Kind: OutcomeInactive, ListeningMode: state.ListeningMode}, nil
	}

	if now.Sub(state.LastInteractionAt) > t.cfg.SilenceTimeout {
		state.ConversationActive = false
		state.ListeningMode = ModeAmbient
		return TimeoutOutcome{Kind: OutcomeTimedOut, ListeningMode: ModeAmbient}, nil
	}

	return TimeoutOutcome{Kind: OutcomeStillActive, ListeningMode: state.ListeningMode}, nil
}

// Status returns a read-only snapshot of the session.
func (t *Tracker) Status(sessionID string) (StatusSnapshot, error) {
	state := t.store.Get(sessionID)
	if state == nil {
		return StatusSnapshot{}, ErrSessionNotFound
	}

	var lockedUntil *time.Time
	if state.MicLockedUntil != nil {
		until := *state.MicLockedUntil
		lockedUntil = &until
	}

	return StatusSnapshot{
		Exists:             true,
		ListeningMode:      state.ListeningMode,
		ConversationActive: state.ConversationActive,
		MicLockedUntil:     lockedUntil,
	}, nil
}

// RecentContext returns a copy of the session's buffered transcripts,
// oldest first.
func (t *Tracker) RecentContext(sessionID string) ([]Transcript, error) {
	state := t.store.Get(sessionID)
	if state == nil {
		return nil, ErrSessionNotFound
	}
	return state.recentContext(len(state.ContextBuffer)), nil
}
