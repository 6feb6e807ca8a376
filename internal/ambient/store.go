package ambient

import "sync"

// SessionStore holds live session state keyed by session id. Implementations
// must be safe for concurrent access across different session ids; the
// tracker serializes access within one session.
type SessionStore interface {
	// Put stores (or replaces) the state for a session id.
	Put(state *SessionState)

	// Get returns the state for a session id, or nil if unknown.
	Get(sessionID string) *SessionState

	// Remove deletes the state for a session id. Removing an unknown id
	// is a no-op.
	Remove(sessionID string)

	// Len returns the number of live sessions.
	Len() int
}

// memoryStore is the in-process SessionStore. A single mutex with short
// critical sections guards the map; per-session state is mutated outside
// the lock under the caller's single-writer-per-session discipline.
type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*SessionState
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() SessionStore {
	return &memoryStore{sessions: make(map[string]*SessionState)}
}

func (s *memoryStore) Put(state *SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[state.SessionID] = state
}

func (s *memoryStore) Get(sessionID string) *SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[sessionID]
}

func (s *memoryStore) Remove(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func (s *memoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Ensure memoryStore implements SessionStore
var _ SessionStore = (*memoryStore)(nil)
