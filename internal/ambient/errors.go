package ambient

import "errors"

var (
	// ErrInvalidSessionID is returned by Start when the session id is
	// empty or whitespace-only.
	ErrInvalidSessionID = errors.New("invalid session id")

	// ErrSessionNotFound is returned by ProcessUtterance and
	// CheckIdleTimeout when the session id was never started. Stop and
	// the HTTP status endpoint degrade to defaults instead.
	ErrSessionNotFound = errors.New("session not found")
)
