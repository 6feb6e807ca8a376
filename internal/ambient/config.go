package ambient

import "time"

// Config holds the tunable thresholds for ambient session tracking.
// All values have working defaults; zero values are replaced on construction.
type Config struct {
	// WakeWords are the phrases that promote a session from ambient
	// listening to an active conversation. Matched case-insensitively.
	WakeWords []string

	// SilenceTimeout is the idle cutoff for ending an active conversation.
	SilenceTimeout time.Duration

	// RateLimitWindow and RateLimitMaxCount throttle interactions: once
	// RateLimitMaxCount interactions land inside a trailing
	// RateLimitWindow, further utterances are rejected.
	RateLimitWindow   time.Duration
	RateLimitMaxCount int

	// MicLockDuration is the cool-down applied once the rate limit trips.
	MicLockDuration time.Duration

	// BreakThreshold is the total session duration after which a one-time
	// break suggestion is issued.
	BreakThreshold time.Duration

	// ContextBufferCapacity bounds the per-session transcript FIFO.
	ContextBufferCapacity int
}

// DefaultConfig returns the default tracker configuration.
func DefaultConfig() Config {
	return Config{
		WakeWords:             []string{"hey buddy", "hi buddy", "hello buddy", "buddy"},
		SilenceTimeout:        5 * time.Second,
		RateLimitWindow:       time.Hour,
		RateLimitMaxCount:     60,
		MicLockDuration:       60 * time.Second,
		BreakThreshold:        30 * time.Minute,
		ContextBufferCapacity: 10,
	}
}

// normalize fills in defaults for any unset field.
func (c *Config) normalize() {
	def := DefaultConfig()
	if len(c.WakeWords) == 0 {
		c.WakeWords = def.WakeWords
	}
	if c.SilenceTimeout <= 0 {
		c.SilenceTimeout = def.SilenceTimeout
	}
	if c.RateLimitWindow <= 0 {
		c.RateLimitWindow = def.RateLimitWindow
	}
	if c.RateLimitMaxCount <= 0 {
		c.RateLimitMaxCount = def.RateLimitMaxCount
	}
	if c.MicLockDuration <= 0 {
		c.MicLockDuration = def.MicLockDuration
	}
	if c.BreakThreshold <= 0 {
		c.BreakThreshold = def.BreakThreshold
	}
	if c.ContextBufferCapacity <= 0 {
		c.ContextBufferCapacity = def.ContextBufferCapacity
	}
}
