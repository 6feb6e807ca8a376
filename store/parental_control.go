package store

// ParentalControl is the per-child usage policy configured by a parent.
// One row per user, upserted in place.
type ParentalControl struct {
	UserID int32

	// Standard fields
	UpdatedTs int64

	// Domain specific fields
	DailyLimitMinutes    int
	AllowedHourStart     int // 0-23, inclusive
	AllowedHourEnd       int // 0-23, exclusive
	BreakIntervalMinutes int
	ContentFilterEnabled bool
	BlockedTopics        []string
}

// FindParentalControl is the filter for fetching parental controls.
type FindParentalControl struct {
	UserID *int32
}

// DefaultParentalControl returns the policy applied before a parent has
// configured anything.
func DefaultParentalControl(userID int32) *ParentalControl {
	return &ParentalControl{
		UserID:               userID,
		DailyLimitMinutes:    60,
		AllowedHourStart:     7,
		AllowedHourEnd:       20,
		BreakIntervalMinutes: 30,
		ContentFilterEnabled: true,
	}
}
