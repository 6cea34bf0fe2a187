// Package availability serves open call-slot suggestions for the booking
// flow. Slot rows are seeded per org; remaining closer capacity is
// decremented as appointments commit, so suggestion reads are cached only
// briefly.
package availability

import "time"

// Slot is one bookable interval with its remaining closer capacity.
type Slot struct {
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	CloserCount int       `json:"closer_count"`
}

// Query bounds a slot suggestion request.
type Query struct {
	OrgID           string
	StartAt         time.Time
	Days            int
	DurationMinutes int
	Limit           int
}
