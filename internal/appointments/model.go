// Package appointments commits call bookings against open availability.
// A commit decrements the slot's remaining closer capacity and records
// the appointment in one transaction, so two visitors racing for the
// last opening cannot both win.
package appointments

import "time"

// Appointment is a committed call booking.
type Appointment struct {
	ID              string    `json:"appointment_id"`
	OrgID           string    `json:"org_id"`
	RequestID       string    `json:"request_id"`
	LeadID          string    `json:"lead_id"`
	StartAt         time.Time `json:"start_at"`
	DurationMinutes int       `json:"duration_minutes"`
	TimeZone        string    `json:"time_zone"`
	CreatedAt       time.Time `json:"created_at"`
}

// CommitRequest carries one booking attempt.
type CommitRequest struct {
	OrgID           string
	RequestID       string
	StartAt         time.Time
	DurationMinutes int
	TimeZone        string
}
