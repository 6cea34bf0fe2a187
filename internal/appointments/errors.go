package appointments

import "errors"

var (
	// ErrRequestNotFound is returned when the referenced demo request
	// does not exist for the org
	ErrRequestNotFound = errors.New("demo request not found")

	// ErrSlotTaken is returned when the slot has no remaining capacity
	ErrSlotTaken = errors.New("slot no longer available")
)
