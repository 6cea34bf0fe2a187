// Package scheduler implements the call-booking flow for the demo
// scheduler: slot bucketing by viewer-local day, lead-time selectability,
// week navigation, and the booking wizard state machine. The package does
// no I/O of its own; availability and commit calls go through the
// SlotSource, IdentityCreator and Committer interfaces.
package scheduler

import "time"

// Slot is one bookable interval and how many closers remain open in it.
// Slots are immutable once received; a fresh fetch replaces the whole
// working set.
type Slot struct {
	StartAt  time.Time
	EndAt    time.Time
	Capacity int
}

// CalendarDay is a local calendar date used as a grouping/sorting key.
// It is derived from an instant in the viewer's zone and never persisted.
type CalendarDay struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the calendar day of t in loc.
func DayOf(t time.Time, loc *time.Location) CalendarDay {
	local := t.In(loc)
	return CalendarDay{Year: local.Year(), Month: local.Month(), Day: local.Day()}
}

// Date returns midnight of the day in loc.
func (d CalendarDay) Date(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns the day shifted by n calendar days.
func (d CalendarDay) AddDays(n int) CalendarDay {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	return CalendarDay{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Before reports whether d is strictly earlier than other.
func (d CalendarDay) Before(other CalendarDay) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// Equal reports whether two days are the same calendar date.
func (d CalendarDay) Equal(other CalendarDay) bool {
	return d.Year == other.Year && d.Month == other.Month && d.Day == other.Day
}

// String formats the day as YYYY-MM-DD.
func (d CalendarDay) String() string {
	return d.Date(time.UTC).Format(time.DateOnly)
}
