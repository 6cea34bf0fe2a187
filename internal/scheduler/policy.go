package scheduler

import "time"

const (
	// DefaultLeadTime is the minimum buffer between now and the earliest
	// bookable slot start.
	DefaultLeadTime = 30 * time.Minute

	// defaultScanDays bounds the forward scan when a selected day goes
	// stale.
	defaultScanDays = 14
)

// Policy decides which days and slots are currently bookable. It holds no
// mutable state; now is always passed in so selectability can be
// recomputed on every clock tick without side effects.
type Policy struct {
	LeadTime time.Duration
	ScanDays int
}

// DefaultPolicy returns the production policy: 30 minute lead time,
// 14 day stale-day scan bound.
func DefaultPolicy() Policy {
	return Policy{LeadTime: DefaultLeadTime, ScanDays: defaultScanDays}
}

// SlotSelectable reports whether the slot starts at or after now plus the
// lead time.
func (p Policy) SlotSelectable(now time.Time, s Slot) bool {
	return !s.StartAt.Before(now.Add(p.LeadTime))
}

// DaySelectable reports whether the day is not before today in the
// viewer's zone and has at least one selectable slot.
func (p Policy) DaySelectable(now time.Time, ix *CalendarIndex, day CalendarDay) bool {
	if ix == nil {
		return false
	}
	today := DayOf(now, ix.Location())
	if day.Before(today) {
		return false
	}
	for _, s := range ix.SlotsOn(day) {
		if p.SlotSelectable(now, s) {
			return true
		}
	}
	return false
}

// AdvanceIfStale returns current unchanged while it is still selectable.
// Once now has advanced past all of its slots, it scans forward day by
// day, bounded to ScanDays, and returns the first selectable day found.
// If none is found within the bound, current is returned as-is and the
// caller is expected to prompt for reselection.
func (p Policy) AdvanceIfStale(now time.Time, ix *CalendarIndex, current CalendarDay) CalendarDay {
	if ix == nil || p.DaySelectable(now, ix, current) {
		return current
	}
	scan := p.ScanDays
	if scan <= 0 {
		scan = defaultScanDays
	}
	candidate := current
	for i := 0; i < scan; i++ {
		candidate = candidate.AddDays(1)
		if p.DaySelectable(now, ix, candidate) {
			return candidate
		}
	}
	return current
}
