package scheduler

import (
	"sort"
	"time"
)

// CalendarIndex groups a flat slot list into per-local-day buckets, keyed
// by the calendar date of each slot's start in the viewer's zone. Each
// fetch builds a new index from scratch; there is no incremental merge.
type CalendarIndex struct {
	loc     *time.Location
	days    []CalendarDay
	buckets map[CalendarDay][]Slot
}

// BuildIndex buckets slots by viewer-local day. Buckets are sorted
// ascending by start instant; the sort is stable so equal starts keep
// input order.
func BuildIndex(slots []Slot, loc *time.Location) *CalendarIndex {
	if loc == nil {
		loc = time.UTC
	}
	ix := &CalendarIndex{
		loc:     loc,
		buckets: make(map[CalendarDay][]Slot),
	}
	for _, s := range slots {
		day := DayOf(s.StartAt, loc)
		if _, ok := ix.buckets[day]; !ok {
			ix.days = append(ix.days, day)
		}
		ix.buckets[day] = append(ix.buckets[day], s)
	}
	sort.Slice(ix.days, func(i, j int) bool { return ix.days[i].Before(ix.days[j]) })
	for day := range ix.buckets {
		bucket := ix.buckets[day]
		sort.SliceStable(bucket, func(i, j int) bool { return bucket[i].StartAt.Before(bucket[j].StartAt) })
	}
	return ix
}

// Location returns the viewer zone the index was built in.
func (ix *CalendarIndex) Location() *time.Location {
	return ix.loc
}

// Days returns the calendar days with at least one slot, ascending.
func (ix *CalendarIndex) Days() []CalendarDay {
	return ix.days
}

// SlotsOn returns the day's bucket, sorted ascending by start.
func (ix *CalendarIndex) SlotsOn(day CalendarDay) []Slot {
	return ix.buckets[day]
}

// Len returns the total number of slots across all buckets.
func (ix *CalendarIndex) Len() int {
	n := 0
	for _, bucket := range ix.buckets {
		n += len(bucket)
	}
	return n
}
