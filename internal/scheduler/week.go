package scheduler

import (
	"context"
	"sync"
	"time"
)

// SlotSource returns suggested slots for a window of consecutive days
// starting at startAt.
type SlotSource interface {
	SuggestSlots(ctx context.Context, startAt time.Time, days, durationMinutes, limit int) ([]Slot, error)
}

// WeekController maintains the visible 7-day window and the slot index
// built from the latest successful fetch. A failed fetch keeps the
// previous window's slots so the view is never blanked; the error is
// surfaced via FetchErr until the next successful fetch.
type WeekController struct {
	source          SlotSource
	loc             *time.Location
	windowDays      int
	durationMinutes int
	limit           int

	mu        sync.Mutex
	weekStart CalendarDay
	index     *CalendarIndex
	fetchGen  uint64
	fetchErr  error
}

// WeekOptions tunes the fetch window. Zero values fall back to the
// production defaults (7-day window, 30 minute appointments, 200 slots).
type WeekOptions struct {
	WindowDays      int
	DurationMinutes int
	Limit           int
}

// NewWeekController positions the window at weekStart without fetching.
// Call Refresh to load the initial window.
func NewWeekController(source SlotSource, loc *time.Location, weekStart CalendarDay, opts WeekOptions) *WeekController {
	if loc == nil {
		loc = time.UTC
	}
	if opts.WindowDays <= 0 {
		opts.WindowDays = 7
	}
	if opts.DurationMinutes <= 0 {
		opts.DurationMinutes = 30
	}
	if opts.Limit <= 0 {
		opts.Limit = 200
	}
	return &WeekController{
		source:          source,
		loc:             loc,
		windowDays:      opts.WindowDays,
		durationMinutes: opts.DurationMinutes,
		limit:           opts.Limit,
		weekStart:       weekStart,
		index:           BuildIndex(nil, loc),
	}
}

// WeekStart returns the first day of the visible window.
func (w *WeekController) WeekStart() CalendarDay {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.weekStart
}

// Days returns the visible window as consecutive calendar days.
func (w *WeekController) Days() []CalendarDay {
	w.mu.Lock()
	defer w.mu.Unlock()
	days := make([]CalendarDay, w.windowDays)
	for i := range days {
		days[i] = w.weekStart.AddDays(i)
	}
	return days
}

// Index returns the slot index from the last successful fetch.
func (w *WeekController) Index() *CalendarIndex {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.index
}

// FetchErr returns the error from the most recent fetch, or nil.
func (w *WeekController) FetchErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fetchErr
}

// Refresh refetches the current window.
func (w *WeekController) Refresh(ctx context.Context) error {
	return w.fetch(ctx)
}

// Next moves the window one week forward and refetches.
func (w *WeekController) Next(ctx context.Context) error {
	w.mu.Lock()
	w.weekStart = w.weekStart.AddDays(w.windowDays)
	w.mu.Unlock()
	return w.fetch(ctx)
}

// Previous moves the window one week backward and refetches.
func (w *WeekController) Previous(ctx context.Context) error {
	w.mu.Lock()
	w.weekStart = w.weekStart.AddDays(-w.windowDays)
	w.mu.Unlock()
	return w.fetch(ctx)
}

// JumpTo repositions the window so it contains day, keeping windows
// aligned to the current anchor, and refetches. A day already inside the
// window is a plain refresh.
func (w *WeekController) JumpTo(ctx context.Context, day CalendarDay) error {
	w.mu.Lock()
	delta := daysBetween(w.weekStart, day)
	weeks := delta / w.windowDays
	if delta < 0 && delta%w.windowDays != 0 {
		weeks--
	}
	w.weekStart = w.weekStart.AddDays(weeks * w.windowDays)
	w.mu.Unlock()
	return w.fetch(ctx)
}

// Contains reports whether day falls inside the visible window.
func (w *WeekController) Contains(day CalendarDay) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	delta := daysBetween(w.weekStart, day)
	return delta >= 0 && delta < w.windowDays
}

// fetch loads slots for the current window. The lock is released around
// the network call; the generation counter makes window updates
// last-write-wins, so a response that raced with a newer navigation is
// dropped instead of overwriting the newer window's data.
func (w *WeekController) fetch(ctx context.Context) error {
	w.mu.Lock()
	w.fetchGen++
	gen := w.fetchGen
	startAt := w.weekStart.Date(w.loc)
	w.mu.Unlock()

	slots, err := w.source.SuggestSlots(ctx, startAt, w.windowDays, w.durationMinutes, w.limit)

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.fetchGen {
		return nil
	}
	if err != nil {
		w.fetchErr = err
		return err
	}
	w.index = BuildIndex(slots, w.loc)
	w.fetchErr = nil
	return nil
}

func daysBetween(from, to CalendarDay) int {
	return int(to.Date(time.UTC).Sub(from.Date(time.UTC)) / (24 * time.Hour))
}
