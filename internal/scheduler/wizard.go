package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// WizardState is the booking flow state.
type WizardState int

const (
	// StateTimeSelection is the initial state: browsing days and times.
	StateTimeSelection WizardState = iota
	// StateContactDetails collects contact fields for first-time visitors.
	StateContactDetails
	// StateConfirmed holds the committed start time until an explicit
	// "book another" reset.
	StateConfirmed
)

func (s WizardState) String() string {
	switch s {
	case StateTimeSelection:
		return "time_selection"
	case StateContactDetails:
		return "contact_details"
	case StateConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// Identity is the opaque reference tying a contact to a future
// appointment. Created at most once per wizard session.
type Identity struct {
	RequestID string
	LeadID    string
}

// Contact holds the demo-request fields collected in ContactDetails.
type Contact struct {
	Name            string
	Company         string
	Email           string
	Phone           string
	Goals           string
	NewsletterOptIn bool
}

// Appointment is the committed booking echoed back by the server.
type Appointment struct {
	StartAt time.Time
}

// IdentityCreator creates a demo request from validated contact fields.
type IdentityCreator interface {
	CreateDemoRequest(ctx context.Context, c Contact) (Identity, error)
}

// Committer attempts the reservation. Implementations map server failures
// onto ErrIdentityNotFound and ErrSlotConflict so the wizard can recover.
type Committer interface {
	Commit(ctx context.Context, requestID string, startAt time.Time, durationMinutes int, timeZone string) (Appointment, error)
}

// Commit outcome taxonomy. Wrapped by Committer implementations.
var (
	// ErrIdentityNotFound means the request id is unknown to the server;
	// the user must restart from contact entry.
	ErrIdentityNotFound = errors.New("booking identity not found")
	// ErrSlotConflict means the slot raced away between being shown and
	// being committed.
	ErrSlotConflict = errors.New("slot no longer available")
)

// Wizard errors.
var (
	ErrCommitInFlight    = errors.New("a booking request is already in flight")
	ErrNoSlotSelected    = errors.New("no slot selected")
	ErrSlotNotSelectable = errors.New("slot is no longer selectable")
	ErrDayNotSelectable  = errors.New("day is not selectable")
	ErrWrongState        = errors.New("operation not valid in current state")
	ErrNameRequired      = errors.New("name is required")
	ErrCompanyRequired   = errors.New("company is required")
	ErrEmailRequired     = errors.New("email is required")
	ErrPhoneRequired     = errors.New("phone is required")
)

// Wizard is the 3-state booking flow. All methods are safe to call from
// the clock tick goroutine and the UI concurrently; at most one
// identity-creation/commit round trip is in flight at a time.
type Wizard struct {
	mu sync.Mutex

	policy          Policy
	weeks           *WeekController
	ids             IdentityCreator
	commits         Committer
	loc             *time.Location
	timezone        string
	durationMinutes int

	state         WizardState
	identity      *Identity
	contact       Contact
	phone         Phone
	selectedDay   CalendarDay
	daySelected   bool
	selectedSlot  *Slot
	confirmedAt   time.Time
	inFlight      bool
	needsReselect bool
	excluded      map[int64]struct{}
}

// NewWizard wires the wizard to its collaborators. timezone names the
// viewer zone sent with commits; loc must match it.
func NewWizard(weeks *WeekController, ids IdentityCreator, commits Committer, policy Policy, loc *time.Location, timezone string, durationMinutes int) *Wizard {
	if loc == nil {
		loc = time.UTC
	}
	if durationMinutes <= 0 {
		durationMinutes = 30
	}
	return &Wizard{
		policy:          policy,
		weeks:           weeks,
		ids:             ids,
		commits:         commits,
		loc:             loc,
		timezone:        timezone,
		durationMinutes: durationMinutes,
		state:           StateTimeSelection,
		excluded:        make(map[int64]struct{}),
	}
}

// SetIdentity installs an externally established identity (returning
// visitor). Confirming a slot then skips ContactDetails entirely.
func (w *Wizard) SetIdentity(id Identity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.identity = &id
}

// State returns the current wizard state.
func (w *Wizard) State() WizardState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Identity returns the session identity, if one exists yet.
func (w *Wizard) Identity() (Identity, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.identity == nil {
		return Identity{}, false
	}
	return *w.identity, true
}

// Contact returns the entered contact fields; preserved across Back.
func (w *Wizard) Contact() Contact {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.contact
}

// SelectedDay returns the selected calendar day, if any.
func (w *Wizard) SelectedDay() (CalendarDay, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selectedDay, w.daySelected
}

// SelectedSlot returns the selected slot, if any.
func (w *Wizard) SelectedSlot() (Slot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selectedSlot == nil {
		return Slot{}, false
	}
	return *w.selectedSlot, true
}

// ConfirmedAt returns the committed start time once in StateConfirmed.
func (w *Wizard) ConfirmedAt() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.confirmedAt
}

// NeedsReselect reports whether the previous selection expired from the
// passage of time; cleared on the next selection.
func (w *Wizard) NeedsReselect() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.needsReselect
}

// InFlight reports whether a booking round trip is pending; the UI
// disables the submit affordance while true.
func (w *Wizard) InFlight() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inFlight
}

// SelectableSlots returns the day's bookable slots, excluding any that
// raced away since the last fetch.
func (w *Wizard) SelectableSlots(now time.Time, day CalendarDay) []Slot {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []Slot
	for _, s := range w.weeks.Index().SlotsOn(day) {
		if !w.policy.SlotSelectable(now, s) {
			continue
		}
		if _, gone := w.excluded[s.StartAt.Unix()]; gone {
			continue
		}
		out = append(out, s)
	}
	return out
}

// SelectDay picks a day; it must currently be selectable.
func (w *Wizard) SelectDay(now time.Time, day CalendarDay) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.policy.DaySelectable(now, w.weeks.Index(), day) {
		return ErrDayNotSelectable
	}
	w.selectedDay = day
	w.daySelected = true
	w.selectedSlot = nil
	w.needsReselect = false
	return nil
}

// SelectSlot picks a slot; it must currently be selectable and not
// excluded by a prior conflict.
func (w *Wizard) SelectSlot(now time.Time, s Slot) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.policy.SlotSelectable(now, s) {
		return ErrSlotNotSelectable
	}
	if _, gone := w.excluded[s.StartAt.Unix()]; gone {
		return ErrSlotNotSelectable
	}
	w.selectedDay = DayOf(s.StartAt, w.loc)
	w.daySelected = true
	w.selectedSlot = &s
	w.needsReselect = false
	return nil
}

// Confirm advances from TimeSelection. With an established identity the
// commit is attempted immediately, skipping ContactDetails; otherwise the
// wizard moves to ContactDetails.
func (w *Wizard) Confirm(ctx context.Context, now time.Time) error {
	w.mu.Lock()
	if w.state != StateTimeSelection {
		w.mu.Unlock()
		return ErrWrongState
	}
	if w.selectedSlot == nil {
		w.mu.Unlock()
		return ErrNoSlotSelected
	}
	if !w.policy.SlotSelectable(now, *w.selectedSlot) {
		w.selectedSlot = nil
		w.needsReselect = true
		w.mu.Unlock()
		return ErrSlotNotSelectable
	}
	if w.identity == nil {
		w.state = StateContactDetails
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()
	return w.commit(ctx)
}

// SubmitDetails validates contact fields, creates the identity if one
// does not exist yet, and attempts the commit. On failure the wizard
// stays in ContactDetails with the slot selection retained.
func (w *Wizard) SubmitDetails(ctx context.Context, c Contact) error {
	w.mu.Lock()
	if w.state != StateContactDetails {
		w.mu.Unlock()
		return ErrWrongState
	}
	phone, err := validateContact(&c)
	if err != nil {
		w.contact = c
		w.mu.Unlock()
		return err
	}
	w.contact = c
	w.phone = phone
	w.mu.Unlock()
	return w.commit(ctx)
}

// Back returns from ContactDetails to TimeSelection without clearing
// entered field values.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateContactDetails {
		return ErrWrongState
	}
	w.state = StateTimeSelection
	return nil
}

// BookAnother resets a confirmed wizard to TimeSelection, clearing the
// slot and confirmation but keeping the identity so a second booking
// skips contact entry.
func (w *Wizard) BookAnother() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateConfirmed {
		return ErrWrongState
	}
	w.state = StateTimeSelection
	w.selectedSlot = nil
	w.daySelected = false
	w.confirmedAt = time.Time{}
	w.needsReselect = false
	return nil
}

// Tick re-evaluates selectability against the current instant. A selected
// slot that slipped behind the lead-time threshold is deselected and the
// UI is prompted to reselect; a stale selected day auto-advances to the
// next selectable one.
func (w *Wizard) Tick(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateConfirmed {
		return
	}
	if w.selectedSlot != nil && !w.policy.SlotSelectable(now, *w.selectedSlot) {
		w.selectedSlot = nil
		w.needsReselect = true
	}
	if w.daySelected && !w.policy.DaySelectable(now, w.weeks.Index(), w.selectedDay) {
		advanced := w.policy.AdvanceIfStale(now, w.weeks.Index(), w.selectedDay)
		if !advanced.Equal(w.selectedDay) {
			w.selectedDay = advanced
		}
		w.needsReselect = true
	}
}

// NextWeek navigates forward; the slot selection is cleared since the
// chosen slot is no longer visible, the identity survives.
func (w *Wizard) NextWeek(ctx context.Context) error {
	return w.navigate(func() error { return w.weeks.Next(ctx) })
}

// PreviousWeek navigates backward.
func (w *Wizard) PreviousWeek(ctx context.Context) error {
	return w.navigate(func() error { return w.weeks.Previous(ctx) })
}

// JumpToDay repositions the window to the week containing day.
func (w *Wizard) JumpToDay(ctx context.Context, day CalendarDay) error {
	return w.navigate(func() error { return w.weeks.JumpTo(ctx, day) })
}

// RefreshWeek refetches the current window without moving it.
func (w *Wizard) RefreshWeek(ctx context.Context) error {
	return w.navigate(func() error { return w.weeks.Refresh(ctx) })
}

func (w *Wizard) navigate(move func() error) error {
	w.mu.Lock()
	w.selectedSlot = nil
	w.mu.Unlock()

	err := move()

	w.mu.Lock()
	defer w.mu.Unlock()
	if err == nil {
		// Fresh fetch replaced the working set; conflict exclusions are
		// scoped to the previous set.
		w.excluded = make(map[int64]struct{})
	}
	return err
}

// commit runs the identity-creation (if needed) and commit round trips
// with the in-flight guard held, then applies the outcome.
func (w *Wizard) commit(ctx context.Context) error {
	w.mu.Lock()
	if w.inFlight {
		w.mu.Unlock()
		return ErrCommitInFlight
	}
	if w.selectedSlot == nil {
		w.mu.Unlock()
		return ErrNoSlotSelected
	}
	slot := *w.selectedSlot
	identity := w.identity
	contact := w.contact
	contact.Phone = w.phone.E164
	w.inFlight = true
	w.mu.Unlock()

	outcome, created, err := w.attempt(ctx, identity, contact, slot)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight = false
	if created != nil {
		// Cache the identity even when the commit afterwards failed; it is
		// never re-created for this session.
		w.identity = created
	}
	if err == nil {
		w.state = StateConfirmed
		w.confirmedAt = outcome.StartAt
		return nil
	}
	switch {
	case errors.Is(err, ErrIdentityNotFound):
		w.identity = nil
		w.state = StateContactDetails
	case errors.Is(err, ErrSlotConflict):
		w.excluded[slot.StartAt.Unix()] = struct{}{}
		w.selectedSlot = nil
		w.state = StateTimeSelection
	}
	return err
}

// attempt performs the network round trips without holding the lock.
func (w *Wizard) attempt(ctx context.Context, identity *Identity, contact Contact, slot Slot) (Appointment, *Identity, error) {
	var created *Identity
	if identity == nil {
		id, err := w.ids.CreateDemoRequest(ctx, contact)
		if err != nil {
			return Appointment{}, nil, err
		}
		created = &id
		identity = &id
	}
	appt, err := w.commits.Commit(ctx, identity.RequestID, slot.StartAt, w.durationMinutes, w.timezone)
	return appt, created, err
}

// validateContact runs the presence checks and phone normalization,
// rewriting c.Phone to the display form.
func validateContact(c *Contact) (Phone, error) {
	if strings.TrimSpace(c.Name) == "" {
		return Phone{}, ErrNameRequired
	}
	if strings.TrimSpace(c.Company) == "" {
		return Phone{}, ErrCompanyRequired
	}
	if strings.TrimSpace(c.Email) == "" {
		return Phone{}, ErrEmailRequired
	}
	if strings.TrimSpace(c.Phone) == "" {
		return Phone{}, ErrPhoneRequired
	}
	phone, err := NormalizePhone(c.Phone)
	if err != nil {
		return Phone{}, err
	}
	c.Phone = phone.Display
	return phone, nil
}
