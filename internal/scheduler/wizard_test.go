package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdentityCreator struct {
	calls int
	err   error
}

func (f *fakeIdentityCreator) CreateDemoRequest(_ context.Context, _ Contact) (Identity, error) {
	f.calls++
	if f.err != nil {
		return Identity{}, f.err
	}
	return Identity{RequestID: fmt.Sprintf("req-%d", f.calls), LeadID: "lead-1"}, nil
}

type fakeCommitter struct {
	calls   int
	errs    []error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeCommitter) Commit(_ context.Context, _ string, startAt time.Time, _ int, _ string) (Appointment, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return Appointment{}, err
		}
	}
	return Appointment{StartAt: startAt}, nil
}

var testNow = time.Date(2025, time.January, 6, 13, 0, 0, 0, time.UTC)

func validContact() Contact {
	return Contact{
		Name:    "Ada Example",
		Company: "Example Labs",
		Email:   "ada@example.com",
		Phone:   "5551234567",
		Goals:   "automate our newsletter",
	}
}

func newTestWizard(t *testing.T, slots []Slot) (*Wizard, *fakeIdentityCreator, *fakeCommitter) {
	t.Helper()
	src := &stubSource{slots: slots}
	weeks := NewWeekController(src, time.UTC, CalendarDay{2025, time.January, 6}, WeekOptions{})
	require.NoError(t, weeks.Refresh(context.Background()))
	ids := &fakeIdentityCreator{}
	commits := &fakeCommitter{}
	w := NewWizard(weeks, ids, commits, DefaultPolicy(), time.UTC, "UTC", 30)
	return w, ids, commits
}

func TestWizardNewVisitorFlow(t *testing.T) {
	slot := utcSlot("2025-01-06T14:00:00Z", 1)
	w, ids, commits := newTestWizard(t, []Slot{slot})
	ctx := context.Background()

	require.NoError(t, w.SelectSlot(testNow, slot))
	require.NoError(t, w.Confirm(ctx, testNow))
	assert.Equal(t, StateContactDetails, w.State())

	require.NoError(t, w.SubmitDetails(ctx, validContact()))
	assert.Equal(t, StateConfirmed, w.State())
	assert.Equal(t, slot.StartAt, w.ConfirmedAt())
	assert.Equal(t, 1, ids.calls)
	assert.Equal(t, 1, commits.calls)

	// Normalized display form retained on the contact.
	assert.Equal(t, "(555) 123-4567", w.Contact().Phone)
}

func TestWizardReturningVisitorSkipsContactDetails(t *testing.T) {
	slot := utcSlot("2025-01-06T14:00:00Z", 1)
	w, ids, commits := newTestWizard(t, []Slot{slot})
	ctx := context.Background()

	w.SetIdentity(Identity{RequestID: "req-prior", LeadID: "lead-prior"})
	require.NoError(t, w.SelectSlot(testNow, slot))
	require.NoError(t, w.Confirm(ctx, testNow))

	assert.Equal(t, StateConfirmed, w.State())
	assert.Equal(t, 0, ids.calls, "no second contact form for an established identity")
	assert.Equal(t, 1, commits.calls)
}

func TestWizardIdentityCachedAcrossRetries(t *testing.T) {
	slot := utcSlot("2025-01-06T14:00:00Z", 1)
	w, ids, commits := newTestWizard(t, []Slot{slot})
	commits.errs = []error{fmt.Errorf("server rejected booking: %w", errors.New("validation"))}
	ctx := context.Background()

	require.NoError(t, w.SelectSlot(testNow, slot))
	require.NoError(t, w.Confirm(ctx, testNow))
	require.Error(t, w.SubmitDetails(ctx, validContact()))

	// Generic failure: stay on ContactDetails with the slot retained.
	assert.Equal(t, StateContactDetails, w.State())
	_, stillSelected := w.SelectedSlot()
	assert.True(t, stillSelected)

	// Retrying reuses the cached identity.
	require.NoError(t, w.SubmitDetails(ctx, validContact()))
	assert.Equal(t, StateConfirmed, w.State())
	assert.Equal(t, 1, ids.calls, "identity must be created at most once per session")
}

func TestWizardDoubleSubmitSingleIdentityCall(t *testing.T) {
	slot := utcSlot("2025-01-06T14:00:00Z", 1)
	w, ids, commits := newTestWizard(t, []Slot{slot})
	commits.block = make(chan struct{})
	commits.started = make(chan struct{}, 1)
	ctx := context.Background()

	require.NoError(t, w.SelectSlot(testNow, slot))
	require.NoError(t, w.Confirm(ctx, testNow))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = w.SubmitDetails(ctx, validContact())
	}()

	<-commits.started
	assert.True(t, w.InFlight())
	// Second rapid submit is rejected while the first is pending.
	assert.ErrorIs(t, w.SubmitDetails(ctx, validContact()), ErrCommitInFlight)

	close(commits.block)
	wg.Wait()

	assert.Equal(t, StateConfirmed, w.State())
	assert.Equal(t, 1, ids.calls)
	assert.Equal(t, 1, commits.calls)
}

func TestWizardConflictRecovery(t *testing.T) {
	taken := utcSlot("2025-01-06T14:00:00Z", 1)
	open := utcSlot("2025-01-06T15:00:00Z", 1)
	w, ids, commits := newTestWizard(t, []Slot{taken, open})
	commits.errs = []error{fmt.Errorf("booking: %w", ErrSlotConflict)}
	ctx := context.Background()

	require.NoError(t, w.SelectSlot(testNow, taken))
	require.NoError(t, w.Confirm(ctx, testNow))
	err := w.SubmitDetails(ctx, validContact())
	require.ErrorIs(t, err, ErrSlotConflict)

	// Back to time selection with the raced slot out of the running.
	assert.Equal(t, StateTimeSelection, w.State())
	_, selected := w.SelectedSlot()
	assert.False(t, selected)

	remaining := w.SelectableSlots(testNow, CalendarDay{2025, time.January, 6})
	require.Len(t, remaining, 1)
	assert.Equal(t, open.StartAt, remaining[0].StartAt)

	// The identity survived; rebooking skips contact entry.
	require.NoError(t, w.SelectSlot(testNow, open))
	require.NoError(t, w.Confirm(ctx, testNow))
	assert.Equal(t, StateConfirmed, w.State())
	assert.Equal(t, 1, ids.calls, "conflict must not create a duplicate identity")
}

func TestWizardIdentityNotFoundRestartsContactEntry(t *testing.T) {
	slot := utcSlot("2025-01-06T14:00:00Z", 1)
	w, _, commits := newTestWizard(t, []Slot{slot})
	commits.errs = []error{fmt.Errorf("booking: %w", ErrIdentityNotFound)}
	ctx := context.Background()

	w.SetIdentity(Identity{RequestID: "req-expired"})
	require.NoError(t, w.SelectSlot(testNow, slot))
	err := w.Confirm(ctx, testNow)
	require.ErrorIs(t, err, ErrIdentityNotFound)

	assert.Equal(t, StateContactDetails, w.State())
	_, ok := w.Identity()
	assert.False(t, ok, "stale identity must be discarded")
}

func TestWizardBackPreservesContactFields(t *testing.T) {
	slot := utcSlot("2025-01-06T14:00:00Z", 1)
	w, _, _ := newTestWizard(t, []Slot{slot})
	ctx := context.Background()

	require.NoError(t, w.SelectSlot(testNow, slot))
	require.NoError(t, w.Confirm(ctx, testNow))

	// Validation failure records the partial entry.
	partial := Contact{Name: "Ada Example"}
	assert.ErrorIs(t, w.SubmitDetails(ctx, partial), ErrCompanyRequired)

	require.NoError(t, w.Back())
	assert.Equal(t, StateTimeSelection, w.State())
	assert.Equal(t, "Ada Example", w.Contact().Name)
}

func TestWizardBookAnotherKeepsIdentity(t *testing.T) {
	first := utcSlot("2025-01-06T14:00:00Z", 1)
	second := utcSlot("2025-01-07T14:00:00Z", 1)
	w, ids, commits := newTestWizard(t, []Slot{first, second})
	ctx := context.Background()

	require.NoError(t, w.SelectSlot(testNow, first))
	require.NoError(t, w.Confirm(ctx, testNow))
	require.NoError(t, w.SubmitDetails(ctx, validContact()))
	require.Equal(t, StateConfirmed, w.State())

	require.NoError(t, w.BookAnother())
	assert.Equal(t, StateTimeSelection, w.State())
	assert.True(t, w.ConfirmedAt().IsZero())
	_, selected := w.SelectedSlot()
	assert.False(t, selected)

	require.NoError(t, w.SelectSlot(testNow, second))
	require.NoError(t, w.Confirm(ctx, testNow))
	assert.Equal(t, StateConfirmed, w.State())
	assert.Equal(t, 1, ids.calls, "second booking reuses the identity")
	assert.Equal(t, 2, commits.calls)
}

func TestWizardTickExpiresSelection(t *testing.T) {
	slot := utcSlot("2025-01-06T13:31:00Z", 1)
	w, _, _ := newTestWizard(t, []Slot{slot})

	require.NoError(t, w.SelectSlot(testNow, slot))
	w.Tick(testNow.Add(30 * time.Second))
	_, selected := w.SelectedSlot()
	assert.True(t, selected)
	assert.False(t, w.NeedsReselect())

	// Idle past the lead-time threshold: selection expires from the
	// passage of time alone.
	w.Tick(testNow.Add(32 * time.Minute))
	_, selected = w.SelectedSlot()
	assert.False(t, selected)
	assert.True(t, w.NeedsReselect())
}

func TestWizardTickAdvancesStaleDay(t *testing.T) {
	today := utcSlot("2025-01-06T13:31:00Z", 1)
	later := utcSlot("2025-01-08T10:00:00Z", 1)
	w, _, _ := newTestWizard(t, []Slot{today, later})

	require.NoError(t, w.SelectDay(testNow, CalendarDay{2025, time.January, 6}))
	w.Tick(testNow.Add(32 * time.Minute))

	day, ok := w.SelectedDay()
	require.True(t, ok)
	assert.Equal(t, CalendarDay{2025, time.January, 8}, day)
	assert.True(t, w.NeedsReselect())
}

func TestWizardNavigationClearsSlotKeepsIdentity(t *testing.T) {
	slot := utcSlot("2025-01-06T14:00:00Z", 1)
	w, _, _ := newTestWizard(t, []Slot{slot})
	ctx := context.Background()

	w.SetIdentity(Identity{RequestID: "req-1"})
	require.NoError(t, w.SelectSlot(testNow, slot))
	require.NoError(t, w.NextWeek(ctx))

	_, selected := w.SelectedSlot()
	assert.False(t, selected)
	_, ok := w.Identity()
	assert.True(t, ok)
}

func TestWizardConfirmRequiresSelectableSlot(t *testing.T) {
	slot := utcSlot("2025-01-06T13:31:00Z", 1)
	w, _, _ := newTestWizard(t, []Slot{slot})
	ctx := context.Background()

	require.NoError(t, w.SelectSlot(testNow, slot))
	// The slot expired between selection and confirmation.
	err := w.Confirm(ctx, testNow.Add(32*time.Minute))
	assert.ErrorIs(t, err, ErrSlotNotSelectable)
	assert.Equal(t, StateTimeSelection, w.State())
	assert.True(t, w.NeedsReselect())
}

func TestWizardValidation(t *testing.T) {
	slot := utcSlot("2025-01-06T14:00:00Z", 1)
	tests := []struct {
		name    string
		mutate  func(*Contact)
		wantErr error
	}{
		{"missing name", func(c *Contact) { c.Name = "" }, ErrNameRequired},
		{"missing company", func(c *Contact) { c.Company = "" }, ErrCompanyRequired},
		{"missing email", func(c *Contact) { c.Email = "" }, ErrEmailRequired},
		{"missing phone", func(c *Contact) { c.Phone = "" }, ErrPhoneRequired},
		{"bad phone", func(c *Contact) { c.Phone = "555-123" }, ErrInvalidPhone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, ids, _ := newTestWizard(t, []Slot{slot})
			ctx := context.Background()
			require.NoError(t, w.SelectSlot(testNow, slot))
			require.NoError(t, w.Confirm(ctx, testNow))

			c := validContact()
			tt.mutate(&c)
			assert.ErrorIs(t, w.SubmitDetails(ctx, c), tt.wantErr)
			assert.Equal(t, StateContactDetails, w.State())
			assert.Equal(t, 0, ids.calls, "validation failures never reach the network")
		})
	}
}

func TestWizardSelectDayRejectsUnselectable(t *testing.T) {
	slot := utcSlot("2025-01-06T14:00:00Z", 1)
	w, _, _ := newTestWizard(t, []Slot{slot})

	err := w.SelectDay(testNow, CalendarDay{2025, time.January, 5})
	assert.ErrorIs(t, err, ErrDayNotSelectable)
}

func TestWizardTickConcurrentWithRefresh(t *testing.T) {
	slot := utcSlot("2025-01-06T14:00:00Z", 1)
	w, _, _ := newTestWizard(t, []Slot{slot})
	ctx := context.Background()
	require.NoError(t, w.SelectSlot(testNow, slot))

	// Clock ticks and window refetches interleave; the race detector
	// verifies the week controller's state stays synchronized.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			w.Tick(testNow.Add(40 * time.Minute))
		}
	}()
	for i := 0; i < 200; i++ {
		require.NoError(t, w.RefreshWeek(ctx))
	}
	wg.Wait()

	assert.Equal(t, StateTimeSelection, w.State())
}
