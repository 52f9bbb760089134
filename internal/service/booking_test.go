package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivanand-hulikatti/eventcore/internal/model"
	"github.com/shivanand-hulikatti/eventcore/internal/policy"
	"github.com/shivanand-hulikatti/eventcore/internal/repository"
	"github.com/shivanand-hulikatti/eventcore/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newBookingService(store *memStore) *service.BookingService {
	return service.NewBookingService(
		eventStore{store}, registrationStore{store}, assignmentStore{store}, discardLogger())
}

func TestBook(t *testing.T) {
	ctx := context.Background()
	organizer := newProfile(model.RoleOrganizer)
	attendee := newProfile(model.RoleAttendee)

	t.Run("attendee_books_published_event", func(t *testing.T) {
		store := newMemStore()
		ev := store.addEvent(organizer, model.EventPublished, 10, time.Hour)
		svc := newBookingService(store)

		reg, err := svc.Book(ctx, attendee, ev.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RegistrationConfirmed, reg.Status)
		assert.Equal(t, attendee.ID, reg.AttendeeID)
		assert.NotEmpty(t, reg.TicketCode)
	})

	t.Run("organizer_and_volunteer_not_eligible", func(t *testing.T) {
		store := newMemStore()
		ev := store.addEvent(organizer, model.EventPublished, 10, time.Hour)
		svc := newBookingService(store)

		for _, actor := range []model.Profile{organizer, newProfile(model.RoleVolunteer)} {
			_, err := svc.Book(ctx, actor, ev.ID)
			assert.ErrorIs(t, err, service.ErrNotEligible)
		}
	})

	t.Run("draft_event_not_bookable", func(t *testing.T) {
		store := newMemStore()
		ev := store.addEvent(organizer, model.EventDraft, 10, time.Hour)
		svc := newBookingService(store)

		_, err := svc.Book(ctx, attendee, ev.ID)
		assert.ErrorIs(t, err, repository.ErrEventNotBookable)
	})

	t.Run("started_event_not_bookable", func(t *testing.T) {
		store := newMemStore()
		ev := store.addEvent(organizer, model.EventPublished, 10, -time.Hour)
		svc := newBookingService(store)

		_, err := svc.Book(ctx, attendee, ev.ID)
		assert.ErrorIs(t, err, repository.ErrEventNotBookable)
	})

	t.Run("second_booking_rejected", func(t *testing.T) {
		store := newMemStore()
		ev := store.addEvent(organizer, model.EventPublished, 10, time.Hour)
		svc := newBookingService(store)

		_, err := svc.Book(ctx, attendee, ev.ID)
		require.NoError(t, err)
		_, err = svc.Book(ctx, attendee, ev.ID)
		assert.ErrorIs(t, err, repository.ErrAlreadyRegistered)
	})

	t.Run("full_event_rejected", func(t *testing.T) {
		store := newMemStore()
		ev := store.addEvent(organizer, model.EventPublished, 1, time.Hour)
		svc := newBookingService(store)

		_, err := svc.Book(ctx, newProfile(model.RoleAttendee), ev.ID)
		require.NoError(t, err)
		_, err = svc.Book(ctx, attendee, ev.ID)
		assert.ErrorIs(t, err, repository.ErrCapacityExceeded)
	})

	t.Run("transient_conflicts_retried", func(t *testing.T) {
		store := newMemStore()
		ev := store.addEvent(organizer, model.EventPublished, 10, time.Hour)
		store.bookConflicts = 2
		svc := newBookingService(store)

		reg, err := svc.Book(ctx, attendee, ev.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RegistrationConfirmed, reg.Status)
	})

	t.Run("conflict_retries_bounded", func(t *testing.T) {
		store := newMemStore()
		ev := store.addEvent(organizer, model.EventPublished, 10, time.Hour)
		store.bookConflicts = 5
		svc := newBookingService(store)

		_, err := svc.Book(ctx, attendee, ev.ID)
		assert.ErrorIs(t, err, repository.ErrConflictRetry)
	})

	t.Run("unknown_event_not_found", func(t *testing.T) {
		store := newMemStore()
		svc := newBookingService(store)

		_, err := svc.Book(ctx, attendee, newProfile(model.RoleAttendee).ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

// TestBookConcurrent drives N concurrent bookings against a capacity-C event
// and requires exactly C confirmations with every other attempt rejected for
// capacity, never overbooking under any interleaving.
func TestBookConcurrent(t *testing.T) {
	const capacity = 5
	const attempts = 40

	ctx := context.Background()
	store := newMemStore()
	organizer := newProfile(model.RoleOrganizer)
	ev := store.addEvent(organizer, model.EventPublished, capacity, time.Hour)
	svc := newBookingService(store)

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Book(ctx, newProfile(model.RoleAttendee), ev.ID)
		}(i)
	}
	wg.Wait()

	var confirmed, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			confirmed++
		default:
			require.ErrorIs(t, err, repository.ErrCapacityExceeded)
			rejected++
		}
	}
	assert.Equal(t, capacity, confirmed)
	assert.Equal(t, attempts-capacity, rejected)

	got, err := eventStore{store}.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, capacity, got.BookedCount)
}

// TestTicketCodesUnique books across several events and checks every issued
// ticket code is distinct.
func TestTicketCodesUnique(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	organizer := newProfile(model.RoleOrganizer)
	svc := newBookingService(store)

	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		ev := store.addEvent(organizer, model.EventPublished, 10, time.Hour)
		for j := 0; j < 10; j++ {
			reg, err := svc.Book(ctx, newProfile(model.RoleAttendee), ev.ID)
			require.NoError(t, err)
			require.False(t, seen[reg.TicketCode], "duplicate ticket code %s", reg.TicketCode)
			seen[reg.TicketCode] = true
		}
	}
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	organizer := newProfile(model.RoleOrganizer)
	attendee := newProfile(model.RoleAttendee)

	t.Run("cancel_frees_exactly_one_seat", func(t *testing.T) {
		store := newMemStore()
		ev := store.addEvent(organizer, model.EventPublished, 1, time.Hour)
		svc := newBookingService(store)

		reg, err := svc.Book(ctx, attendee, ev.ID)
		require.NoError(t, err)

		other := newProfile(model.RoleAttendee)
		_, err = svc.Book(ctx, other, ev.ID)
		require.ErrorIs(t, err, repository.ErrCapacityExceeded)

		cancelled, err := svc.Cancel(ctx, attendee, reg.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RegistrationCancelled, cancelled.Status)

		// Exactly one subsequent booking succeeds.
		_, err = svc.Book(ctx, other, ev.ID)
		require.NoError(t, err)
		_, err = svc.Book(ctx, newProfile(model.RoleAttendee), ev.ID)
		assert.ErrorIs(t, err, repository.ErrCapacityExceeded)
	})

	t.Run("rebook_after_cancel_allowed", func(t *testing.T) {
		store := newMemStore()
		ev := store.addEvent(organizer, model.EventPublished, 5, time.Hour)
		svc := newBookingService(store)

		reg, err := svc.Book(ctx, attendee, ev.ID)
		require.NoError(t, err)
		_, err = svc.Cancel(ctx, attendee, reg.ID)
		require.NoError(t, err)

		_, err = svc.Book(ctx, attendee, ev.ID)
		assert.NoError(t, err)
	})

	t.Run("only_the_attendee_cancels", func(t *testing.T) {
		store := newMemStore()
		ev := store.addEvent(organizer, model.EventPublished, 5, time.Hour)
		svc := newBookingService(store)

		reg, err := svc.Book(ctx, attendee, ev.ID)
		require.NoError(t, err)

		// The organizer can see the registration but may not cancel it.
		_, err = svc.Cancel(ctx, organizer, reg.ID)
		assert.ErrorIs(t, err, policy.ErrForbidden)

		// A stranger cannot even see it.
		_, err = svc.Cancel(ctx, newProfile(model.RoleAttendee), reg.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("cancel_is_terminal", func(t *testing.T) {
		store := newMemStore()
		ev := store.addEvent(organizer, model.EventPublished, 5, time.Hour)
		svc := newBookingService(store)

		reg, err := svc.Book(ctx, attendee, ev.ID)
		require.NoError(t, err)
		_, err = svc.Cancel(ctx, attendee, reg.ID)
		require.NoError(t, err)

		_, err = svc.Cancel(ctx, attendee, reg.ID)
		assert.ErrorIs(t, err, repository.ErrInvalidTransition)
	})
}

func TestCheckIn(t *testing.T) {
	ctx := context.Background()
	organizer := newProfile(model.RoleOrganizer)
	attendee := newProfile(model.RoleAttendee)
	volunteer := newProfile(model.RoleVolunteer)

	setup := func(t *testing.T) (*memStore, *service.BookingService, *model.Event, *model.Registration) {
		store := newMemStore()
		ev := store.addEvent(organizer, model.EventPublished, 5, time.Hour)
		svc := newBookingService(store)
		reg, err := svc.Book(ctx, attendee, ev.ID)
		require.NoError(t, err)
		return store, svc, ev, reg
	}

	t.Run("organizer_checks_in", func(t *testing.T) {
		_, svc, _, reg := setup(t)

		got, err := svc.CheckIn(ctx, organizer, reg.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RegistrationAttended, got.Status)
		assert.True(t, got.CheckedIn)
		require.NotNil(t, got.CheckedInAt)
	})

	t.Run("assigned_volunteer_checks_in", func(t *testing.T) {
		store, svc, ev, reg := setup(t)
		require.NoError(t, assignmentStore{store}.Create(ctx, model.VolunteerAssignment{
			ID: reg.ID, EventID: ev.ID, VolunteerID: volunteer.ID, RoleLabel: "registration desk",
		}))

		got, err := svc.CheckIn(ctx, volunteer, reg.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RegistrationAttended, got.Status)
	})

	t.Run("unassigned_volunteer_denied", func(t *testing.T) {
		_, svc, _, reg := setup(t)

		// Not assigned to this event: the registration is invisible.
		_, err := svc.CheckIn(ctx, volunteer, reg.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("attendee_cannot_check_in_themself", func(t *testing.T) {
		_, svc, _, reg := setup(t)

		_, err := svc.CheckIn(ctx, attendee, reg.ID)
		assert.ErrorIs(t, err, policy.ErrForbidden)
	})

	t.Run("attended_is_terminal", func(t *testing.T) {
		_, svc, _, reg := setup(t)

		_, err := svc.CheckIn(ctx, organizer, reg.ID)
		require.NoError(t, err)
		_, err = svc.Cancel(ctx, attendee, reg.ID)
		assert.ErrorIs(t, err, repository.ErrInvalidTransition)
	})
}

func TestConfirm(t *testing.T) {
	ctx := context.Background()
	organizer := newProfile(model.RoleOrganizer)
	attendee := newProfile(model.RoleAttendee)

	t.Run("organizer_confirms_pending", func(t *testing.T) {
		store := newMemStore()
		ev := store.addEvent(organizer, model.EventPublished, 5, time.Hour)
		reg := store.addRegistration(ev.ID, attendee.ID, model.RegistrationPending)
		svc := newBookingService(store)

		got, err := svc.Confirm(ctx, organizer, reg.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RegistrationConfirmed, got.Status)
	})

	t.Run("confirming_claims_a_seat", func(t *testing.T) {
		store := newMemStore()
		ev := store.addEvent(organizer, model.EventPublished, 1, time.Hour)
		store.addRegistration(ev.ID, newProfile(model.RoleAttendee).ID, model.RegistrationConfirmed)
		reg := store.addRegistration(ev.ID, attendee.ID, model.RegistrationPending)
		svc := newBookingService(store)

		_, err := svc.Confirm(ctx, organizer, reg.ID)
		assert.ErrorIs(t, err, repository.ErrCapacityExceeded)
	})

	t.Run("attendee_cannot_confirm", func(t *testing.T) {
		store := newMemStore()
		ev := store.addEvent(organizer, model.EventPublished, 5, time.Hour)
		reg := store.addRegistration(ev.ID, attendee.ID, model.RegistrationPending)
		svc := newBookingService(store)

		_, err := svc.Confirm(ctx, attendee, reg.ID)
		assert.ErrorIs(t, err, policy.ErrForbidden)
	})
}

func TestListRegistrations(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	organizer := newProfile(model.RoleOrganizer)
	attendeeA := newProfile(model.RoleAttendee)
	attendeeB := newProfile(model.RoleAttendee)
	ev := store.addEvent(organizer, model.EventPublished, 5, time.Hour)
	svc := newBookingService(store)

	_, err := svc.Book(ctx, attendeeA, ev.ID)
	require.NoError(t, err)
	_, err = svc.Book(ctx, attendeeB, ev.ID)
	require.NoError(t, err)

	t.Run("organizer_sees_all", func(t *testing.T) {
		regs, err := svc.ListForEvent(ctx, organizer, ev.ID)
		require.NoError(t, err)
		assert.Len(t, regs, 2)
	})

	t.Run("attendee_sees_only_their_own", func(t *testing.T) {
		regs, err := svc.ListForEvent(ctx, attendeeA, ev.ID)
		require.NoError(t, err)
		require.Len(t, regs, 1)
		assert.Equal(t, attendeeA.ID, regs[0].AttendeeID)
	})

	t.Run("attendee_cannot_read_anothers_registration", func(t *testing.T) {
		regsB, err := svc.ListForEvent(ctx, attendeeB, ev.ID)
		require.NoError(t, err)
		require.Len(t, regsB, 1)

		regsA, err := svc.ListForEvent(ctx, attendeeA, ev.ID)
		require.NoError(t, err)
		_, err = svc.Get(ctx, attendeeB, regsA[0].ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}
