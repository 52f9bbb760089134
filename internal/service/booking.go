package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shivanand-hulikatti/eventcore/internal/model"
	"github.com/shivanand-hulikatti/eventcore/internal/policy"
	"github.com/shivanand-hulikatti/eventcore/internal/repository"
)

// maxBookAttempts bounds internal retries of the atomic booking step on
// transient write conflicts.
const maxBookAttempts = 3

// BookingService orchestrates seat booking and registration state
// transitions, gated by the policy engine.
type BookingService struct {
	events        EventStore
	registrations RegistrationStore
	assignments   AssignmentStore
	log           *slog.Logger
}

// NewBookingService constructs a BookingService.
func NewBookingService(events EventStore, registrations RegistrationStore, assignments AssignmentStore, log *slog.Logger) *BookingService {
	return &BookingService{events: events, registrations: registrations, assignments: assignments, log: log}
}

// Book reserves a seat on an event for the acting attendee. The capacity
// check, duplicate check, and insert run atomically in the store; transient
// conflicts (deadlock, ticket code collision) are retried here up to
// maxBookAttempts with a short backoff, every other failure propagates
// immediately.
func (s *BookingService) Book(ctx context.Context, actor model.Profile, eventID uuid.UUID) (*model.Registration, error) {
	if actor.Role != model.RoleAttendee {
		return nil, ErrNotEligible
	}

	res := policy.RegistrationResource{
		Registration: model.Registration{EventID: eventID, AttendeeID: actor.ID},
	}
	if !policy.Can(actor, policy.OpCreate, res) {
		return nil, policy.ErrForbidden
	}

	for attempt := 1; ; attempt++ {
		reg, err := s.registrations.Book(ctx, eventID, actor.ID)
		if err == nil {
			s.log.Info("seat booked",
				"event_id", eventID, "attendee_id", actor.ID, "ticket", reg.TicketCode)
			return reg, nil
		}
		if !errors.Is(err, repository.ErrConflictRetry) || attempt >= maxBookAttempts {
			return nil, err
		}
		s.log.Warn("booking conflict, retrying", "event_id", eventID, "attempt", attempt)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * 25 * time.Millisecond):
		}
	}
}

// Cancel sets the actor's own registration to cancelled, freeing one seat.
func (s *BookingService) Cancel(ctx context.Context, actor model.Profile, registrationID uuid.UUID) (*model.Registration, error) {
	reg, _, _, err := s.loadVisible(ctx, actor, registrationID)
	if err != nil {
		return nil, err
	}
	// Only the attendee themself cancels; organizers and volunteers drive
	// confirm and check-in instead.
	if actor.ID != reg.AttendeeID {
		return nil, policy.ErrForbidden
	}
	return s.registrations.Cancel(ctx, registrationID)
}

// Confirm transitions a pending registration to confirmed. Organizer of the
// event or one of its assigned volunteers only.
func (s *BookingService) Confirm(ctx context.Context, actor model.Profile, registrationID uuid.UUID) (*model.Registration, error) {
	_, ev, assigned, err := s.loadVisible(ctx, actor, registrationID)
	if err != nil {
		return nil, err
	}
	if actor.ID != ev.OrganizerID && !assigned {
		return nil, policy.ErrForbidden
	}
	return s.registrations.Confirm(ctx, registrationID)
}

// CheckIn marks a confirmed registration attended and stamps the check-in
// time. Organizer of the event or one of its assigned volunteers only.
func (s *BookingService) CheckIn(ctx context.Context, actor model.Profile, registrationID uuid.UUID) (*model.Registration, error) {
	_, ev, assigned, err := s.loadVisible(ctx, actor, registrationID)
	if err != nil {
		return nil, err
	}
	if actor.ID != ev.OrganizerID && !assigned {
		return nil, policy.ErrForbidden
	}
	return s.registrations.CheckIn(ctx, registrationID)
}

// Get returns one registration the actor is allowed to see.
func (s *BookingService) Get(ctx context.Context, actor model.Profile, registrationID uuid.UUID) (*model.Registration, error) {
	reg, _, _, err := s.loadVisible(ctx, actor, registrationID)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// ListForEvent returns the registrations of an event visible to the actor:
// the full list for the organizer and assigned volunteers, the actor's own
// rows otherwise.
func (s *BookingService) ListForEvent(ctx context.Context, actor model.Profile, eventID uuid.UUID) ([]model.Registration, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(actor, policy.OpRead, policy.EventResource{Event: *ev}) {
		return nil, repository.ErrNotFound
	}

	regs, err := s.registrations.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	assigned, err := s.assignments.Exists(ctx, eventID, actor.ID)
	if err != nil {
		return nil, err
	}
	if actor.ID == ev.OrganizerID || assigned {
		return regs, nil
	}

	own := make([]model.Registration, 0, 1)
	for _, reg := range regs {
		if reg.AttendeeID == actor.ID {
			own = append(own, reg)
		}
	}
	return own, nil
}

// ListMine returns all registrations held by the acting attendee.
func (s *BookingService) ListMine(ctx context.Context, actor model.Profile) ([]model.Registration, error) {
	return s.registrations.ListByAttendee(ctx, actor.ID)
}

// loadVisible fetches a registration with its event and the actor's
// assignment fact, then applies the read policy. A registration the actor
// may not see is reported as not found.
func (s *BookingService) loadVisible(ctx context.Context, actor model.Profile, registrationID uuid.UUID) (*model.Registration, *model.Event, bool, error) {
	reg, err := s.registrations.GetByID(ctx, registrationID)
	if err != nil {
		return nil, nil, false, err
	}
	ev, err := s.events.GetByID(ctx, reg.EventID)
	if err != nil {
		return nil, nil, false, err
	}
	assigned, err := s.assignments.Exists(ctx, reg.EventID, actor.ID)
	if err != nil {
		return nil, nil, false, err
	}

	res := policy.RegistrationResource{Registration: *reg, Event: *ev, ActorAssigned: assigned}
	if !policy.Can(actor, policy.OpRead, res) {
		return nil, nil, false, repository.ErrNotFound
	}
	return reg, ev, assigned, nil
}
