// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer. Every operation takes the
// acting profile explicitly and consults the policy engine before reading or
// mutating anything; there is no ambient session state.
//
// Reads denied by policy surface as repository.ErrNotFound so a caller
// cannot distinguish a hidden resource from an absent one. Mutations on
// resources the actor can see but may not change surface policy.ErrForbidden.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/shivanand-hulikatti/eventcore/internal/model"
)

// ErrNotEligible is returned when the actor's role does not qualify for the
// operation at all (for example a volunteer trying to book a seat).
var ErrNotEligible = errors.New("role not eligible for this operation")

// EventStore is the persistence surface for events.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	ListPublished(ctx context.Context) ([]model.Event, error)
	ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]model.Event, error)
	Update(ctx context.Context, e *model.Event) error
	UpdateStatus(ctx context.Context, id uuid.UUID, next model.EventStatus) (*model.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RegistrationStore is the persistence surface for registrations. Book,
// Cancel, Confirm, and CheckIn are atomic with respect to the event's seat
// count.
type RegistrationStore interface {
	Book(ctx context.Context, eventID, attendeeID uuid.UUID) (*model.Registration, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Registration, error)
	Cancel(ctx context.Context, id uuid.UUID) (*model.Registration, error)
	Confirm(ctx context.Context, id uuid.UUID) (*model.Registration, error)
	CheckIn(ctx context.Context, id uuid.UUID) (*model.Registration, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Registration, error)
	ListByAttendee(ctx context.Context, attendeeID uuid.UUID) ([]model.Registration, error)
}

// AssignmentStore is the persistence surface for volunteer assignments.
type AssignmentStore interface {
	Create(ctx context.Context, a model.VolunteerAssignment) error
	Delete(ctx context.Context, eventID, volunteerID uuid.UUID) error
	Exists(ctx context.Context, eventID, volunteerID uuid.UUID) (bool, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.VolunteerAssignment, error)
	ListByVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]model.VolunteerAssignment, error)
}

// TaskStore is the persistence surface for tasks.
type TaskStore interface {
	Create(ctx context.Context, t *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	Update(ctx context.Context, t *model.Task) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.TaskStatus) (*model.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Task, error)
}

// ProfileStore is the persistence surface for profiles.
type ProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	UpdateContact(ctx context.Context, id uuid.UUID, fullName, phone *string) (*model.Profile, error)
}
