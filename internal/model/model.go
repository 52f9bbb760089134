// Package model defines the core domain types for the event management system:
// profiles, events, registrations, volunteer assignments, and tasks.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Role classifies a profile. Assigned once at provisioning, never changed.
type Role string

const (
	RoleOrganizer Role = "organizer"
	RoleVolunteer Role = "volunteer"
	RoleAttendee  Role = "attendee"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOrganizer, RoleVolunteer, RoleAttendee:
		return true
	}
	return false
}

// ParseRole maps signup metadata to a Role, defaulting to attendee when the
// value is absent or unrecognised.
func ParseRole(s string) Role {
	if r := Role(s); r.Valid() {
		return r
	}
	return RoleAttendee
}

// Profile is the domain identity record, created exactly once per external
// auth identity by the identity bridge. ID equals the external identity id.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Role      Role      `json:"role"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPublished EventStatus = "published"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

// Valid reports whether s is a known event status.
func (s EventStatus) Valid() bool {
	switch s {
	case EventDraft, EventPublished, EventOngoing, EventCompleted, EventCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle transition s -> next is
// allowed: forward along draft -> published -> ongoing -> completed, with
// cancellation permitted from any non-terminal state.
func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	switch s {
	case EventDraft:
		return next == EventPublished || next == EventCancelled
	case EventPublished:
		return next == EventOngoing || next == EventCancelled
	case EventOngoing:
		return next == EventCompleted || next == EventCancelled
	}
	return false
}

// Event represents a bookable event owned by exactly one organizer.
// Capacity is fixed at creation. BookedCount is the denormalized number of
// registrations occupying a seat (confirmed or attended); it is maintained
// inside the same transaction as every booking and cancellation.
type Event struct {
	ID          uuid.UUID   `json:"id"`
	OrganizerID uuid.UUID   `json:"organizer_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Venue       string      `json:"venue"`
	StartsAt    time.Time   `json:"starts_at"`
	EndsAt      *time.Time  `json:"ends_at,omitempty"`
	Capacity    int         `json:"capacity"`
	Price       float64     `json:"price"`
	Status      EventStatus `json:"status"`
	BookedCount int         `json:"booked_count"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Remaining returns the number of available seats.
func (e *Event) Remaining() int {
	return e.Capacity - e.BookedCount
}

// IsFull returns true when no seats remain.
func (e *Event) IsFull() bool {
	return e.BookedCount >= e.Capacity
}

// IsBookable reports whether the event accepts bookings at the given time:
// it must be published and must not have started yet.
func (e *Event) IsBookable(now time.Time) bool {
	return e.Status == EventPublished && e.StartsAt.After(now)
}

// RegistrationStatus is the state of a registration.
type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationCancelled RegistrationStatus = "cancelled"
	RegistrationAttended  RegistrationStatus = "attended"
)

// Occupies reports whether a registration in this status holds a seat.
func (s RegistrationStatus) Occupies() bool {
	return s == RegistrationConfirmed || s == RegistrationAttended
}

// Terminal reports whether no further transition is allowed from s.
func (s RegistrationStatus) Terminal() bool {
	return s == RegistrationCancelled || s == RegistrationAttended
}

// CanTransitionTo reports whether s -> next is a legal registration
// transition: pending -> confirmed -> attended, and pending or confirmed may
// cancel. Cancelled and attended are terminal.
func (s RegistrationStatus) CanTransitionTo(next RegistrationStatus) bool {
	switch s {
	case RegistrationPending:
		return next == RegistrationConfirmed || next == RegistrationCancelled
	case RegistrationConfirmed:
		return next == RegistrationAttended || next == RegistrationCancelled
	}
	return false
}

// Registration links one attendee to one event. At most one non-cancelled
// registration exists per (event, attendee) pair, and TicketCode is unique
// across all registrations ever created.
type Registration struct {
	ID          uuid.UUID          `json:"id"`
	EventID     uuid.UUID          `json:"event_id"`
	AttendeeID  uuid.UUID          `json:"attendee_id"`
	Status      RegistrationStatus `json:"status"`
	TicketCode  string             `json:"ticket_code"`
	CheckedIn   bool               `json:"checked_in"`
	CheckedInAt *time.Time         `json:"checked_in_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// VolunteerAssignment links one volunteer to one event with a role label
// such as "registration desk" or "stage crew". At most one assignment exists
// per (event, volunteer) pair.
type VolunteerAssignment struct {
	ID          uuid.UUID `json:"id"`
	EventID     uuid.UUID `json:"event_id"`
	VolunteerID uuid.UUID `json:"volunteer_id"`
	RoleLabel   string    `json:"role_label"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskStatus is the state of a volunteer task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

// Task belongs to one event and is optionally assigned to one volunteer.
// CompletedAt is set on the transition to completed and cleared if the task
// is reopened.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	EventID     uuid.UUID  `json:"event_id"`
	VolunteerID *uuid.UUID `json:"volunteer_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AssignedTo reports whether the task is assigned to the given volunteer.
func (t *Task) AssignedTo(volunteerID uuid.UUID) bool {
	return t.VolunteerID != nil && *t.VolunteerID == volunteerID
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
