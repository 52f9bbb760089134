// Package policy implements the authorization rules as a pure decision
// function over (actor, operation, resource). It performs no I/O and holds
// no state: every relationship fact a rule needs (event ownership, volunteer
// assignment membership) is carried on the resource view, so the engine can
// be evaluated against any consistent snapshot and unit-tested without a
// database.
//
// Rules are a union: if any single rule grants the operation, it is allowed.
package policy

import (
	"errors"

	"github.com/shivanand-hulikatti/eventcore/internal/model"
)

// ErrForbidden is returned by callers when the engine denies an operation.
var ErrForbidden = errors.New("forbidden")

// Operation is the kind of access being attempted.
type Operation string

const (
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Resource is a snapshot view of an entity instance together with the
// relationship facts the rules require.
type Resource interface {
	resource()
}

// ProfileResource wraps a target profile.
type ProfileResource struct {
	Profile model.Profile
}

// EventResource wraps a target event.
type EventResource struct {
	Event model.Event
}

// RegistrationResource wraps a registration plus its event. ActorAssigned
// reports whether the acting profile holds a volunteer assignment for that
// event.
type RegistrationResource struct {
	Registration  model.Registration
	Event         model.Event
	ActorAssigned bool
}

// AssignmentResource wraps a volunteer assignment plus its event.
type AssignmentResource struct {
	Assignment model.VolunteerAssignment
	Event      model.Event
}

// TaskResource wraps a task plus its event.
type TaskResource struct {
	Task  model.Task
	Event model.Event
}

func (ProfileResource) resource()      {}
func (EventResource) resource()        {}
func (RegistrationResource) resource() {}
func (AssignmentResource) resource()   {}
func (TaskResource) resource()         {}

// Can reports whether actor may perform op on the given resource. It is
// deterministic and side-effect free; unknown resource or operation values
// deny.
func Can(actor model.Profile, op Operation, res Resource) bool {
	switch r := res.(type) {
	case ProfileResource:
		return canProfile(actor, op, r)
	case EventResource:
		return canEvent(actor, op, r)
	case RegistrationResource:
		return canRegistration(actor, op, r)
	case AssignmentResource:
		return canAssignment(actor, op, r)
	case TaskResource:
		return canTask(actor, op, r)
	}
	return false
}

// canProfile: profiles are visible and editable only to themselves. Creation
// happens exclusively through the identity bridge (never via this engine)
// and deletion is never permitted. The role field is write-once at
// provisioning; the update grant here covers contact attributes only, which
// the service layer enforces by construction of its update payload.
func canProfile(actor model.Profile, op Operation, r ProfileResource) bool {
	switch op {
	case OpRead, OpUpdate:
		return actor.ID == r.Profile.ID
	}
	return false
}

// canEvent: published events are world-readable; everything else belongs to
// the owning organizer.
func canEvent(actor model.Profile, op Operation, r EventResource) bool {
	owner := actor.ID == r.Event.OrganizerID
	switch op {
	case OpRead:
		return r.Event.Status == model.EventPublished || owner
	case OpCreate:
		return actor.Role == model.RoleOrganizer && owner
	case OpUpdate, OpDelete:
		return owner
	}
	return false
}

// canRegistration: the attendee themself, the event's organizer, and the
// event's assigned volunteers may see a registration. Creation is the
// attendee booking their own seat. Updates (cancel, confirm, check-in) are
// granted to the same union; which transition each party may drive is
// enforced by the booking service's per-operation rules. Registrations are
// never deleted; cancellation is a status update.
func canRegistration(actor model.Profile, op Operation, r RegistrationResource) bool {
	self := actor.ID == r.Registration.AttendeeID
	organizer := actor.ID == r.Event.OrganizerID
	switch op {
	case OpRead, OpUpdate:
		return self || organizer || r.ActorAssigned
	case OpCreate:
		return actor.Role == model.RoleAttendee && self
	}
	return false
}

// canAssignment: only the event's organizer manages assignments; the
// volunteer may read their own.
func canAssignment(actor model.Profile, op Operation, r AssignmentResource) bool {
	organizer := actor.ID == r.Event.OrganizerID
	switch op {
	case OpRead:
		return actor.ID == r.Assignment.VolunteerID || organizer
	case OpCreate, OpUpdate, OpDelete:
		return organizer
	}
	return false
}

// canTask: the organizer manages tasks; the assigned volunteer may read the
// task and advance its status.
func canTask(actor model.Profile, op Operation, r TaskResource) bool {
	organizer := actor.ID == r.Event.OrganizerID
	assigned := r.Task.AssignedTo(actor.ID)
	switch op {
	case OpRead:
		return assigned || organizer
	case OpCreate, OpDelete:
		return organizer
	case OpUpdate:
		return organizer || assigned
	}
	return false
}
