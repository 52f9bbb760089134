// Package repository implements all database queries for the event management
// core. It uses pgx directly (no ORM) for transparency and performance.
//
// Sentinel errors declared here form the persistence half of the domain error
// taxonomy; Postgres error codes are translated into them so no caller ever
// sees a raw driver error for an expected condition.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrCapacityExceeded is returned when an event has no remaining capacity.
var ErrCapacityExceeded = errors.New("event capacity exceeded")

// ErrAlreadyRegistered is returned when the attendee already holds a
// non-cancelled registration for the event.
var ErrAlreadyRegistered = errors.New("already registered for this event")

// ErrAlreadyAssigned is returned when the volunteer is already assigned to
// the event.
var ErrAlreadyAssigned = errors.New("volunteer already assigned to this event")

// ErrEventNotBookable is returned when the event is not published or has
// already started.
var ErrEventNotBookable = errors.New("event is not open for booking")

// ErrProfileExists is returned when a profile already exists for an identity.
// Callers handling identity-event redelivery treat this as idempotent success.
var ErrProfileExists = errors.New("profile already exists for this identity")

// ErrInvalidTransition is returned when a status change violates the
// registration or event state machine.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrConflictRetry is returned for transient write conflicts (deadlock,
// serialization failure, ticket code collision). Safe to retry a bounded
// number of times.
var ErrConflictRetry = errors.New("transient write conflict")

// Postgres error codes and constraint names used for translation.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"

	constraintTicketCode         = "registrations_ticket_code_key"
	constraintActiveRegistration = "registrations_event_attendee_active_idx"
	constraintAssignmentUnique   = "volunteer_assignments_event_volunteer_key"
	constraintProfilePrimary     = "profiles_pkey"
)

// translateError maps driver-level failures onto domain sentinels. Unknown
// errors pass through unchanged.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgSerializationFailure, pgDeadlockDetected:
		return ErrConflictRetry
	case pgUniqueViolation:
		switch pgErr.ConstraintName {
		case constraintTicketCode:
			// Ticket collision: the caller regenerates and retries.
			return ErrConflictRetry
		case constraintActiveRegistration:
			return ErrAlreadyRegistered
		case constraintAssignmentUnique:
			return ErrAlreadyAssigned
		case constraintProfilePrimary:
			return ErrProfileExists
		}
	}
	return err
}
