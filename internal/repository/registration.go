package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shivanand-hulikatti/eventcore/internal/model"
)

const registrationColumns = `id, event_id, attendee_id, status, ticket_code,
	checked_in, checked_in_at, created_at`

// RegistrationRepository handles persistence for registrations.
type RegistrationRepository struct {
	db *pgxpool.Pool
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

func scanRegistration(row pgx.Row) (*model.Registration, error) {
	var reg model.Registration
	err := row.Scan(&reg.ID, &reg.EventID, &reg.AttendeeID, &reg.Status,
		&reg.TicketCode, &reg.CheckedIn, &reg.CheckedInAt, &reg.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// newTicketCode generates a display ticket code from a fresh UUID. The code
// is covered by a unique index; on the remote chance of a collision the
// insert fails with ErrConflictRetry and the booking is retried with a new
// code.
func newTicketCode() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "TKT-" + strings.ToUpper(raw[:12])
}

// Book performs a concurrency-safe registration inside a single transaction.
//
// A naive check-then-insert is racy: two concurrent bookings can both read
// booked_count below capacity before either writes, and both insert,
// overbooking the event. To prevent that under every interleaving, the event
// row is locked with SELECT ... FOR UPDATE at the start of the transaction,
// serialising all bookings (and cancellations) for the same event. The
// bookability check, duplicate check, capacity check, counter increment,
// and insert then execute against a stable row, and the partial unique index
// on (event_id, attendee_id) for non-cancelled rows backstops the duplicate
// check.
func (r *RegistrationRepository) Book(ctx context.Context, eventID, attendeeID uuid.UUID) (*model.Registration, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Lock the event row. Every other booking for this event blocks here
	// until we commit or roll back.
	var (
		status      model.EventStatus
		startsAt    time.Time
		capacity    int
		bookedCount int
	)
	err = tx.QueryRow(ctx,
		`SELECT status, starts_at, capacity, booked_count
		 FROM events
		 WHERE id = $1
		 FOR UPDATE`,
		eventID,
	).Scan(&status, &startsAt, &capacity, &bookedCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		err = translateError(err)
		return nil, err
	}

	ev := model.Event{Status: status, StartsAt: startsAt, Capacity: capacity, BookedCount: bookedCount}
	if !ev.IsBookable(time.Now().UTC()) {
		err = ErrEventNotBookable
		return nil, err
	}

	// Reject a second active registration for the same attendee.
	var active int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations
		 WHERE event_id = $1 AND attendee_id = $2 AND status <> $3`,
		eventID, attendeeID, model.RegistrationCancelled,
	).Scan(&active)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if active > 0 {
		err = ErrAlreadyRegistered
		return nil, err
	}

	if ev.IsFull() {
		err = ErrCapacityExceeded
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE events SET booked_count = booked_count + 1 WHERE id = $1`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("increment booked_count: %w", err)
	}

	reg := &model.Registration{
		ID:         uuid.New(),
		EventID:    eventID,
		AttendeeID: attendeeID,
		Status:     model.RegistrationConfirmed,
		TicketCode: newTicketCode(),
		CreatedAt:  time.Now().UTC(),
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO registrations (id, event_id, attendee_id, status, ticket_code,
		                            checked_in, checked_in_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		reg.ID, reg.EventID, reg.AttendeeID, reg.Status, reg.TicketCode,
		reg.CheckedIn, reg.CheckedInAt, reg.CreatedAt,
	)
	if err != nil {
		err = translateError(err)
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		err = translateError(err)
		return nil, err
	}
	return reg, nil
}

// GetByID returns a single registration or ErrNotFound.
func (r *RegistrationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Registration, error) {
	reg, err := scanRegistration(r.db.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return reg, nil
}

// Cancel transitions a registration to cancelled and frees its seat. The
// event row is locked first, in the same order as Book, so the counter
// decrement cannot race a concurrent booking (and lock ordering stays
// deadlock-free).
func (r *RegistrationRepository) Cancel(ctx context.Context, id uuid.UUID) (*model.Registration, error) {
	return r.transition(ctx, id, func(current model.RegistrationStatus) (model.RegistrationStatus, int, error) {
		if !current.CanTransitionTo(model.RegistrationCancelled) {
			return "", 0, ErrInvalidTransition
		}
		delta := 0
		if current.Occupies() {
			delta = -1
		}
		return model.RegistrationCancelled, delta, nil
	}, false)
}

// Confirm transitions a pending registration to confirmed, claiming a seat.
// The capacity check runs under the event row lock because a pending
// registration does not occupy a seat until confirmed.
func (r *RegistrationRepository) Confirm(ctx context.Context, id uuid.UUID) (*model.Registration, error) {
	return r.transition(ctx, id, func(current model.RegistrationStatus) (model.RegistrationStatus, int, error) {
		if !current.CanTransitionTo(model.RegistrationConfirmed) {
			return "", 0, ErrInvalidTransition
		}
		return model.RegistrationConfirmed, 1, nil
	}, true)
}

// CheckIn marks a confirmed registration attended and stamps the check-in
// time. Both states occupy a seat, so the counter is unchanged.
func (r *RegistrationRepository) CheckIn(ctx context.Context, id uuid.UUID) (*model.Registration, error) {
	return r.transition(ctx, id, func(current model.RegistrationStatus) (model.RegistrationStatus, int, error) {
		if !current.CanTransitionTo(model.RegistrationAttended) {
			return "", 0, ErrInvalidTransition
		}
		return model.RegistrationAttended, 0, nil
	}, false)
}

// transition applies a status change to one registration atomically with the
// event's booked_count. decide maps the current status to the next status
// and the seat-count delta. checkCapacity guards transitions that claim a
// seat.
func (r *RegistrationRepository) transition(
	ctx context.Context,
	id uuid.UUID,
	decide func(model.RegistrationStatus) (model.RegistrationStatus, int, error),
	checkCapacity bool,
) (*model.Registration, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var (
		eventID uuid.UUID
		current model.RegistrationStatus
	)
	err = tx.QueryRow(ctx,
		`SELECT event_id, status FROM registrations WHERE id = $1`, id,
	).Scan(&eventID, &current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}

	// Event lock first, matching Book's lock order.
	var capacity, bookedCount int
	err = tx.QueryRow(ctx,
		`SELECT capacity, booked_count FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&capacity, &bookedCount)
	if err != nil {
		err = translateError(err)
		return nil, err
	}

	// Re-read the status under the event lock; it may have changed while we
	// waited for the lock.
	err = tx.QueryRow(ctx,
		`SELECT status FROM registrations WHERE id = $1 FOR UPDATE`, id,
	).Scan(&current)
	if err != nil {
		err = translateError(err)
		return nil, err
	}

	next, delta, err := decide(current)
	if err != nil {
		return nil, err
	}
	if checkCapacity && delta > 0 && bookedCount >= capacity {
		err = ErrCapacityExceeded
		return nil, err
	}

	if delta != 0 {
		_, err = tx.Exec(ctx,
			`UPDATE events SET booked_count = booked_count + $2 WHERE id = $1`,
			eventID, delta,
		)
		if err != nil {
			return nil, fmt.Errorf("adjust booked_count: %w", err)
		}
	}

	var reg *model.Registration
	if next == model.RegistrationAttended {
		reg, err = scanRegistration(tx.QueryRow(ctx,
			`UPDATE registrations
			 SET status = $2, checked_in = TRUE, checked_in_at = $3
			 WHERE id = $1
			 RETURNING `+registrationColumns,
			id, next, time.Now().UTC()))
	} else {
		reg, err = scanRegistration(tx.QueryRow(ctx,
			`UPDATE registrations SET status = $2 WHERE id = $1 RETURNING `+registrationColumns,
			id, next))
	}
	if err != nil {
		err = translateError(err)
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		err = translateError(err)
		return nil, err
	}
	return reg, nil
}

// ListByEvent returns all registrations for an event in booking order.
func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Registration, error) {
	return r.list(ctx,
		`SELECT `+registrationColumns+` FROM registrations
		 WHERE event_id = $1 ORDER BY created_at ASC`, eventID)
}

// ListByAttendee returns all registrations held by an attendee.
func (r *RegistrationRepository) ListByAttendee(ctx context.Context, attendeeID uuid.UUID) ([]model.Registration, error) {
	return r.list(ctx,
		`SELECT `+registrationColumns+` FROM registrations
		 WHERE attendee_id = $1 ORDER BY created_at DESC`, attendeeID)
}

func (r *RegistrationRepository) list(ctx context.Context, query string, args ...any) ([]model.Registration, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}
