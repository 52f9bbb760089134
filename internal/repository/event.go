package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shivanand-hulikatti/eventcore/internal/model"
)

const eventColumns = `id, organizer_id, title, description, venue, starts_at, ends_at,
	capacity, price, status, booked_count, created_at`

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.OrganizerID, &e.Title, &e.Description, &e.Venue,
		&e.StartsAt, &e.EndsAt, &e.Capacity, &e.Price, &e.Status, &e.BookedCount, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new event.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO events (id, organizer_id, title, description, venue, starts_at, ends_at,
		                     capacity, price, status, booked_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		e.ID, e.OrganizerID, e.Title, e.Description, e.Venue, e.StartsAt, e.EndsAt,
		e.Capacity, e.Price, e.Status, e.BookedCount, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// ListPublished returns all published events, soonest start first.
func (r *EventRepository) ListPublished(ctx context.Context) ([]model.Event, error) {
	return r.list(ctx,
		`SELECT `+eventColumns+` FROM events WHERE status = $1 ORDER BY starts_at ASC`,
		model.EventPublished)
}

// ListByOrganizer returns all events owned by the given organizer.
func (r *EventRepository) ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]model.Event, error) {
	return r.list(ctx,
		`SELECT `+eventColumns+` FROM events WHERE organizer_id = $1 ORDER BY created_at DESC`,
		organizerID)
}

func (r *EventRepository) list(ctx context.Context, query string, args ...any) ([]model.Event, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// Update rewrites the mutable descriptive fields of an event. Capacity,
// owner, status, and booked_count are never touched here.
func (r *EventRepository) Update(ctx context.Context, e *model.Event) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE events
		 SET title = $2, description = $3, venue = $4, starts_at = $5, ends_at = $6, price = $7
		 WHERE id = $1`,
		e.ID, e.Title, e.Description, e.Venue, e.StartsAt, e.EndsAt, e.Price,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus advances the event lifecycle, validating the transition
// against the current status under a row lock.
func (r *EventRepository) UpdateStatus(ctx context.Context, id uuid.UUID, next model.EventStatus) (*model.Event, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var current model.EventStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM events WHERE id = $1 FOR UPDATE`, id,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}

	if !current.CanTransitionTo(next) {
		err = ErrInvalidTransition
		return nil, err
	}

	e, err := scanEvent(tx.QueryRow(ctx,
		`UPDATE events SET status = $2 WHERE id = $1 RETURNING `+eventColumns,
		id, next))
	if err != nil {
		return nil, fmt.Errorf("update event status: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return e, nil
}

// Delete removes an event and its dependent rows.
func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
