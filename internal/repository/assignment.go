package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shivanand-hulikatti/eventcore/internal/model"
)

// AssignmentRepository handles persistence for volunteer assignments.
type AssignmentRepository struct {
	db *pgxpool.Pool
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create inserts a new assignment. Returns ErrAlreadyAssigned when the
// volunteer already has an assignment for the event.
func (r *AssignmentRepository) Create(ctx context.Context, a model.VolunteerAssignment) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO volunteer_assignments (id, event_id, volunteer_id, role_label, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.EventID, a.VolunteerID, a.RoleLabel, a.CreatedAt,
	)
	if err != nil {
		return translateError(err)
	}
	return nil
}

// Delete removes the assignment for (event, volunteer).
func (r *AssignmentRepository) Delete(ctx context.Context, eventID, volunteerID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM volunteer_assignments WHERE event_id = $1 AND volunteer_id = $2`,
		eventID, volunteerID,
	)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Exists reports whether the volunteer is assigned to the event. The policy
// layer uses this relationship fact when building resource views.
func (r *AssignmentRepository) Exists(ctx context.Context, eventID, volunteerID uuid.UUID) (bool, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM volunteer_assignments WHERE event_id = $1 AND volunteer_id = $2`,
		eventID, volunteerID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check assignment: %w", err)
	}
	return n > 0, nil
}

// ListByEvent returns all assignments for an event.
func (r *AssignmentRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.VolunteerAssignment, error) {
	return r.list(ctx,
		`SELECT id, event_id, volunteer_id, role_label, created_at
		 FROM volunteer_assignments WHERE event_id = $1 ORDER BY created_at ASC`, eventID)
}

// ListByVolunteer returns all assignments held by a volunteer.
func (r *AssignmentRepository) ListByVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]model.VolunteerAssignment, error) {
	return r.list(ctx,
		`SELECT id, event_id, volunteer_id, role_label, created_at
		 FROM volunteer_assignments WHERE volunteer_id = $1 ORDER BY created_at DESC`, volunteerID)
}

func (r *AssignmentRepository) list(ctx context.Context, query string, args ...any) ([]model.VolunteerAssignment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.VolunteerAssignment
	for rows.Next() {
		var a model.VolunteerAssignment
		if err := rows.Scan(&a.ID, &a.EventID, &a.VolunteerID, &a.RoleLabel, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}
