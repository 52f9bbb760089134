package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shivanand-hulikatti/eventcore/internal/model"
)

const taskColumns = `id, event_id, volunteer_id, title, description, status, completed_at, created_at`

// TaskRepository handles persistence for tasks.
type TaskRepository struct {
	db *pgxpool.Pool
}

// NewTaskRepository constructs a TaskRepository.
func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

func scanTask(row pgx.Row) (*model.Task, error) {
	var t model.Task
	err := row.Scan(&t.ID, &t.EventID, &t.VolunteerID, &t.Title, &t.Description,
		&t.Status, &t.CompletedAt, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, t *model.Task) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tasks (id, event_id, volunteer_id, title, description, status, completed_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.EventID, t.VolunteerID, t.Title, t.Description, t.Status, t.CompletedAt, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// GetByID returns a single task or ErrNotFound.
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	t, err := scanTask(r.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// Update rewrites the organizer-editable fields of a task.
func (r *TaskRepository) Update(ctx context.Context, t *model.Task) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tasks SET title = $2, description = $3, volunteer_id = $4 WHERE id = $1`,
		t.ID, t.Title, t.Description, t.VolunteerID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus sets the task status. The completion timestamp is stamped on
// the transition to completed and cleared when a completed task is reopened;
// no other transition touches it.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.TaskStatus) (*model.Task, error) {
	var completedAt *time.Time
	if status == model.TaskCompleted {
		now := time.Now().UTC()
		completedAt = &now
	}
	t, err := scanTask(r.db.QueryRow(ctx,
		`UPDATE tasks SET status = $2, completed_at = $3 WHERE id = $1 RETURNING `+taskColumns,
		id, status, completedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update task status: %w", err)
	}
	return t, nil
}

// Delete removes a task.
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByEvent returns all tasks under an event.
func (r *TaskRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE event_id = $1 ORDER BY created_at ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}
