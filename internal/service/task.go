package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shivanand-hulikatti/eventcore/internal/model"
	"github.com/shivanand-hulikatti/eventcore/internal/policy"
	"github.com/shivanand-hulikatti/eventcore/internal/repository"
)

// TaskService coordinates volunteer assignments and task lifecycle under an
// event, gated by the policy engine.
type TaskService struct {
	events      EventStore
	assignments AssignmentStore
	tasks       TaskStore
	profiles    ProfileStore
	log         *slog.Logger
}

// NewTaskService constructs a TaskService.
func NewTaskService(events EventStore, assignments AssignmentStore, tasks TaskStore, profiles ProfileStore, log *slog.Logger) *TaskService {
	return &TaskService{events: events, assignments: assignments, tasks: tasks, profiles: profiles, log: log}
}

// Assign links a volunteer to the event with a role label. Organizer of the
// event only; a second assignment for the same pair fails with
// ErrAlreadyAssigned.
func (s *TaskService) Assign(ctx context.Context, actor model.Profile, eventID, volunteerID uuid.UUID, roleLabel string) (*model.VolunteerAssignment, error) {
	ev, err := s.visibleEvent(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}

	a := model.VolunteerAssignment{
		ID:          uuid.New(),
		EventID:     eventID,
		VolunteerID: volunteerID,
		RoleLabel:   roleLabel,
		CreatedAt:   time.Now().UTC(),
	}
	if !policy.Can(actor, policy.OpCreate, policy.AssignmentResource{Assignment: a, Event: *ev}) {
		return nil, policy.ErrForbidden
	}

	target, err := s.profiles.GetByID(ctx, volunteerID)
	if err != nil {
		return nil, err
	}
	if target.Role != model.RoleVolunteer {
		return nil, ErrNotEligible
	}

	if err := s.assignments.Create(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info("volunteer assigned", "event_id", eventID, "volunteer_id", volunteerID, "role_label", roleLabel)
	return &a, nil
}

// Unassign removes a volunteer from the event. Organizer of the event only.
func (s *TaskService) Unassign(ctx context.Context, actor model.Profile, eventID, volunteerID uuid.UUID) error {
	ev, err := s.visibleEvent(ctx, actor, eventID)
	if err != nil {
		return err
	}
	res := policy.AssignmentResource{
		Assignment: model.VolunteerAssignment{EventID: eventID, VolunteerID: volunteerID},
		Event:      *ev,
	}
	if !policy.Can(actor, policy.OpDelete, res) {
		return policy.ErrForbidden
	}
	return s.assignments.Delete(ctx, eventID, volunteerID)
}

// ListAssignments returns the event's assignments for its organizer, or the
// actor's own assignment for an assigned volunteer.
func (s *TaskService) ListAssignments(ctx context.Context, actor model.Profile, eventID uuid.UUID) ([]model.VolunteerAssignment, error) {
	ev, err := s.visibleEvent(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	all, err := s.assignments.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if actor.ID == ev.OrganizerID {
		return all, nil
	}
	own := make([]model.VolunteerAssignment, 0, 1)
	for _, a := range all {
		if a.VolunteerID == actor.ID {
			own = append(own, a)
		}
	}
	return own, nil
}

// CreateTask creates a task under the event, optionally pre-assigned to a
// volunteer. Organizer of the event only.
func (s *TaskService) CreateTask(ctx context.Context, actor model.Profile, eventID uuid.UUID, req model.CreateTaskRequest) (*model.Task, error) {
	ev, err := s.visibleEvent(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}

	t := &model.Task{
		ID:          uuid.New(),
		EventID:     eventID,
		VolunteerID: req.VolunteerID,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.TaskPending,
		CreatedAt:   time.Now().UTC(),
	}
	if !policy.Can(actor, policy.OpCreate, policy.TaskResource{Task: *t, Event: *ev}) {
		return nil, policy.ErrForbidden
	}
	if req.VolunteerID != nil {
		if err := s.requireVolunteer(ctx, *req.VolunteerID); err != nil {
			return nil, err
		}
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTask edits task fields (title, description, assignee). Organizer of
// the event only; assigned volunteers advance status through
// UpdateTaskStatus instead.
func (s *TaskService) UpdateTask(ctx context.Context, actor model.Profile, taskID uuid.UUID, req model.UpdateTaskRequest) (*model.Task, error) {
	t, ev, err := s.visibleTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	if actor.ID != ev.OrganizerID {
		return nil, policy.ErrForbidden
	}

	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.VolunteerID != nil {
		if err := s.requireVolunteer(ctx, *req.VolunteerID); err != nil {
			return nil, err
		}
		t.VolunteerID = req.VolunteerID
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTaskStatus advances (or reopens) a task. The assigned volunteer or
// the event's organizer only. Transitioning to completed stamps the
// completion time; reopening a completed task clears it.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, actor model.Profile, taskID uuid.UUID, status model.TaskStatus) (*model.Task, error) {
	if !status.Valid() {
		return nil, repository.ErrInvalidTransition
	}
	t, ev, err := s.visibleTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(actor, policy.OpUpdate, policy.TaskResource{Task: *t, Event: *ev}) {
		return nil, policy.ErrForbidden
	}
	updated, err := s.tasks.UpdateStatus(ctx, taskID, status)
	if err != nil {
		return nil, err
	}
	if status == model.TaskCompleted {
		s.log.Info("task completed", "task_id", taskID, "event_id", t.EventID, "by", actor.ID)
	}
	return updated, nil
}

// DeleteTask removes a task. Organizer of the event only.
func (s *TaskService) DeleteTask(ctx context.Context, actor model.Profile, taskID uuid.UUID) error {
	t, ev, err := s.visibleTask(ctx, actor, taskID)
	if err != nil {
		return err
	}
	if !policy.Can(actor, policy.OpDelete, policy.TaskResource{Task: *t, Event: *ev}) {
		return policy.ErrForbidden
	}
	return s.tasks.Delete(ctx, taskID)
}

// ListTasks returns the event's tasks for its organizer, or the tasks
// assigned to the acting volunteer.
func (s *TaskService) ListTasks(ctx context.Context, actor model.Profile, eventID uuid.UUID) ([]model.Task, error) {
	ev, err := s.visibleEvent(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	all, err := s.tasks.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if actor.ID == ev.OrganizerID {
		return all, nil
	}
	own := make([]model.Task, 0, len(all))
	for _, t := range all {
		if t.AssignedTo(actor.ID) {
			own = append(own, t)
		}
	}
	return own, nil
}

func (s *TaskService) visibleEvent(ctx context.Context, actor model.Profile, eventID uuid.UUID) (*model.Event, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(actor, policy.OpRead, policy.EventResource{Event: *ev}) {
		return nil, repository.ErrNotFound
	}
	return ev, nil
}

func (s *TaskService) visibleTask(ctx context.Context, actor model.Profile, taskID uuid.UUID) (*model.Task, *model.Event, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	ev, err := s.events.GetByID(ctx, t.EventID)
	if err != nil {
		return nil, nil, err
	}
	if !policy.Can(actor, policy.OpRead, policy.TaskResource{Task: *t, Event: *ev}) {
		return nil, nil, repository.ErrNotFound
	}
	return t, ev, nil
}

func (s *TaskService) requireVolunteer(ctx context.Context, id uuid.UUID) error {
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.Role != model.RoleVolunteer {
		return ErrNotEligible
	}
	return nil
}
