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

// EventService orchestrates event lifecycle operations, gated by the policy
// engine. Capacity is fixed at creation: no update path accepts it.
type EventService struct {
	events EventStore
	log    *slog.Logger
}

// NewEventService constructs an EventService.
func NewEventService(events EventStore, log *slog.Logger) *EventService {
	return &EventService{events: events, log: log}
}

// Create creates a draft event owned by the acting organizer.
func (s *EventService) Create(ctx context.Context, actor model.Profile, req model.CreateEventRequest) (*model.Event, error) {
	if actor.Role != model.RoleOrganizer {
		return nil, ErrNotEligible
	}

	e := &model.Event{
		ID:          uuid.New(),
		OrganizerID: actor.ID,
		Title:       req.Title,
		Description: req.Description,
		Venue:       req.Venue,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Capacity:    req.Capacity,
		Price:       req.Price,
		Status:      model.EventDraft,
		CreatedAt:   time.Now().UTC(),
	}
	if !policy.Can(actor, policy.OpCreate, policy.EventResource{Event: *e}) {
		return nil, policy.ErrForbidden
	}
	if err := s.events.Create(ctx, e); err != nil {
		return nil, err
	}
	s.log.Info("event created", "event_id", e.ID, "organizer_id", actor.ID)
	return e, nil
}

// Get returns one event the actor is allowed to see: published events for
// anyone, drafts and other states for the owner only.
func (s *EventService) Get(ctx context.Context, actor model.Profile, id uuid.UUID) (*model.Event, error) {
	ev, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.Can(actor, policy.OpRead, policy.EventResource{Event: *ev}) {
		return nil, repository.ErrNotFound
	}
	return ev, nil
}

// ListPublished returns all published events.
func (s *EventService) ListPublished(ctx context.Context) ([]model.Event, error) {
	return s.events.ListPublished(ctx)
}

// ListMine returns all events owned by the acting organizer.
func (s *EventService) ListMine(ctx context.Context, actor model.Profile) ([]model.Event, error) {
	return s.events.ListByOrganizer(ctx, actor.ID)
}

// Update edits the descriptive fields of an event. Owner only; capacity is
// not editable.
func (s *EventService) Update(ctx context.Context, actor model.Profile, id uuid.UUID, req model.UpdateEventRequest) (*model.Event, error) {
	ev, err := s.authorizeWrite(ctx, actor, id, policy.OpUpdate)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		ev.Title = *req.Title
	}
	if req.Description != nil {
		ev.Description = *req.Description
	}
	if req.Venue != nil {
		ev.Venue = *req.Venue
	}
	if req.StartsAt != nil {
		ev.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		ev.EndsAt = req.EndsAt
	}
	if req.Price != nil {
		ev.Price = *req.Price
	}

	if err := s.events.Update(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// UpdateStatus advances the event lifecycle. Owner only.
func (s *EventService) UpdateStatus(ctx context.Context, actor model.Profile, id uuid.UUID, next model.EventStatus) (*model.Event, error) {
	if !next.Valid() {
		return nil, repository.ErrInvalidTransition
	}
	if _, err := s.authorizeWrite(ctx, actor, id, policy.OpUpdate); err != nil {
		return nil, err
	}
	ev, err := s.events.UpdateStatus(ctx, id, next)
	if err != nil {
		return nil, err
	}
	s.log.Info("event status changed", "event_id", id, "status", next)
	return ev, nil
}

// Delete removes an event. Owner only.
func (s *EventService) Delete(ctx context.Context, actor model.Profile, id uuid.UUID) error {
	if _, err := s.authorizeWrite(ctx, actor, id, policy.OpDelete); err != nil {
		return err
	}
	return s.events.Delete(ctx, id)
}

// authorizeWrite loads an event and checks op against the policy engine.
// Events the actor may not even read are reported as not found; visible but
// protected events yield forbidden.
func (s *EventService) authorizeWrite(ctx context.Context, actor model.Profile, id uuid.UUID, op policy.Operation) (*model.Event, error) {
	ev, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res := policy.EventResource{Event: *ev}
	if !policy.Can(actor, policy.OpRead, res) {
		return nil, repository.ErrNotFound
	}
	if !policy.Can(actor, op, res) {
		return nil, policy.ErrForbidden
	}
	return ev, nil
}
