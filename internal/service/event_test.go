package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivanand-hulikatti/eventcore/internal/model"
	"github.com/shivanand-hulikatti/eventcore/internal/policy"
	"github.com/shivanand-hulikatti/eventcore/internal/repository"
	"github.com/shivanand-hulikatti/eventcore/internal/service"
)

func newEventService(store *memStore) *service.EventService {
	return service.NewEventService(eventStore{store}, discardLogger())
}

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("organizer_creates_draft", func(t *testing.T) {
		store := newMemStore()
		svc := newEventService(store)
		organizer := newProfile(model.RoleOrganizer)

		ev, err := svc.Create(ctx, organizer, model.CreateEventRequest{
			Title:    "Launch Party",
			StartsAt: time.Now().UTC().Add(48 * time.Hour),
			Capacity: 100,
		})
		require.NoError(t, err)
		assert.Equal(t, model.EventDraft, ev.Status)
		assert.Equal(t, organizer.ID, ev.OrganizerID)
		assert.Equal(t, 0, ev.BookedCount)
	})

	t.Run("non_organizers_not_eligible", func(t *testing.T) {
		store := newMemStore()
		svc := newEventService(store)

		for _, role := range []model.Role{model.RoleAttendee, model.RoleVolunteer} {
			_, err := svc.Create(ctx, newProfile(role), model.CreateEventRequest{
				Title:    "Nope",
				StartsAt: time.Now().UTC().Add(time.Hour),
				Capacity: 10,
			})
			assert.ErrorIs(t, err, service.ErrNotEligible)
		}
	})
}

func TestUpdateEvent(t *testing.T) {
	ctx := context.Background()
	owner := newProfile(model.RoleOrganizer)
	rival := newProfile(model.RoleOrganizer)

	t.Run("owner_updates_fields", func(t *testing.T) {
		store := newMemStore()
		ev := store.addEvent(owner, model.EventPublished, 10, time.Hour)
		svc := newEventService(store)

		title := "Renamed"
		got, err := svc.Update(ctx, owner, ev.ID, model.UpdateEventRequest{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
	})

	t.Run("other_organizer_forbidden", func(t *testing.T) {
		store := newMemStore()
		ev := store.addEvent(owner, model.EventPublished, 10, time.Hour)
		svc := newEventService(store)

		title := "Hijacked"
		_, err := svc.Update(ctx, rival, ev.ID, model.UpdateEventRequest{Title: &title})
		assert.ErrorIs(t, err, policy.ErrForbidden)
	})

	t.Run("hidden_draft_reported_not_found", func(t *testing.T) {
		store := newMemStore()
		ev := store.addEvent(owner, model.EventDraft, 10, time.Hour)
		svc := newEventService(store)

		title := "Hijacked"
		_, err := svc.Update(ctx, rival, ev.ID, model.UpdateEventRequest{Title: &title})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestEventLifecycle(t *testing.T) {
	ctx := context.Background()
	owner := newProfile(model.RoleOrganizer)

	t.Run("forward_transitions", func(t *testing.T) {
		store := newMemStore()
		ev := store.addEvent(owner, model.EventDraft, 10, time.Hour)
		svc := newEventService(store)

		for _, next := range []model.EventStatus{model.EventPublished, model.EventOngoing, model.EventCompleted} {
			got, err := svc.UpdateStatus(ctx, owner, ev.ID, next)
			require.NoError(t, err)
			assert.Equal(t, next, got.Status)
		}
	})

	t.Run("skipping_states_rejected", func(t *testing.T) {
		store := newMemStore()
		ev := store.addEvent(owner, model.EventDraft, 10, time.Hour)
		svc := newEventService(store)

		_, err := svc.UpdateStatus(ctx, owner, ev.ID, model.EventCompleted)
		assert.ErrorIs(t, err, repository.ErrInvalidTransition)
	})

	t.Run("cancelled_is_terminal", func(t *testing.T) {
		store := newMemStore()
		ev := store.addEvent(owner, model.EventPublished, 10, time.Hour)
		svc := newEventService(store)

		_, err := svc.UpdateStatus(ctx, owner, ev.ID, model.EventCancelled)
		require.NoError(t, err)
		_, err = svc.UpdateStatus(ctx, owner, ev.ID, model.EventPublished)
		assert.ErrorIs(t, err, repository.ErrInvalidTransition)
	})
}

func TestGetEventVisibility(t *testing.T) {
	ctx := context.Background()
	owner := newProfile(model.RoleOrganizer)
	attendee := newProfile(model.RoleAttendee)

	store := newMemStore()
	published := store.addEvent(owner, model.EventPublished, 10, time.Hour)
	draft := store.addEvent(owner, model.EventDraft, 10, time.Hour)
	svc := newEventService(store)

	got, err := svc.Get(ctx, attendee, published.ID)
	require.NoError(t, err)
	assert.Equal(t, published.ID, got.ID)

	_, err = svc.Get(ctx, attendee, draft.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	got, err = svc.Get(ctx, owner, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)
}
