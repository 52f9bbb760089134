package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shivanand-hulikatti/eventcore/internal/model"
	"github.com/shivanand-hulikatti/eventcore/internal/repository"
)

// memStore is an in-memory implementation of every store interface the
// services consume. A single mutex gives each operation the same atomicity
// the pgx repositories get from their transactions, so the concurrency
// properties of the booking service can be exercised without a database.
type memStore struct {
	mu            sync.Mutex
	profiles      map[uuid.UUID]model.Profile
	events        map[uuid.UUID]*model.Event
	registrations map[uuid.UUID]*model.Registration
	assignments   map[uuid.UUID]model.VolunteerAssignment
	tasks         map[uuid.UUID]*model.Task
	tickets       map[string]bool

	// bookConflicts injects that many transient conflicts before Book
	// succeeds, for exercising the retry loop.
	bookConflicts int
}

func newMemStore() *memStore {
	return &memStore{
		profiles:      make(map[uuid.UUID]model.Profile),
		events:        make(map[uuid.UUID]*model.Event),
		registrations: make(map[uuid.UUID]*model.Registration),
		assignments:   make(map[uuid.UUID]model.VolunteerAssignment),
		tasks:         make(map[uuid.UUID]*model.Task),
		tickets:       make(map[string]bool),
	}
}

// ── ProfileStore ──────────────────────────────────────────────────────────────

func (m *memStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) UpdateContact(ctx context.Context, id uuid.UUID, fullName, phone *string) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if fullName != nil {
		p.FullName = *fullName
	}
	if phone != nil {
		p.Phone = *phone
	}
	m.profiles[id] = p
	return &p, nil
}

// ── EventStore ────────────────────────────────────────────────────────────────

type eventStore struct{ *memStore }

func (m eventStore) Create(ctx context.Context, e *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.events[e.ID] = &cp
	return nil
}

func (m eventStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m eventStore) ListPublished(ctx context.Context) ([]model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Event
	for _, e := range m.events {
		if e.Status == model.EventPublished {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m eventStore) ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Event
	for _, e := range m.events {
		if e.OrganizerID == organizerID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m eventStore) Update(ctx context.Context, e *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.events[e.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Title, cur.Description, cur.Venue = e.Title, e.Description, e.Venue
	cur.StartsAt, cur.EndsAt, cur.Price = e.StartsAt, e.EndsAt, e.Price
	return nil
}

func (m eventStore) UpdateStatus(ctx context.Context, id uuid.UUID, next model.EventStatus) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !e.Status.CanTransitionTo(next) {
		return nil, repository.ErrInvalidTransition
	}
	e.Status = next
	cp := *e
	return &cp, nil
}

func (m eventStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

// ── RegistrationStore ─────────────────────────────────────────────────────────

type registrationStore struct{ *memStore }

func (m registrationStore) Book(ctx context.Context, eventID, attendeeID uuid.UUID) (*model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.bookConflicts > 0 {
		m.bookConflicts--
		return nil, repository.ErrConflictRetry
	}

	e, ok := m.events[eventID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !e.IsBookable(time.Now().UTC()) {
		return nil, repository.ErrEventNotBookable
	}
	for _, reg := range m.registrations {
		if reg.EventID == eventID && reg.AttendeeID == attendeeID && reg.Status != model.RegistrationCancelled {
			return nil, repository.ErrAlreadyRegistered
		}
	}
	if e.IsFull() {
		return nil, repository.ErrCapacityExceeded
	}

	ticket := fmt.Sprintf("TKT-%012X", len(m.tickets)+1)
	if m.tickets[ticket] {
		return nil, repository.ErrConflictRetry
	}
	m.tickets[ticket] = true

	e.BookedCount++
	reg := &model.Registration{
		ID:         uuid.New(),
		EventID:    eventID,
		AttendeeID: attendeeID,
		Status:     model.RegistrationConfirmed,
		TicketCode: ticket,
		CreatedAt:  time.Now().UTC(),
	}
	m.registrations[reg.ID] = reg
	cp := *reg
	return &cp, nil
}

func (m registrationStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.registrations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *reg
	return &cp, nil
}

func (m registrationStore) Cancel(ctx context.Context, id uuid.UUID) (*model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.registrations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !reg.Status.CanTransitionTo(model.RegistrationCancelled) {
		return nil, repository.ErrInvalidTransition
	}
	if reg.Status.Occupies() {
		m.events[reg.EventID].BookedCount--
	}
	reg.Status = model.RegistrationCancelled
	cp := *reg
	return &cp, nil
}

func (m registrationStore) Confirm(ctx context.Context, id uuid.UUID) (*model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.registrations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !reg.Status.CanTransitionTo(model.RegistrationConfirmed) {
		return nil, repository.ErrInvalidTransition
	}
	e := m.events[reg.EventID]
	if e.IsFull() {
		return nil, repository.ErrCapacityExceeded
	}
	e.BookedCount++
	reg.Status = model.RegistrationConfirmed
	cp := *reg
	return &cp, nil
}

func (m registrationStore) CheckIn(ctx context.Context, id uuid.UUID) (*model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.registrations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !reg.Status.CanTransitionTo(model.RegistrationAttended) {
		return nil, repository.ErrInvalidTransition
	}
	now := time.Now().UTC()
	reg.Status = model.RegistrationAttended
	reg.CheckedIn = true
	reg.CheckedInAt = &now
	cp := *reg
	return &cp, nil
}

func (m registrationStore) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Registration
	for _, reg := range m.registrations {
		if reg.EventID == eventID {
			out = append(out, *reg)
		}
	}
	return out, nil
}

func (m registrationStore) ListByAttendee(ctx context.Context, attendeeID uuid.UUID) ([]model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Registration
	for _, reg := range m.registrations {
		if reg.AttendeeID == attendeeID {
			out = append(out, *reg)
		}
	}
	return out, nil
}

// ── AssignmentStore ───────────────────────────────────────────────────────────

type assignmentStore struct{ *memStore }

func (m assignmentStore) Create(ctx context.Context, a model.VolunteerAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.assignments {
		if existing.EventID == a.EventID && existing.VolunteerID == a.VolunteerID {
			return repository.ErrAlreadyAssigned
		}
	}
	m.assignments[a.ID] = a
	return nil
}

func (m assignmentStore) Delete(ctx context.Context, eventID, volunteerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range m.assignments {
		if a.EventID == eventID && a.VolunteerID == volunteerID {
			delete(m.assignments, id)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m assignmentStore) Exists(ctx context.Context, eventID, volunteerID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.assignments {
		if a.EventID == eventID && a.VolunteerID == volunteerID {
			return true, nil
		}
	}
	return false, nil
}

func (m assignmentStore) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.VolunteerAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.VolunteerAssignment
	for _, a := range m.assignments {
		if a.EventID == eventID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m assignmentStore) ListByVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]model.VolunteerAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.VolunteerAssignment
	for _, a := range m.assignments {
		if a.VolunteerID == volunteerID {
			out = append(out, a)
		}
	}
	return out, nil
}

// ── TaskStore ─────────────────────────────────────────────────────────────────

type taskStore struct{ *memStore }

func (m taskStore) Create(ctx context.Context, t *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m taskStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m taskStore) Update(ctx context.Context, t *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.tasks[t.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Title, cur.Description, cur.VolunteerID = t.Title, t.Description, t.VolunteerID
	return nil
}

func (m taskStore) UpdateStatus(ctx context.Context, id uuid.UUID, status model.TaskStatus) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t.Status = status
	if status == model.TaskCompleted {
		now := time.Now().UTC()
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
	cp := *t
	return &cp, nil
}

func (m taskStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m taskStore) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Task
	for _, t := range m.tasks {
		if t.EventID == eventID {
			out = append(out, *t)
		}
	}
	return out, nil
}

// ── Fixtures ──────────────────────────────────────────────────────────────────

func newProfile(role model.Role) model.Profile {
	id := uuid.New()
	return model.Profile{
		ID:        id,
		Role:      role,
		FullName:  fmt.Sprintf("%s %s", role, id.String()[:8]),
		Email:     fmt.Sprintf("%s@example.com", id.String()[:8]),
		CreatedAt: time.Now().UTC(),
	}
}

// addProfile registers a profile fixture in the store.
func (m *memStore) addProfile(p model.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = p
}

// addRegistration registers a registration fixture in the given status,
// adjusting the event's seat count the way the real store would have.
func (m *memStore) addRegistration(eventID, attendeeID uuid.UUID, status model.RegistrationStatus) *model.Registration {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg := &model.Registration{
		ID:         uuid.New(),
		EventID:    eventID,
		AttendeeID: attendeeID,
		Status:     status,
		TicketCode: fmt.Sprintf("TKT-FIX%08X", len(m.registrations)+1),
		CreatedAt:  time.Now().UTC(),
	}
	if status.Occupies() {
		m.events[eventID].BookedCount++
	}
	m.registrations[reg.ID] = reg
	return reg
}

// addEvent registers an event fixture and returns it.
func (m *memStore) addEvent(organizer model.Profile, status model.EventStatus, capacity int, startsIn time.Duration) *model.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := &model.Event{
		ID:          uuid.New(),
		OrganizerID: organizer.ID,
		Title:       "Test Event",
		StartsAt:    time.Now().UTC().Add(startsIn),
		Capacity:    capacity,
		Status:      status,
		CreatedAt:   time.Now().UTC(),
	}
	m.events[e.ID] = e
	return e
}
