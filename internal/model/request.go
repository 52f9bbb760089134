package model

import (
	"time"

	"github.com/google/uuid"
)

// IdentityEvent is the "new identity created" notification delivered by the
// hosted auth provider. Metadata is optional signup data.
type IdentityEvent struct {
	IdentityID uuid.UUID        `json:"identity_id" validate:"required"`
	Email      string           `json:"email" validate:"required,email"`
	Metadata   IdentityMetadata `json:"metadata"`
}

// IdentityMetadata carries optional signup attributes.
type IdentityMetadata struct {
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	Venue       string     `json:"venue" validate:"max=200"`
	StartsAt    time.Time  `json:"starts_at" validate:"required"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	Capacity    int        `json:"capacity" validate:"required,gt=0,lte=100000"`
	Price       float64    `json:"price" validate:"gte=0"`
}

// UpdateEventRequest is the payload for editing an event. Capacity is fixed
// at creation and deliberately absent here; lifecycle status changes go
// through UpdateEventStatusRequest.
type UpdateEventRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	Venue       *string    `json:"venue,omitempty" validate:"omitempty,max=200"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	Price       *float64   `json:"price,omitempty" validate:"omitempty,gte=0"`
}

// UpdateEventStatusRequest advances the event lifecycle.
type UpdateEventStatusRequest struct {
	Status EventStatus `json:"status" validate:"required"`
}

// UpdateProfileRequest edits the caller's own contact attributes. The role
// field has no representation here: it is write-once at provisioning.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=200"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

// AssignVolunteerRequest assigns a volunteer to an event.
type AssignVolunteerRequest struct {
	VolunteerID uuid.UUID `json:"volunteer_id" validate:"required"`
	RoleLabel   string    `json:"role_label" validate:"required,max=100"`
}

// CreateTaskRequest creates a task under an event, optionally pre-assigned.
type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	VolunteerID *uuid.UUID `json:"volunteer_id,omitempty"`
}

// UpdateTaskRequest edits task fields; organizer only.
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	VolunteerID *uuid.UUID `json:"volunteer_id,omitempty"`
}

// UpdateTaskStatusRequest advances or reopens a task.
type UpdateTaskStatusRequest struct {
	Status TaskStatus `json:"status" validate:"required"`
}
