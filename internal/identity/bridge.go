// Package identity bridges the hosted auth provider into the domain: every
// "identity created" event it emits is turned into exactly one Profile with
// a role fixed at creation.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shivanand-hulikatti/eventcore/internal/model"
	"github.com/shivanand-hulikatti/eventcore/internal/repository"
)

// ErrProvisioning wraps unrecoverable failures while bridging an identity.
// Delivery of the same event again is safe: provisioning is idempotent.
var ErrProvisioning = errors.New("profile provisioning failed")

// ProfileStore is the persistence surface the bridge needs.
type ProfileStore interface {
	Create(ctx context.Context, p model.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
}

// Bridge provisions profiles from identity-provider events.
type Bridge struct {
	profiles ProfileStore
	log      *slog.Logger
}

// NewBridge constructs a Bridge.
func NewBridge(profiles ProfileStore, log *slog.Logger) *Bridge {
	return &Bridge{profiles: profiles, log: log}
}

// Provision creates the Profile for a newly created external identity. The
// role comes from signup metadata, defaulting to attendee when absent or
// unrecognised; the display name falls back to the email address. The
// provider may deliver the same event more than once, so an existing profile
// for the identity is returned as success rather than an error.
func (b *Bridge) Provision(ctx context.Context, ev model.IdentityEvent) (*model.Profile, error) {
	fullName := ev.Metadata.FullName
	if fullName == "" {
		fullName = ev.Email
	}

	p := model.Profile{
		ID:        ev.IdentityID,
		Role:      model.ParseRole(ev.Metadata.Role),
		FullName:  fullName,
		Email:     ev.Email,
		Phone:     ev.Metadata.Phone,
		CreatedAt: time.Now().UTC(),
	}

	err := b.profiles.Create(ctx, p)
	if err == nil {
		b.log.Info("profile provisioned", "identity_id", ev.IdentityID, "role", p.Role)
		return &p, nil
	}
	if errors.Is(err, repository.ErrProfileExists) {
		// Redelivered event: return the existing profile untouched.
		existing, getErr := b.profiles.GetByID(ctx, ev.IdentityID)
		if getErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrProvisioning, getErr)
		}
		b.log.Info("identity event redelivered, profile already provisioned",
			"identity_id", ev.IdentityID)
		return existing, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrProvisioning, err)
}
