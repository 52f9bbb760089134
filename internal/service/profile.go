package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/shivanand-hulikatti/eventcore/internal/model"
	"github.com/shivanand-hulikatti/eventcore/internal/policy"
	"github.com/shivanand-hulikatti/eventcore/internal/repository"
)

// ProfileService exposes self-service profile reads and contact updates.
// Profiles are created only by the identity bridge and the role field is
// write-once there; no path in this service can alter it.
type ProfileService struct {
	profiles ProfileStore
}

// NewProfileService constructs a ProfileService.
func NewProfileService(profiles ProfileStore) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// Get returns a profile the actor may see, which is only their own.
func (s *ProfileService) Get(ctx context.Context, actor model.Profile, id uuid.UUID) (*model.Profile, error) {
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.Can(actor, policy.OpRead, policy.ProfileResource{Profile: *p}) {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

// UpdateContact updates the actor's own contact attributes. The request
// shape carries no role field, keeping role write-once by construction.
func (s *ProfileService) UpdateContact(ctx context.Context, actor model.Profile, req model.UpdateProfileRequest) (*model.Profile, error) {
	if !policy.Can(actor, policy.OpUpdate, policy.ProfileResource{Profile: actor}) {
		return nil, policy.ErrForbidden
	}
	return s.profiles.UpdateContact(ctx, actor.ID, req.FullName, req.Phone)
}

// Lookup fetches a profile by identity id without policy filtering. It is
// for the authentication middleware resolving the acting profile, never for
// serving another caller's data.
func (s *ProfileService) Lookup(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	return s.profiles.GetByID(ctx, id)
}
