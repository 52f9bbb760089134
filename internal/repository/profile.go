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

// ProfileRepository handles persistence for profiles.
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository constructs a ProfileRepository.
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts a new profile. Returns ErrProfileExists when a profile for
// the same identity id already exists.
func (r *ProfileRepository) Create(ctx context.Context, p model.Profile) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO profiles (id, role, full_name, email, phone, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Role, p.FullName, p.Email, p.Phone, p.CreatedAt,
	)
	if err != nil {
		if err = translateError(err); errors.Is(err, ErrProfileExists) {
			return ErrProfileExists
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// GetByID returns a single profile or ErrNotFound.
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var p model.Profile
	err := r.db.QueryRow(ctx,
		`SELECT id, role, full_name, email, phone, created_at
		 FROM profiles WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Role, &p.FullName, &p.Email, &p.Phone, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// UpdateContact updates the mutable contact attributes of a profile and
// returns the updated row. The role column is deliberately never touched by
// any statement in this repository after Create.
func (r *ProfileRepository) UpdateContact(ctx context.Context, id uuid.UUID, fullName, phone *string) (*model.Profile, error) {
	var p model.Profile
	err := r.db.QueryRow(ctx,
		`UPDATE profiles
		 SET full_name = COALESCE($2, full_name),
		     phone     = COALESCE($3, phone)
		 WHERE id = $1
		 RETURNING id, role, full_name, email, phone, created_at`,
		id, fullName, phone,
	).Scan(&p.ID, &p.Role, &p.FullName, &p.Email, &p.Phone, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &p, nil
}
