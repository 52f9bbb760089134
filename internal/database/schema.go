package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// statements bootstrap the schema idempotently on startup. The partial
// unique index on registrations backstops the duplicate-booking check for
// non-cancelled rows, and the ticket code unique constraint guarantees
// global ticket uniqueness; both constraint names are matched by the
// repository's error translation.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id         UUID PRIMARY KEY,
		role       VARCHAR(16) NOT NULL,
		full_name  VARCHAR(200) NOT NULL,
		email      VARCHAR(254) NOT NULL,
		phone      VARCHAR(32) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id           UUID PRIMARY KEY,
		organizer_id UUID NOT NULL REFERENCES profiles(id),
		title        VARCHAR(200) NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		venue        VARCHAR(200) NOT NULL DEFAULT '',
		starts_at    TIMESTAMPTZ NOT NULL,
		ends_at      TIMESTAMPTZ,
		capacity     INTEGER NOT NULL CHECK (capacity > 0),
		price        NUMERIC(10,2) NOT NULL DEFAULT 0 CHECK (price >= 0),
		status       VARCHAR(16) NOT NULL,
		booked_count INTEGER NOT NULL DEFAULT 0 CHECK (booked_count >= 0),
		created_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS registrations (
		id            UUID PRIMARY KEY,
		event_id      UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		attendee_id   UUID NOT NULL REFERENCES profiles(id),
		status        VARCHAR(16) NOT NULL,
		ticket_code   VARCHAR(32) NOT NULL CONSTRAINT registrations_ticket_code_key UNIQUE,
		checked_in    BOOLEAN NOT NULL DEFAULT FALSE,
		checked_in_at TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS registrations_event_attendee_active_idx
		ON registrations (event_id, attendee_id)
		WHERE status <> 'cancelled'`,
	`CREATE TABLE IF NOT EXISTS volunteer_assignments (
		id           UUID PRIMARY KEY,
		event_id     UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		volunteer_id UUID NOT NULL REFERENCES profiles(id),
		role_label   VARCHAR(100) NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL,
		CONSTRAINT volunteer_assignments_event_volunteer_key UNIQUE (event_id, volunteer_id)
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id           UUID PRIMARY KEY,
		event_id     UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		volunteer_id UUID REFERENCES profiles(id),
		title        VARCHAR(200) NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		status       VARCHAR(16) NOT NULL,
		completed_at TIMESTAMPTZ,
		created_at   TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate applies the bootstrap schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}
	return nil
}
