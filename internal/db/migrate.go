package db

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Emails are normalized to lowercase before they reach the store, so the
// plain unique index on email is what serializes concurrent first logins.
const bootstrapMigration = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS users (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    email text NOT NULL,
    name text NOT NULL DEFAULT '',
    password_hash text NOT NULL DEFAULT '',
    provider text NOT NULL DEFAULT 'LOCAL',
    roles text[] NOT NULL DEFAULT '{USER}',
    avatar_url text NOT NULL DEFAULT '',
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS users_email_unique
ON users (email);
`

// RunMigration applies the bootstrap schema. Idempotent.
func RunMigration(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, bootstrapMigration)
	return err
}
