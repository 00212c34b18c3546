package db

import (
	"context"
	"database/sql"
)

const accountsMigration = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS accounts (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    email text NOT NULL,
    first_name text NOT NULL DEFAULT '',
    last_name text NOT NULL DEFAULT '',
    login_method text NOT NULL DEFAULT 'emailAndPassword',
    password_hash text NOT NULL,
    activated boolean NOT NULL DEFAULT false,
    verified boolean NOT NULL DEFAULT false,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS accounts_email_lower_unique
ON accounts (LOWER(email));
`

func RunAccountsMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, accountsMigration)
	return err
}
