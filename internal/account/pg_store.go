package account

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/db"

	"github.com/google/uuid"
)

const accountColumns = `
	id, email, first_name, last_name, login_method,
	password_hash, activated, verified, created_at, updated_at
`

// PGStore persists accounts in Postgres.
type PGStore struct {
	db *db.DB
}

func NewPGStore(db *db.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE LOWER(email) = LOWER($1)
	`, email)

	return scanAccount(row)
}

func (s *PGStore) FindByID(ctx context.Context, id string) (*Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
	`, id)

	return scanAccount(row)
}

func (s *PGStore) Create(ctx context.Context, n New) (*Account, error) {
	hash, err := HashPassword(n.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvisioning, err)
	}

	acct := &Account{
		Email:        n.Email,
		FirstName:    n.FirstName,
		LastName:     n.LastName,
		LoginMethod:  n.LoginMethod,
		PasswordHash: hash,
		Activated:    n.Activated,
	}

	var id uuid.UUID
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO accounts
			(email, first_name, last_name, login_method, password_hash, activated)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`,
		n.Email,
		n.FirstName,
		n.LastName,
		string(n.LoginMethod),
		hash,
		n.Activated,
	).Scan(&id, &acct.CreatedAt, &acct.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvisioning, err)
	}

	acct.ID = id.String()
	return acct, nil
}

func (s *PGStore) UpdatePassword(ctx context.Context, id string, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvisioning, err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
	`, id, hash)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvisioning, err)
	}

	return requireRow(res)
}

func (s *PGStore) MarkVerified(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET verified = true, updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvisioning, err)
	}

	return requireRow(res)
}

func (s *PGStore) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET first_name = COALESCE($2, first_name),
		    last_name  = COALESCE($3, last_name),
		    email      = COALESCE($4, email),
		    updated_at = NOW()
		WHERE id = $1
	`, id, upd.FirstName, upd.LastName, upd.Email)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvisioning, err)
	}

	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvisioning, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*Account, error) {
	var (
		acct   Account
		id     uuid.UUID
		method string
	)

	err := row.Scan(
		&id,
		&acct.Email,
		&acct.FirstName,
		&acct.LastName,
		&method,
		&acct.PasswordHash,
		&acct.Activated,
		&acct.Verified,
		&acct.CreatedAt,
		&acct.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	acct.ID = id.String()
	acct.LoginMethod = auth.Method(method)
	return &acct, nil
}
