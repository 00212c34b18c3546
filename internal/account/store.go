package account

import (
	"context"
	"errors"
)

var (
	// ErrNotFound means no account exists for the lookup key.
	ErrNotFound = errors.New("account not found")

	// ErrProvisioning marks a storage create/update failure. Callers must
	// keep it apart from credential mismatches so operators can tell
	// "database unhappy" from "wrong login method".
	ErrProvisioning = errors.New("account provisioning failed")
)

// Store is the account persistence contract. Email lookups are
// case-insensitive exact matches; email uniqueness is enforced by
// storage, not deduplicated here.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)

	// Create hashes the plaintext password and inserts the account.
	Create(ctx context.Context, n New) (*Account, error)

	// UpdatePassword replaces the stored credential with a hash of the
	// given plaintext. Used for dynamic credential rotation.
	UpdatePassword(ctx context.Context, id string, password string) error

	MarkVerified(ctx context.Context, id string) error

	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) error
}
