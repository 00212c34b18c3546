package account

import (
	"time"

	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth"
)

// Account is the persisted local identity. LoginMethod is set once at
// creation and decides which authentication path the account accepts.
type Account struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	LoginMethod  auth.Method
	PasswordHash string
	Activated    bool
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// New carries the fields for account creation. Password is plaintext
// here; the store hashes it before it touches storage.
type New struct {
	Email       string
	FirstName   string
	LastName    string
	LoginMethod auth.Method
	Password    string
	Activated   bool
}

// ProfileUpdate is a partial update of owner-editable fields. Nil means
// "leave unchanged". LoginMethod is deliberately absent: it has no
// client-writable path.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
}
