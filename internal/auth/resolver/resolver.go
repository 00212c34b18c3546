package resolver

import (
	"context"

	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/account"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth"
)

// Resolution is the outcome of mapping provider claims onto a local
// account. DynamicPassword is the plaintext one-time secret just stored
// (hashed) on the account; it is valid for exactly one local login.
type Resolution struct {
	Account         *account.Account
	DynamicPassword string
}

// Resolver finds or provisions the local account an external identity
// belongs to. It is the ONLY place where claims-to-account mapping
// logic lives.
type Resolver interface {
	Resolve(
		ctx context.Context,
		method auth.Method,
		claims *auth.Claims,
	) (*Resolution, error)
}
