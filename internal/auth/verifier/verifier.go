// Package verifier extracts a verified (email, display name) pair from a
// provider payload. Verifiers are terminal: they know nothing about what
// consumes their output.
package verifier

import (
	"context"

	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth"
)

// Verifier turns a raw provider payload into normalized claims.
// Implementations must not create users, sessions, or perform linking.
type Verifier interface {
	ExtractClaims(ctx context.Context, p auth.ProviderPayload) (*auth.Claims, error)
}
