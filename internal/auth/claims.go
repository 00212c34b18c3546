package auth

import "errors"

// Claims is the normalized identity a provider asserted about a user.
// It contains facts only, no decisions, and is never persisted as-is.
type Claims struct {
	Email       string
	DisplayName string
}

// PayloadKind tags which claim-extraction input a provider handed back.
type PayloadKind int

const (
	// KindIdentityToken carries a signed identity token (Apple).
	KindIdentityToken PayloadKind = iota
	// KindAccessToken carries a bearer token for a userinfo lookup (Google).
	KindAccessToken
)

// ProviderPayload is the tagged callback variant: each provider kind
// fills exactly the fields its claim verifier needs.
type ProviderPayload struct {
	Kind PayloadKind

	// KindIdentityToken
	IDToken string
	// RawUser is Apple's inline user JSON, present only on the first
	// authorization for an account.
	RawUser string

	// KindAccessToken
	AccessToken string
}

var (
	// ErrInvalidToken marks a signature, audience, or shape failure on a
	// provider identity token.
	ErrInvalidToken = errors.New("invalid identity token")

	// ErrClaimsLookupFailed marks a failed or empty userinfo lookup.
	ErrClaimsLookupFailed = errors.New("claims lookup failed")
)
