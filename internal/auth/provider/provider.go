package provider

import (
	"context"

	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth"
)

// Strategy is the contract every OAuth2 provider strategy implements.
// A strategy owns the provider-specific exchange mechanics and hands
// back a tagged payload carrying exactly what its claim verifier needs.
// Strategies return protocol facts only; no user or session decisions.
type Strategy interface {
	// Name returns the provider identifier (e.g. "google", "apple").
	Name() string

	// Method is the login method accounts created through this strategy
	// are bound to.
	Method() auth.Method

	// CallbackMethod is the HTTP method the provider uses to deliver
	// the callback (POST for form_post response mode, GET otherwise).
	CallbackMethod() string

	// UsesPKCE reports whether the authorization flow carries PKCE
	// parameters.
	UsesPKCE() bool

	// SupportsNativeSignIn reports whether the provider accepts identity
	// tokens submitted directly by native apps.
	SupportsNativeSignIn() bool

	// AuthCodeURL builds the provider authorization URL. State is the
	// anti-replay token; codeChallenge is empty when PKCE is off.
	AuthCodeURL(state string, codeChallenge string) string

	// Exchange completes the code exchange and returns the payload for
	// claim extraction. rawUser is the inline user JSON some providers
	// post alongside the callback (empty otherwise).
	Exchange(
		ctx context.Context,
		code string,
		codeVerifier string,
		rawUser string,
	) (*auth.ProviderPayload, error)
}
