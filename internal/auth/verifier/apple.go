package verifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/logger"

	"github.com/coreos/go-oidc/v3/oidc"
)

const appleIssuer = "https://appleid.apple.com"

type appleTokenClaims struct {
	Email          string `json:"email"`
	EmailVerified  any    `json:"email_verified"` // Apple sends bool or "true"
	IsPrivateEmail any    `json:"is_private_email"`
}

// appleInlineUser is the user object Apple includes only on the first
// authorization. When present, its name and email win over the token.
type appleInlineUser struct {
	Email string `json:"email"`
	Name  struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	} `json:"name"`
}

// tokenVerifier is the signature/audience check behind Apple. Kept as an
// interface so claim extraction is testable without Apple's JWKS.
type tokenVerifier interface {
	verify(ctx context.Context, rawIDToken string) (*appleTokenClaims, error)
}

type oidcTokenVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func (o *oidcTokenVerifier) verify(ctx context.Context, rawIDToken string) (*appleTokenClaims, error) {
	idToken, err := o.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}

	var claims appleTokenClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// Apple verifies signed identity tokens against Apple's published keys
// and the configured client id (audience).
type Apple struct {
	tokens tokenVerifier
}

// NewApple initializes the Apple verifier using OIDC discovery.
func NewApple(ctx context.Context, clientID string) (*Apple, error) {
	if clientID == "" {
		return nil, errors.New("apple verifier config missing client id")
	}

	oidcProvider, err := oidc.NewProvider(ctx, appleIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init apple oidc provider: %w", err)
	}

	verifier := oidcProvider.Verifier(&oidc.Config{
		ClientID: clientID,
	})

	return &Apple{tokens: &oidcTokenVerifier{verifier: verifier}}, nil
}

func (a *Apple) ExtractClaims(ctx context.Context, p auth.ProviderPayload) (*auth.Claims, error) {
	if p.Kind != auth.KindIdentityToken || p.IDToken == "" {
		return nil, fmt.Errorf("%w: missing identity token", auth.ErrInvalidToken)
	}

	tokenClaims, err := a.tokens.verify(ctx, p.IDToken)
	if err != nil {
		logger.Warn("apple identity token rejected", map[string]any{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}

	email := tokenClaims.Email
	displayName := ""

	if p.RawUser != "" {
		var inline appleInlineUser
		if err := json.Unmarshal([]byte(p.RawUser), &inline); err != nil {
			return nil, fmt.Errorf("%w: malformed inline user: %v", auth.ErrInvalidToken, err)
		}
		if inline.Email != "" {
			email = inline.Email
		}
		displayName = joinName(inline.Name.FirstName, inline.Name.LastName)
	}

	if email == "" {
		return nil, fmt.Errorf("%w: no email claim", auth.ErrInvalidToken)
	}

	return &auth.Claims{
		Email:       email,
		DisplayName: displayName,
	}, nil
}

func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
