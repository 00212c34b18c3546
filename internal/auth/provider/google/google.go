package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/config"

	"golang.org/x/oauth2"
)

const providerName = "google"

// Strategy drives the Google OAuth2 code flow with PKCE. Claims are
// resolved afterwards via the userinfo lookup, so the exchange only has
// to produce the bearer access token.
type Strategy struct {
	oauthConfig *oauth2.Config
}

func New(cfg config.ProviderConfig) (*Strategy, error) {

	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RedirectURL == "" {
		return nil, errors.New("google oauth config missing required fields")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.AuthURL,
			TokenURL: cfg.TokenURL,
		},
		Scopes: []string{
			"openid",
			"profile",
			"email",
		},
	}

	return &Strategy{oauthConfig: oauthCfg}, nil
}

// Name returns the provider identifier used by the registry.
func (s *Strategy) Name() string {
	return providerName
}

func (s *Strategy) Method() auth.Method {
	return auth.MethodGoogle
}

// CallbackMethod is GET: Google delivers the callback via query string.
func (s *Strategy) CallbackMethod() string {
	return http.MethodGet
}

func (s *Strategy) UsesPKCE() bool {
	return true
}

func (s *Strategy) SupportsNativeSignIn() bool {
	return false
}

// AuthCodeURL builds the OAuth authorization URL with PKCE parameters.
func (s *Strategy) AuthCodeURL(state string, codeChallenge string) string {
	return s.oauthConfig.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

func (s *Strategy) Exchange(
	ctx context.Context,
	code string,
	codeVerifier string,
	_ string,
) (*auth.ProviderPayload, error) {

	token, err := s.oauthConfig.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return nil, fmt.Errorf("google token exchange failed: %w", err)
	}

	if token.AccessToken == "" {
		return nil, errors.New("google did not return an access token")
	}

	return &auth.ProviderPayload{
		Kind:        auth.KindAccessToken,
		AccessToken: token.AccessToken,
	}, nil
}
