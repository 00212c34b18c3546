package apple

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/config"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/logger"

	"golang.org/x/oauth2"
)

const providerName = "apple"

// Strategy drives Sign in with Apple. Apple posts the callback
// (response_mode=form_post, required when name/email scopes are
// requested) and returns a signed identity token instead of a
// userinfo endpoint. The client secret is not static configuration but
// a JWT signed with the team's private key, minted at startup.
type Strategy struct {
	oauthConfig  *oauth2.Config
	responseMode string
	nativeSignIn bool
}

func New(cfg config.ProviderConfig) (*Strategy, error) {

	if cfg.ClientID == "" || cfg.RedirectURL == "" {
		return nil, errors.New("apple oauth config missing required fields")
	}

	clientSecret, err := clientSecret(cfg)
	if err != nil {
		return nil, fmt.Errorf("apple client secret: %w", err)
	}

	logger.Info("apple client secret generated", map[string]any{
		"key_id": cfg.KeyID,
	})

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: clientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.AuthURL,
			TokenURL: cfg.TokenURL,
			// Apple rejects basic-auth client credentials.
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: []string{
			"name",
			"email",
		},
	}

	return &Strategy{
		oauthConfig:  oauthCfg,
		responseMode: cfg.ResponseMode,
		nativeSignIn: cfg.NativeSignIn,
	}, nil
}

// Name returns the provider identifier used by the registry.
func (s *Strategy) Name() string {
	return providerName
}

func (s *Strategy) Method() auth.Method {
	return auth.MethodApple
}

func (s *Strategy) CallbackMethod() string {
	if s.responseMode == "form_post" {
		return http.MethodPost
	}
	return http.MethodGet
}

// UsesPKCE is false: Apple's token endpoint does not accept a code
// verifier alongside the generated client secret.
func (s *Strategy) UsesPKCE() bool {
	return false
}

func (s *Strategy) SupportsNativeSignIn() bool {
	return s.nativeSignIn
}

// AuthCodeURL builds the authorization URL, carrying the configured
// response mode so Apple posts the callback.
func (s *Strategy) AuthCodeURL(state string, _ string) string {
	opts := []oauth2.AuthCodeOption{}
	if s.responseMode != "" {
		opts = append(opts, oauth2.SetAuthURLParam("response_mode", s.responseMode))
	}
	return s.oauthConfig.AuthCodeURL(state, opts...)
}

// Exchange completes the code exchange and returns the identity token
// for verification, along with the inline user JSON Apple includes only
// on the first authorization.
func (s *Strategy) Exchange(
	ctx context.Context,
	code string,
	_ string,
	rawUser string,
) (*auth.ProviderPayload, error) {

	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		logger.Error("apple token exchange failed", map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("apple did not return id_token")
	}

	return &auth.ProviderPayload{
		Kind:    auth.KindIdentityToken,
		IDToken: rawIDToken,
		RawUser: rawUser,
	}, nil
}
