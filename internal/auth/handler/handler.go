package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/account"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth/login"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth/provider"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth/resolver"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth/verifier"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/logger"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/session"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	providers    *provider.Registry
	verifiers    map[string]verifier.Verifier
	resolver     resolver.Resolver
	bridge       *login.Service
	accounts     account.Store
	sessionStore session.Store
	appClientURL string
}

func NewHandler(
	registry *provider.Registry,
	verifiers map[string]verifier.Verifier,
	identityResolver resolver.Resolver,
	bridge *login.Service,
	accounts account.Store,
	sessionStore session.Store,
	appClientURL string,
) *Handler {
	return &Handler{
		providers:    registry,
		verifiers:    verifiers,
		resolver:     identityResolver,
		bridge:       bridge,
		accounts:     accounts,
		sessionStore: sessionStore,
		appClientURL: appClientURL,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	for _, s := range h.providers.All() {
		name := s.Name()
		r.GET("/"+name+"/authorize", h.authorize(s))
		r.Handle(s.CallbackMethod(), "/"+name+"/callback", h.callback(s))
		if s.SupportsNativeSignIn() {
			r.POST("/"+name+"/native-sign-in", h.nativeSignIn(s))
		}
	}

	r.POST("/auth/login", h.Login)
	r.POST("/auth/register", h.Register)
	r.POST("/auth/logout", h.Logout)
}

func (h *Handler) authorize(s provider.Strategy) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Providers posting the callback arrive cross-site; the state
		// cookie must survive that.
		sameSite := http.SameSiteLaxMode
		if s.CallbackMethod() == http.MethodPost {
			sameSite = http.SameSiteNoneMode
		}

		state := generateState(c, sameSite)

		codeChallenge := ""
		if s.UsesPKCE() {
			_, codeChallenge = generatePKCE(c)
		}

		c.Redirect(http.StatusFound, s.AuthCodeURL(state, codeChallenge))
	}
}

func (h *Handler) callback(s provider.Strategy) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		// Provider-side refusal (user cancelled, consent denied).
		if errParam := c.Request.FormValue("error"); errParam != "" {
			logger.Warn("oauth callback returned error", map[string]any{
				"provider": s.Name(),
				"error":    errParam,
				"desc":     c.Request.FormValue("error_description"),
			})
			h.failRedirect(c)
			return
		}

		if !validateState(c) {
			logger.Warn("oauth callback state mismatch", map[string]any{
				"provider": s.Name(),
			})
			h.failRedirect(c)
			return
		}

		code := c.Request.FormValue("code")
		if code == "" {
			logger.Error("oauth callback missing code and error", map[string]any{
				"provider": s.Name(),
			})
			h.failRedirect(c)
			return
		}

		codeVerifier := ""
		if s.UsesPKCE() {
			codeVerifier = getPKCEVerifier(c)
			if codeVerifier == "" {
				logger.Warn("oauth callback missing pkce verifier", map[string]any{
					"provider": s.Name(),
				})
				h.failRedirect(c)
				return
			}
		}

		// Apple posts its one-time inline user object in the form body.
		rawUser := c.Request.FormValue("user")

		payload, err := s.Exchange(ctx, code, codeVerifier, rawUser)
		if err != nil {
			logger.Warn("oauth code exchange failed", map[string]any{
				"provider": s.Name(),
				"error":    err.Error(),
			})
			h.failRedirect(c)
			return
		}

		claims, err := h.verifiers[s.Name()].ExtractClaims(ctx, *payload)
		if err != nil {
			logger.Warn("claim extraction failed", map[string]any{
				"provider": s.Name(),
				"error":    err.Error(),
			})
			h.failRedirect(c)
			return
		}

		res, err := h.resolver.Resolve(ctx, s.Method(), claims)
		if err != nil {
			h.logResolveFailure(s.Name(), err)
			h.failRedirect(c)
			return
		}

		h.bridge.LoginWithSSO(c, res, s.Method(), login.DeliverRedirect)
	}
}

type nativeSignInRequest struct {
	Email         string `json:"email"`
	GivenName     string `json:"givenName"`
	FamilyName    string `json:"familyName"`
	IdentityToken string `json:"identityToken" binding:"required"`
}

// nativeSignIn accepts an identity token submitted directly by a native
// app, bypassing the redirect exchange. It never redirects.
func (h *Handler) nativeSignIn(s provider.Strategy) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var req nativeSignInRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
			return
		}

		claims, err := h.verifiers[s.Name()].ExtractClaims(ctx, auth.ProviderPayload{
			Kind:    auth.KindIdentityToken,
			IDToken: req.IdentityToken,
		})
		if err != nil {
			logger.Warn("native sign-in token rejected", map[string]any{
				"provider": s.Name(),
				"error":    err.Error(),
			})
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication failed"})
			return
		}

		// The app may carry name and email the token lacks (Apple sends
		// them only on first authorization).
		if req.Email != "" {
			claims.Email = req.Email
		}
		if name := strings.TrimSpace(req.GivenName + " " + req.FamilyName); name != "" {
			claims.DisplayName = name
		}

		res, err := h.resolver.Resolve(ctx, s.Method(), claims)
		if err != nil {
			h.logResolveFailure(s.Name(), err)
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication failed"})
			return
		}

		h.bridge.LoginWithSSO(c, res, s.Method(), login.DeliverJSON)
	}
}

func (h *Handler) failRedirect(c *gin.Context) {
	c.Redirect(http.StatusFound, h.appClientURL+"?error=true")
}

func (h *Handler) logResolveFailure(providerName string, err error) {
	if errors.Is(err, account.ErrProvisioning) {
		logger.Error("account provisioning failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		return
	}
	logger.Error("account resolution failed", map[string]any{
		"provider": providerName,
		"error":    err.Error(),
	})
}
