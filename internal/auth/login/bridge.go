// Package login is the bridge between an externally verified identity
// and a local authenticated session. It performs the local login with
// the one-time dynamic credential and produces the final response.
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/account"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth/guard"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth/resolver"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/logger"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/session"

	"github.com/gin-gonic/gin"
)

// Context is the per-request login context: which method the current
// request declared, and the locale for user-facing failure text. It is
// threaded explicitly through the login pipeline, never stored globally.
type Context struct {
	Method auth.Method
	Locale string
}

// DeliveryMode selects how the bridge answers the caller.
type DeliveryMode int

const (
	// DeliverRedirect answers with redirects (browser OAuth callbacks).
	DeliverRedirect DeliveryMode = iota
	// DeliverJSON answers with JSON status payloads (native apps).
	DeliverJSON
)

// ErrInvalidCredentials hides whether the email exists or the password
// was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

const sessionTTL = 24 * time.Hour

type Service struct {
	accounts     account.Store
	sessions     session.Store
	appClientURL string
}

func NewService(
	accounts account.Store,
	sessions session.Store,
	appClientURL string,
) *Service {
	return &Service{
		accounts:     accounts,
		sessions:     sessions,
		appClientURL: appClientURL,
	}
}

// Authenticate is the local login. It re-verifies the credential against
// storage and runs the login-method guard, for SSO and password logins
// alike.
func (s *Service) Authenticate(
	ctx context.Context,
	email string,
	password string,
	lc Context,
) (string, error) {

	acct, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			// hide whether the account exists
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := guard.Check(acct.LoginMethod, lc.Method, lc.Locale); err != nil {
		return "", err
	}

	if err := account.VerifyPassword(acct.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}

	return acct.ID, nil
}

// LoginWithSSO exchanges a resolved identity for a local session using
// the dynamic credential minted during resolution, then responds in the
// requested delivery mode. Every failure ends in an explicit response;
// nothing propagates to the transport layer.
func (s *Service) LoginWithSSO(
	c *gin.Context,
	res *resolver.Resolution,
	method auth.Method,
	mode DeliveryMode,
) {
	lc := Context{
		Method: method,
		Locale: LocaleFrom(c.Request),
	}

	accountID, err := s.Authenticate(
		c.Request.Context(),
		res.Account.Email,
		res.DynamicPassword,
		lc,
	)
	if err != nil {
		s.fail(c, mode, err)
		return
	}

	if err := s.EstablishSession(c, accountID); err != nil {
		s.fail(c, mode, err)
		return
	}

	if mode == DeliverRedirect {
		c.Redirect(http.StatusFound, s.appClientURL)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Authentication successful"})
}

// EstablishSession mints a session, persists it, and issues the cookie.
func (s *Service) EstablishSession(c *gin.Context, accountID string) error {
	sessionID, err := session.GenerateID()
	if err != nil {
		return err
	}

	now := time.Now()
	expiresAt := now.Add(sessionTTL)

	if err := s.sessions.Create(c.Request.Context(), session.Session{
		SessionID: sessionID,
		UserID:    accountID,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}); err != nil {
		return err
	}

	session.SetCookie(c.Writer, sessionID, expiresAt, session.CookieOptions{
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// fail converts a login failure into the terminal response for the
// delivery mode. The method mismatch is the only failure carrying its
// own user-directed message; everything else stays generic so callers
// cannot probe which step failed.
func (s *Service) fail(c *gin.Context, mode DeliveryMode, err error) {
	logFailure(err)

	if mode == DeliverRedirect {
		c.Redirect(http.StatusFound, s.appClientURL+"?error=true")
		return
	}

	var mismatch *guard.MismatchError
	if errors.As(err, &mismatch) {
		c.JSON(http.StatusBadRequest, gin.H{"message": mismatch.Message()})
		return
	}
	c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication failed"})
}

func logFailure(err error) {
	switch {
	case errors.Is(err, account.ErrProvisioning):
		logger.Error("sso login blocked by storage failure", map[string]any{
			"error": err.Error(),
		})
	case errors.Is(err, guard.ErrMethodMismatch):
		logger.Warn("login method mismatch", map[string]any{
			"error": err.Error(),
		})
	default:
		logger.Warn("authentication failed", map[string]any{
			"error": err.Error(),
		})
	}
}

// LocaleFrom picks the failure-message locale from Accept-Language.
// German is the only translation carried; everything else gets English.
func LocaleFrom(r *http.Request) string {
	lang := strings.ToLower(r.Header.Get("Accept-Language"))
	if strings.HasPrefix(lang, "de") {
		return "de"
	}
	return "en"
}
